// Package types defines the core types and interfaces shared by the
// scaffolding packages: the FS abstraction, the Generation Request, the
// Template descriptor, progress Events and hook Reports.
package types
