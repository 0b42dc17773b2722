// Package testutil provides utilities for testing lumina-project components.
//
// Key components:
//   - NewTestFS: afero-backed in-memory filesystem
//   - WriteTree / ReadTree: declare and inspect directory trees as maps
//   - Environment: an engine checkout with templates, tools and a work
//     directory, in memory or isolated under a temp directory
//
// Usage guidelines:
//   - Prefer EnvMemoryOnly; use EnvIsolated when a test runs processes or
//     goes through the command line
//   - All test data should be defined inline, not in external files
package testutil
