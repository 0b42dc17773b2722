// Package hooks runs post-generation steps against a freshly instantiated
// project.
//
// Hooks are best effort. A hook that cannot run, fails or times out produces
// a warning report; it never fails the generation that preceded it. The
// Runner executes hooks in the order given, which matters: the Tools copy
// must land before the generate script that calls Tools/premake5.
package hooks
