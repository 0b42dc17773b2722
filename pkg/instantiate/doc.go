// Package instantiate materializes a template directory into a new project
// tree.
//
// The walk is depth-first with the entries of every directory visited in
// name order, so a directory always exists before its children and two runs
// over the same template produce the same event sequence. Every destination
// path segment goes through token substitution; file contents do too when
// the classifier deems the file text and it decodes. Everything else is
// copied byte for byte.
//
// The destination must not exist. It is claimed with an exclusive mkdir
// before anything is written, so a run never merges into or overwrites an
// existing tree. Without staging a failure leaves the partial tree in place;
// with Options.Stage the tree is built in a hidden sibling directory and
// renamed into place only once complete.
package instantiate
