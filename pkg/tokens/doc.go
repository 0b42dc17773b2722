// Package tokens implements token substitution for template instantiation.
//
// A Table binds token names to values. Every name is recognised in two
// spellings, ${NAME} and the legacy bare $NAME, and both resolve to the same
// value. Substitution is a single left-to-right pass: at each position the
// longest matching spelling wins (ties go to the binding declared first) and
// a replacement value is never scanned again, so values that happen to
// contain token spellings are emitted literally.
//
// The same Table rewrites decoded file contents (Substitute) and relative
// paths, one segment at a time (SubstitutePath).
package tokens
