// Package placeholder renders {key} templates used for rule targets and
// shell commands.
//
// Keys available after a rule match:
//
//   - filename: the base name of the matched file
//   - re_0: the full match, re_1..re_k: capture groups by position
//   - named capture groups under their own name
//   - every configured global placeholder
//
// Globals are never shadowed by capture groups and filename always refers
// to the matched file. A group that did not take part in the match expands
// to the empty string. Use {{ and }} for literal braces.
package placeholder
