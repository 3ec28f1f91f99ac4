// Package actions performs what a matched rule asks for: move the file to
// its target (the default), copy it, link it, run a shell command, or
// nothing, followed by an optional validator.
//
// Builtin actions: move, copy, symlink, command, none.
// Builtin validators: notify, exists, command.
//
// Moves across filesystems fall back to copy, rename into place and
// remove. The source is only removed once the target exists.
package actions
