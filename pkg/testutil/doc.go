// Package testutil provides helpers shared by homebin's package tests.
//
// Key components:
//   - file helpers creating trees under t.TempDir()
//   - FakeRunner: a command.Runner recording calls with scripted results
//   - RecordingNotifier: a notify.Notifier capturing notifications
//
// Tests that exercise real filesystem semantics (renames, symlinks,
// mtimes) use temporary directories; descriptor parsing tests use the
// in-memory filesystem from pkg/filesystem.
package testutil
