// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem under t.TempDir()

package actions_test

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/arthur-debert/homebin/pkg/actions"
	"github.com/arthur-debert/homebin/pkg/command"
	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/arthur-debert/homebin/pkg/filesystem"
	"github.com/arthur-debert/homebin/pkg/rules"
	"github.com/arthur-debert/homebin/pkg/testutil"
	"github.com/arthur-debert/homebin/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// crossDeviceFS fails renames of one path with EXDEV, like a move between
// two mounts.
type crossDeviceFS struct {
	types.FS
	source string
}

func (c *crossDeviceFS) Rename(oldpath, newpath string) error {
	if oldpath == c.source {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
	}
	return c.FS.Rename(oldpath, newpath)
}

type fixture struct {
	dir      string
	notifier *testutil.RecordingNotifier
	runner   *testutil.FakeRunner
	exec     *actions.Executor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		dir:      t.TempDir(),
		notifier: &testutil.RecordingNotifier{},
		runner:   &testutil.FakeRunner{},
	}
	f.exec = actions.NewExecutor(filesystem.NewOS(), f.runner, f.notifier)
	return f
}

func TestMove(t *testing.T) {
	ctx := context.Background()

	t.Run("creates_parents", func(t *testing.T) {
		f := newFixture(t)
		src := testutil.CreateFile(t, f.dir, "dl/IMG_042.jpg", "jpeg")
		target := filepath.Join(f.dir, "Photos", "2024", "042.jpg")

		final, err := f.exec.Execute(ctx, rules.ActionSpec{}, actions.Job{Source: src, Target: target})
		require.NoError(t, err)
		assert.Equal(t, target, final)
		assert.Equal(t, "jpeg", testutil.ReadFile(t, target))
		assert.NoFileExists(t, src)
		assert.Equal(t, []string{"Moving file"}, f.notifier.Titles())
		assert.Equal(t, "IMG_042.jpg: IMG_042.jpg -> "+target, f.notifier.Notifications()[0].Body)
	})

	t.Run("into_existing_directory", func(t *testing.T) {
		f := newFixture(t)
		src := testutil.CreateFile(t, f.dir, "dl/a.pdf", "pdf")
		dest := testutil.CreateDir(t, f.dir, "Docs")

		final, err := f.exec.Execute(ctx, rules.BuiltinAction("move"), actions.Job{Source: src, Target: dest})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dest, "a.pdf"), final)
		assert.FileExists(t, final)
	})

	t.Run("cross_device_fallback", func(t *testing.T) {
		f := newFixture(t)
		src := testutil.CreateFile(t, f.dir, "dl/movie.mkv", "frames")
		require.NoError(t, os.Chmod(src, 0600))
		target := filepath.Join(f.dir, "Videos", "movie.mkv")

		exec := actions.NewExecutor(&crossDeviceFS{FS: filesystem.NewOS(), source: src}, f.runner, f.notifier)
		final, err := exec.Execute(ctx, rules.ActionSpec{}, actions.Job{Source: src, Target: target})
		require.NoError(t, err)
		assert.Equal(t, target, final)
		assert.Equal(t, "frames", testutil.ReadFile(t, target))
		assert.NoFileExists(t, src)

		info, err := os.Stat(target)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

		entries, err := os.ReadDir(filepath.Dir(target))
		require.NoError(t, err)
		assert.Len(t, entries, 1, "no temporary file is left behind")
	})

	t.Run("unwritable_target_keeps_source", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("permissions are not enforced for root")
		}
		f := newFixture(t)
		src := testutil.CreateFile(t, f.dir, "dl/a.txt", "x")
		locked := testutil.CreateDir(t, f.dir, "locked")
		require.NoError(t, os.Chmod(locked, 0555))
		t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

		_, err := f.exec.Execute(ctx, rules.ActionSpec{}, actions.Job{Source: src, Target: filepath.Join(locked, "a.txt")})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrActionExecute))
		assert.FileExists(t, src)
	})
}

func TestCopyAndSymlink(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	src := testutil.CreateFile(t, f.dir, "dl/book.epub", "epub")

	final, err := f.exec.Execute(ctx, rules.BuiltinAction("copy"), actions.Job{Source: src, Target: filepath.Join(f.dir, "Books", "book.epub")})
	require.NoError(t, err)
	assert.Equal(t, "epub", testutil.ReadFile(t, final))
	assert.FileExists(t, src)

	link := filepath.Join(f.dir, "Links", "book.epub")
	final, err = f.exec.Execute(ctx, rules.BuiltinAction("symlink"), actions.Job{Source: src, Target: link})
	require.NoError(t, err)
	dest, err := os.Readlink(final)
	require.NoError(t, err)
	assert.Equal(t, src, dest)

	t.Run("symlink_replaces_existing", func(t *testing.T) {
		_, err := f.exec.Execute(ctx, rules.BuiltinAction("symlink"), actions.Job{Source: src, Target: link})
		require.NoError(t, err)
	})
}

func TestCommandAction(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	spec := rules.ActionSpec{Name: "command", Command: "transmission-remote -a '{source}' -w '{home}'"}
	final, err := f.exec.Execute(ctx, spec, actions.Job{
		Source: "/dl/a.torrent",
		Target: "/data/Torrents",
		Values: map[string]string{"home": "/data"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/data/Torrents", final)
	assert.Equal(t, []string{"sh -c transmission-remote -a '/dl/a.torrent' -w '/data'"}, f.runner.Lines())

	t.Run("failure", func(t *testing.T) {
		f := newFixture(t)
		f.runner.RunFunc = func(command.Command) (command.Result, error) {
			return command.Result{ExitCode: 1}, errors.New(errors.ErrCommand, "exit 1")
		}
		_, err := f.exec.Execute(ctx, spec, actions.Job{Source: "/dl/a", Target: "/t", Values: map[string]string{"home": "/data"}})
		assert.True(t, errors.IsErrorCode(err, errors.ErrActionExecute))
		assert.True(t, errors.IsErrorCode(err, errors.ErrCommand))
	})

	t.Run("unknown_placeholder", func(t *testing.T) {
		_, err := f.exec.Execute(ctx, rules.ActionSpec{Name: "command", Command: "echo {nope}"}, actions.Job{Source: "/dl/a"})
		assert.True(t, errors.IsErrorCode(err, errors.ErrPlaceholder))
	})

	t.Run("missing_command", func(t *testing.T) {
		_, err := f.exec.Execute(ctx, rules.BuiltinAction("command"), actions.Job{Source: "/dl/a"})
		assert.True(t, errors.IsErrorCode(err, errors.ErrRuleInvalid))
	})
}

func TestCustomAndUnknown(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var got []string
	custom := rules.CustomAction(func(_ context.Context, source, target string) error {
		got = append(got, source, target)
		return nil
	})
	final, err := f.exec.Execute(ctx, custom, actions.Job{Source: "/dl/a", Target: "/t/a"})
	require.NoError(t, err)
	assert.Equal(t, "/t/a", final)
	assert.Equal(t, []string{"/dl/a", "/t/a"}, got)
	assert.Empty(t, f.notifier.Notifications(), "custom actions replace the default move")

	_, err = f.exec.Execute(ctx, rules.BuiltinAction("teleport"), actions.Job{Source: "/dl/a"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrActionExecute))
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

	final, err = f.exec.Execute(ctx, rules.BuiltinAction("none"), actions.Job{Source: "/dl/a", Target: "/t/a"})
	require.NoError(t, err)
	assert.Equal(t, "/t/a", final)

	t.Run("registered_action", func(t *testing.T) {
		require.NoError(t, f.exec.RegisterAction("archive", func(context.Context, string, string) error { return nil }))
		assert.Equal(t, []string{"move", "copy", "symlink", "command", "none", "archive"}, f.exec.Actions())
		_, err := f.exec.Execute(ctx, rules.BuiltinAction("archive"), actions.Job{Source: "/dl/a", Target: "/t"})
		require.NoError(t, err)
	})
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	target := testutil.CreateFile(t, f.dir, "out/a.jpg", "x")
	job := actions.Job{Source: "/dl/a.jpg", Target: target}

	require.NoError(t, f.exec.Validate(ctx, rules.ValidatorSpec{}, job))

	require.NoError(t, f.exec.Validate(ctx, rules.BuiltinValidator("notify"), job))
	assert.Equal(t, []string{"Processed file"}, f.notifier.Titles())

	require.NoError(t, f.exec.Validate(ctx, rules.BuiltinValidator("exists"), job))

	err := f.exec.Validate(ctx, rules.BuiltinValidator("exists"), actions.Job{Source: "/dl/b", Target: filepath.Join(f.dir, "missing")})
	assert.True(t, errors.IsErrorCode(err, errors.ErrActionExecute))
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))

	require.NoError(t, f.exec.Validate(ctx, rules.ValidatorSpec{Name: "command", Command: "test -s {target}"}, job))
	assert.Equal(t, []string{"sh -c test -s " + target}, f.runner.Lines())

	err = f.exec.Validate(ctx, rules.CustomValidator(func(context.Context, string, string) error {
		return errors.New(errors.ErrValidation, "checksum mismatch")
	}), job)
	assert.True(t, errors.IsErrorCode(err, errors.ErrActionExecute))

	err = f.exec.Validate(ctx, rules.BuiltinValidator("nope"), job)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

	require.NoError(t, f.exec.RegisterValidator("always", func(context.Context, string, string) error { return nil }))
	assert.Equal(t, []string{"notify", "exists", "command", "always"}, f.exec.Validators())
}
