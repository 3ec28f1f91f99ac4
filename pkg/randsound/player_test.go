package randsound

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/arthur-debert/homebin/pkg/filesystem"
	"github.com/arthur-debert/homebin/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	dir     string
	sounds  string
	proc    string
	runner  *testutil.FakeRunner
	player  *Player
	killed  []int
	choices []int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		dir:    dir,
		sounds: filepath.Join(dir, "sounds"),
		proc:   filepath.Join(dir, "proc"),
		runner: &testutil.FakeRunner{},
	}
	testutil.CreateFile(t, f.sounds, "a.ogg", "a")
	testutil.CreateFile(t, f.sounds, "sub/b.ogg", "b")
	testutil.CreateDir(t, f.proc, "")

	f.player = New(filesystem.NewOS(), f.runner, Options{
		StateFile: filepath.Join(dir, "last"),
		PidFile:   filepath.Join(dir, "play.pid"),
		ProcDir:   f.proc,
		Stdout:    &bytes.Buffer{},
		Stderr:    &bytes.Buffer{},
	})
	f.player.intn = func(n int) int {
		if len(f.choices) == 0 {
			return 0
		}
		c := f.choices[0]
		f.choices = f.choices[1:]
		return c
	}
	f.player.kill = func(pid int) error {
		f.killed = append(f.killed, pid)
		return nil
	}
	return f
}

func TestPick(t *testing.T) {
	f := newFixture(t)
	files := []string{"x", "y"}

	f.choices = []int{0, 0, 1}
	assert.Equal(t, "y", f.player.Pick(files, "x"))

	// a single file is played again after the retries run out
	assert.Equal(t, "x", f.player.Pick([]string{"x"}, "x"))

	assert.Equal(t, "", f.player.Pick(nil, ""))
}

func TestPlay(t *testing.T) {
	ctx := context.Background()

	t.Run("plays_and_records", func(t *testing.T) {
		f := newFixture(t)
		f.choices = []int{1}

		played, err := f.player.Play(ctx, f.sounds)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(f.sounds, "sub", "b.ogg"), played)

		assert.Equal(t, []string{"ffplay -nodisp -autoexit " + played}, f.runner.Lines())
		assert.Equal(t, played, testutil.ReadFile(t, filepath.Join(f.dir, "last")))
		assert.Equal(t, "4242", testutil.ReadFile(t, filepath.Join(f.dir, "play.pid")))
		assert.Empty(t, f.killed)
	})

	t.Run("avoids_last_played", func(t *testing.T) {
		f := newFixture(t)
		testutil.CreateFile(t, f.dir, "last", filepath.Join(f.sounds, "a.ogg"))
		f.choices = []int{0, 0, 1}

		played, err := f.player.Play(ctx, f.sounds)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(f.sounds, "sub", "b.ogg"), played)
	})

	t.Run("stops_previous_player", func(t *testing.T) {
		f := newFixture(t)
		testutil.CreateFile(t, f.dir, "play.pid", "777\n")
		testutil.CreateFile(t, f.proc, "777/cmdline", "ffplay\x00-nodisp\x00-autoexit\x00old.ogg\x00")

		_, err := f.player.Play(ctx, f.sounds)
		require.NoError(t, err)
		assert.Equal(t, []int{777}, f.killed)
	})

	t.Run("ignores_recycled_pid", func(t *testing.T) {
		f := newFixture(t)
		testutil.CreateFile(t, f.dir, "play.pid", "778")
		testutil.CreateFile(t, f.proc, "778/cmdline", "bash\x00")

		_, err := f.player.Play(ctx, f.sounds)
		require.NoError(t, err)
		assert.Empty(t, f.killed)
	})

	t.Run("empty_directory", func(t *testing.T) {
		f := newFixture(t)
		empty := testutil.CreateDir(t, f.dir, "empty")

		played, err := f.player.Play(ctx, empty)
		require.NoError(t, err)
		assert.Empty(t, played)
		assert.Empty(t, f.runner.Calls())
	})

	t.Run("missing_directory", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.player.Play(ctx, filepath.Join(f.dir, "nope"))
		assert.True(t, errors.IsErrorCode(err, errors.ErrFileAccess))
	})
}

func TestPidFile(t *testing.T) {
	dir := t.TempDir()
	p := NewPidFile(filesystem.NewOS(), filepath.Join(dir, "x.pid"), filepath.Join(dir, "proc"))

	pid, err := p.Read()
	require.NoError(t, err)
	assert.Zero(t, pid)

	_, running := p.Running("ffplay")
	assert.False(t, running)

	require.NoError(t, p.Write(31))
	pid, err = p.Read()
	require.NoError(t, err)
	assert.Equal(t, 31, pid)

	testutil.CreateFile(t, dir, "x.pid", "garbage")
	_, err = p.Read()
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}
