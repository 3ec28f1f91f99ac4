// Package randsound plays a random sound file from a directory, never the
// same one twice in a row, and stops any sound still playing first.
package randsound

import (
	"context"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/homebin/pkg/command"
	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/arthur-debert/homebin/pkg/logging"
	"github.com/arthur-debert/homebin/pkg/types"
	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

const (
	DefaultStateFile = "/tmp/last-random-sound"
	DefaultPidFile   = "/tmp/play-random-sound.pid"
	DefaultPlayer    = "ffplay"

	pickAttempts = 10
)

// Options configure a Player. Zero values use the defaults.
type Options struct {
	StateFile string
	PidFile   string
	LockFile  string
	Player    string
	ProcDir   string

	Stdout io.Writer
	Stderr io.Writer
}

// Player picks and plays sounds.
type Player struct {
	fs     types.FS
	runner command.Runner
	opts   Options
	pid    *PidFile
	logger zerolog.Logger

	intn func(n int) int
	kill func(pid int) error
}

// New returns a Player.
func New(fsys types.FS, runner command.Runner, opts Options) *Player {
	if opts.StateFile == "" {
		opts.StateFile = DefaultStateFile
	}
	if opts.PidFile == "" {
		opts.PidFile = DefaultPidFile
	}
	if opts.LockFile == "" {
		opts.LockFile = opts.PidFile + ".lock"
	}
	if opts.Player == "" {
		opts.Player = DefaultPlayer
	}
	if opts.ProcDir == "" {
		opts.ProcDir = "/proc"
	}
	return &Player{
		fs:     fsys,
		runner: runner,
		opts:   opts,
		pid:    NewPidFile(fsys, opts.PidFile, opts.ProcDir),
		logger: logging.GetLogger("randsound"),
		intn:   rand.IntN,
		kill: func(pid int) error {
			return unix.Kill(pid, unix.SIGTERM)
		},
	}
}

// Collect returns every file below dir.
func (p *Player) Collect(dir string) ([]string, error) {
	var files []string
	var walk func(string) error
	walk = func(d string) error {
		entries, err := p.fs.ReadDir(d)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", d)
		}
		for _, entry := range entries {
			path := filepath.Join(d, entry.Name())
			if entry.IsDir() {
				if err := walk(path); err != nil {
					return err
				}
				continue
			}
			files = append(files, path)
		}
		return nil
	}
	if err := walk(dir); err != nil {
		return nil, err
	}
	return files, nil
}

// Pick chooses a random file, retrying a few times to avoid last.
func (p *Player) Pick(files []string, last string) string {
	if len(files) == 0 {
		return ""
	}
	var choice string
	for i := 0; i < pickAttempts; i++ {
		choice = files[p.intn(len(files))]
		if choice != last {
			break
		}
	}
	return choice
}

// Last returns the previously played file.
func (p *Player) Last() string {
	data, err := p.fs.ReadFile(p.opts.StateFile)
	if err != nil {
		return ""
	}
	return strings.SplitN(string(data), "\n", 2)[0]
}

// Play picks a file below dir, stops the previous player and plays the file
// until the player exits. It returns the file played, or "" when dir has no
// files.
func (p *Player) Play(ctx context.Context, dir string) (string, error) {
	files, err := p.Collect(dir)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		p.logger.Info().Str("dir", dir).Msg("No files to play")
		return "", nil
	}

	proc, choice, err := p.start(ctx, files)
	if err != nil {
		return "", err
	}

	if _, err := proc.Wait(); err != nil {
		p.logger.Debug().Err(err).Str("file", choice).Msg("Player exited with an error")
	}
	return choice, nil
}

// start runs under the lock so concurrent invocations never leave two
// players running.
func (p *Player) start(ctx context.Context, files []string) (command.Process, string, error) {
	lock := flock.New(p.opts.LockFile)
	if err := lock.Lock(); err != nil {
		return nil, "", errors.Wrapf(err, errors.ErrFileAccess, "failed to lock %s", p.opts.LockFile)
	}
	defer func() { _ = lock.Unlock() }()

	choice := p.Pick(files, p.Last())
	if err := p.fs.WriteFile(p.opts.StateFile, []byte(choice), 0644); err != nil {
		return nil, "", errors.Wrapf(err, errors.ErrFileAccess, "failed to write state file %s", p.opts.StateFile)
	}

	if pid, ok := p.pid.Running(filepath.Base(p.opts.Player)); ok {
		p.logger.Debug().Int("pid", pid).Msg("Stopping previous player")
		if err := p.kill(pid); err != nil && err != unix.ESRCH {
			p.logger.Warn().Err(err).Int("pid", pid).Msg("Failed to stop previous player")
		}
	}

	stdout, stderr := p.opts.Stdout, p.opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	proc, err := p.runner.Start(ctx, command.Command{
		Name:   p.opts.Player,
		Args:   []string{"-nodisp", "-autoexit", choice},
		Stdout: stdout,
		Stderr: stderr,
	})
	if err != nil {
		return nil, "", err
	}
	if err := p.pid.Write(proc.Pid()); err != nil {
		return nil, "", err
	}

	p.logger.Info().Str("file", choice).Int("pid", proc.Pid()).Msg("Playing")
	return proc, choice, nil
}
