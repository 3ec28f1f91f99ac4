package randsound

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/arthur-debert/homebin/pkg/types"
)

// PidFile records the pid of the running player.
type PidFile struct {
	fs      types.FS
	path    string
	procDir string
}

// NewPidFile returns a pid file at path. procDir is normally /proc.
func NewPidFile(fsys types.FS, path, procDir string) *PidFile {
	return &PidFile{fs: fsys, path: path, procDir: procDir}
}

// Read returns the recorded pid, or 0 when there is none.
func (p *PidFile) Read() (int, error) {
	data, err := p.fs.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Wrapf(err, errors.ErrFileAccess, "failed to read pid file %s", p.path)
	}
	line := strings.TrimSpace(strings.SplitN(string(data), "\n", 2)[0])
	if line == "" {
		return 0, nil
	}
	pid, err := strconv.Atoi(line)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrInvalidInput, "invalid pid in %s", p.path)
	}
	return pid, nil
}

// Write records pid.
func (p *PidFile) Write(pid int) error {
	if err := p.fs.WriteFile(p.path, []byte(strconv.Itoa(pid)), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to write pid file %s", p.path)
	}
	return nil
}

// Running returns the recorded pid when that process is alive and its
// command line contains match. A stale pid pointing at an unrelated
// process is ignored.
func (p *PidFile) Running(match string) (int, bool) {
	pid, err := p.Read()
	if err != nil || pid <= 0 {
		return 0, false
	}
	cmdline, err := p.fs.ReadFile(filepath.Join(p.procDir, strconv.Itoa(pid), "cmdline"))
	if err != nil {
		return 0, false
	}
	return pid, strings.Contains(string(cmdline), match)
}
