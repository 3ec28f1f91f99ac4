package recent

import (
	"io/fs"
	"path/filepath"
	"sort"
	"time"

	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/arthur-debert/homebin/pkg/logging"
	"github.com/arthur-debert/homebin/pkg/types"
	"github.com/rs/zerolog"
)

// Entry is one symlink in the index.
type Entry struct {
	Name    string
	Target  string
	ModTime time.Time
}

// Index owns the recent-files directory.
type Index struct {
	fs       types.FS
	dir      string
	maxFiles int
	now      func() time.Time
	logger   zerolog.Logger
}

// New returns an index over dir. An empty dir disables the index and a
// maxFiles of zero or less disables pruning.
func New(fs types.FS, dir string, maxFiles int) *Index {
	return &Index{
		fs:       fs,
		dir:      dir,
		maxFiles: maxFiles,
		now:      time.Now,
		logger:   logging.GetLogger("recent"),
	}
}

// Enabled reports whether a directory is configured.
func (i *Index) Enabled() bool {
	return i.dir != ""
}

// Dir returns the managed directory.
func (i *Index) Dir() string {
	return i.dir
}

// Register links sourceName to target and prunes the index. It does nothing
// when the index is disabled or target does not exist.
func (i *Index) Register(sourceName, target string) error {
	if !i.Enabled() {
		return nil
	}
	if _, err := i.fs.Stat(target); err != nil {
		i.logger.Debug().Str("target", target).Msg("Target missing, not recording")
		return nil
	}

	if err := i.fs.MkdirAll(i.dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create recent directory %s", i.dir)
	}

	entries, err := i.List()
	if err != nil {
		return err
	}

	link := filepath.Join(i.dir, sourceName)
	if _, err := i.fs.Lstat(link); err == nil {
		if err := i.fs.Remove(link); err != nil {
			return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to replace %s", link)
		}
	}
	if err := i.fs.Symlink(target, link); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to link %s", link)
	}

	// Order is kept by link mtime; make the new link strictly the newest
	// even when the clock has not advanced since the previous one.
	stamp := i.now()
	for _, e := range entries {
		if e.Name != sourceName && !e.ModTime.Before(stamp) {
			stamp = e.ModTime.Add(time.Millisecond)
		}
	}
	if err := i.fs.Lchtimes(link, stamp, stamp); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to stamp %s", link)
	}

	i.logger.Debug().
		Str("link", link).
		Str("target", target).
		Msg("Recorded recent file")

	return i.Prune()
}

// List returns the symlinks in the index, newest first. Dangling links are
// included.
func (i *Index) List() ([]Entry, error) {
	dirEntries, err := i.fs.ReadDir(i.dir)
	if err != nil {
		if _, statErr := i.fs.Stat(i.dir); statErr != nil {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to list %s", i.dir)
	}

	var entries []Entry
	for _, de := range dirEntries {
		path := filepath.Join(i.dir, de.Name())
		info, err := i.fs.Lstat(path)
		if err != nil || info.Mode()&fs.ModeSymlink == 0 {
			continue
		}
		target, _ := i.fs.Readlink(path)
		entries = append(entries, Entry{Name: de.Name(), Target: target, ModTime: info.ModTime()})
	}

	sort.SliceStable(entries, func(a, b int) bool {
		if !entries[a].ModTime.Equal(entries[b].ModTime) {
			return entries[a].ModTime.After(entries[b].ModTime)
		}
		return entries[a].Name < entries[b].Name
	})
	return entries, nil
}

// Prune removes every symlink beyond the newest maxFiles. Only symlinks
// count toward the cap: other entries in the directory are neither counted
// nor removed, so a foreign file never pushes a link out.
func (i *Index) Prune() error {
	if !i.Enabled() || i.maxFiles <= 0 {
		return nil
	}

	entries, err := i.List()
	if err != nil {
		return err
	}
	if len(entries) <= i.maxFiles {
		return nil
	}

	for _, e := range entries[i.maxFiles:] {
		path := filepath.Join(i.dir, e.Name)
		if err := i.fs.Remove(path); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to prune %s", path)
		}
		i.logger.Debug().Str("link", path).Msg("Pruned recent file")
	}
	return nil
}
