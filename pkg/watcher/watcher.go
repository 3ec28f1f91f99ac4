// Package watcher turns filesystem notifications for a download directory
// into debounce submissions.
//
// Only the directory itself is watched, not its subdirectories. A file
// qualifies when it is closed after writing, moved into the directory, or
// appears complete on creation (hard links and symlinks). A file still open
// for writing never qualifies. Events for directories are dropped.
//
// On Linux events come straight from inotify. Elsewhere fsnotify is used,
// which has no close notification, so only creations qualify there.
package watcher

import (
	"context"

	"github.com/arthur-debert/homebin/pkg/errors"
	"github.com/arthur-debert/homebin/pkg/logging"
	"github.com/arthur-debert/homebin/pkg/types"
	"github.com/rs/zerolog"
)

// Sink receives qualifying paths. *debounce.Scheduler implements it.
type Sink interface {
	Submit(path string)
}

// Op describes what happened to a path.
type Op uint32

const (
	// Create is a new entry that is already complete.
	Create Op = 1 << iota
	// MovedTo is an entry renamed into the directory.
	MovedTo
	// CloseWrite is a file closed after being opened for writing.
	CloseWrite
)

func (op Op) String() string {
	switch op {
	case Create:
		return "CREATE"
	case MovedTo:
		return "MOVED_TO"
	case CloseWrite:
		return "CLOSE_WRITE"
	case 0:
		return "IGNORED"
	default:
		return "MIXED"
	}
}

// Event is a notification for one path.
type Event struct {
	Name string
	Op   Op
	Dir  bool
}

// source is a platform notification backend.
type source interface {
	Events() <-chan Event
	Errors() <-chan error
	Close() error
}

// Watcher watches one directory.
type Watcher struct {
	fs     types.FS
	dir    string
	sink   Sink
	src    source
	logger zerolog.Logger
}

// New starts watching dir. The directory must exist.
func New(fs types.FS, dir string, sink Sink) (*Watcher, error) {
	info, err := fs.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrNotFound, "cannot watch %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrInvalidInput, "cannot watch %s: not a directory", dir)
	}

	src, err := newSource(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to watch %s", dir)
	}
	return newWatcher(fs, dir, sink, src), nil
}

func newWatcher(fs types.FS, dir string, sink Sink, src source) *Watcher {
	return &Watcher{
		fs:     fs,
		dir:    dir,
		sink:   sink,
		src:    src,
		logger: logging.GetLogger("watcher").With().Str("dir", dir).Logger(),
	}
}

// Qualifies reports whether an event may signal a finished download.
func Qualifies(ev Event) bool {
	return !ev.Dir && ev.Op&(Create|MovedTo|CloseWrite) != 0
}

// Run forwards qualifying events to the sink until ctx is cancelled. It
// closes the underlying source on return. Source errors are logged and
// never end the loop.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.src.Close() }()
	w.logger.Info().Msg("Watching for new files")

	events, errs := w.src.Events(), w.src.Errors()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			w.handle(ev)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			w.logger.Error().Err(err).Msg("Filesystem watcher error")
		}
	}
}

func (w *Watcher) handle(ev Event) {
	if !Qualifies(ev) {
		w.logger.Trace().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("Ignoring event")
		return
	}
	info, err := w.fs.Stat(ev.Name)
	if err != nil || info.IsDir() {
		return
	}
	w.logger.Debug().
		Str("path", ev.Name).
		Str("op", ev.Op.String()).
		Msg("File event")
	w.sink.Submit(ev.Name)
}

// Close stops watching without waiting for Run.
func (w *Watcher) Close() error {
	return w.src.Close()
}
