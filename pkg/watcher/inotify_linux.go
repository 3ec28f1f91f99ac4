package watcher

import (
	"encoding/binary"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

const inotifyMask = unix.IN_CREATE | unix.IN_MOVED_TO | unix.IN_CLOSE_WRITE | unix.IN_ONLYDIR

var errQueueOverflow = stderrors.New("inotify event queue overflowed")

// inotifySource reads inotify events for a single directory.
type inotifySource struct {
	dir    string
	file   *os.File
	events chan Event
	errors chan error
	done   chan struct{}
	once   sync.Once
}

func newSource(dir string) (source, error) {
	s, err := newInotifySource(dir)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func newInotifySource(dir string) (*inotifySource, error) {
	fd, err := unix.InotifyInit1(unix.IN_CLOEXEC | unix.IN_NONBLOCK)
	if err != nil {
		return nil, os.NewSyscallError("inotify_init1", err)
	}
	if _, err := unix.InotifyAddWatch(fd, dir, inotifyMask); err != nil {
		_ = unix.Close(fd)
		return nil, os.NewSyscallError("inotify_add_watch", err)
	}

	s := &inotifySource{
		dir:    dir,
		file:   os.NewFile(uintptr(fd), "inotify"),
		events: make(chan Event),
		errors: make(chan error),
		done:   make(chan struct{}),
	}
	go s.loop()
	return s, nil
}

func (s *inotifySource) loop() {
	defer close(s.events)
	defer close(s.errors)

	buf := make([]byte, 64*1024)
	for {
		n, err := s.file.Read(buf)
		if err != nil {
			if !stderrors.Is(err, os.ErrClosed) {
				s.sendError(err)
			}
			return
		}

		for _, ev := range s.parse(buf[:n]) {
			if ev.Op == 0 && ev.Name == "" {
				s.sendError(errQueueOverflow)
				continue
			}
			select {
			case s.events <- ev:
			case <-s.done:
				return
			}
		}
	}
}

// parse decodes a read buffer. An overflow is reported as an empty event.
func (s *inotifySource) parse(buf []byte) []Event {
	var out []Event
	for offset := 0; offset+unix.SizeofInotifyEvent <= len(buf); {
		mask := binary.NativeEndian.Uint32(buf[offset+4:])
		nameLen := int(binary.NativeEndian.Uint32(buf[offset+12:]))
		start := offset + unix.SizeofInotifyEvent
		end := start + nameLen
		if end > len(buf) {
			break
		}
		name := strings.TrimRight(string(buf[start:end]), "\x00")
		offset = end

		if mask&unix.IN_Q_OVERFLOW != 0 {
			out = append(out, Event{})
			continue
		}
		if name == "" {
			continue
		}
		path := filepath.Join(s.dir, name)
		out = append(out, Event{Name: path, Op: opFromMask(mask, path), Dir: mask&unix.IN_ISDIR != 0})
	}
	return out
}

func opFromMask(mask uint32, path string) Op {
	var op Op
	if mask&unix.IN_CLOSE_WRITE != 0 {
		op |= CloseWrite
	}
	if mask&unix.IN_MOVED_TO != 0 {
		op |= MovedTo
	}
	if mask&unix.IN_CREATE != 0 && completeOnCreate(path) {
		op |= Create
	}
	return op
}

// completeOnCreate reports whether a new entry needs no close to be done.
// A regular file with a single link was created by a writer, whose close
// follows as IN_CLOSE_WRITE. Hard links and symlinks never get one.
func completeOnCreate(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return true
	}
	if !info.Mode().IsRegular() {
		return false
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	return ok && st.Nlink > 1
}

func (s *inotifySource) sendError(err error) {
	select {
	case s.errors <- err:
	case <-s.done:
	}
}

func (s *inotifySource) Events() <-chan Event { return s.events }
func (s *inotifySource) Errors() <-chan error { return s.errors }

func (s *inotifySource) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.file.Close()
	})
	return err
}
