package watcher

import (
	"sync"

	"github.com/fsnotify/fsnotify"
)

// fsnotifySource adapts fsnotify. Write events carry no completion signal
// and are dropped; renames into the directory arrive as Create.
type fsnotifySource struct {
	fsw    *fsnotify.Watcher
	events chan Event
	done   chan struct{}
	once   sync.Once
}

func newFsnotifySource(dir string) (*fsnotifySource, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	s := &fsnotifySource{fsw: fsw, events: make(chan Event), done: make(chan struct{})}
	go s.loop()
	return s, nil
}

func (s *fsnotifySource) loop() {
	defer close(s.events)
	for ev := range s.fsw.Events {
		select {
		case s.events <- fromFsnotify(ev):
		case <-s.done:
			return
		}
	}
}

// fromFsnotify maps an fsnotify event. Only Create survives.
func fromFsnotify(ev fsnotify.Event) Event {
	var op Op
	if ev.Has(fsnotify.Create) {
		op = Create
	}
	return Event{Name: ev.Name, Op: op}
}

func (s *fsnotifySource) Events() <-chan Event { return s.events }
func (s *fsnotifySource) Errors() <-chan error { return s.fsw.Errors }

func (s *fsnotifySource) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.fsw.Close()
	})
	return err
}
