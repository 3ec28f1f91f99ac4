package debounce

import (
	"context"
	"time"

	"github.com/arthur-debert/homebin/pkg/logging"
	"github.com/arthur-debert/homebin/pkg/types"
	"github.com/rs/zerolog"
)

// DefaultDelay is the quiet period used when none is configured.
const DefaultDelay = 500 * time.Millisecond

// Handler processes a path once events for it have settled. It runs on the
// scheduler loop, so calls never overlap.
type Handler func(ctx context.Context, path string)

type firing struct {
	path       string
	generation uint64
}

type pendingEvent struct {
	timer      Timer
	generation uint64
}

// Scheduler debounces file events per path.
type Scheduler struct {
	fs      types.FS
	delay   time.Duration
	clock   Clock
	handler Handler
	logger  zerolog.Logger

	submit chan string
	fired  chan firing
	done   chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the real clock.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// New returns a scheduler calling handler after delay of quiet per path. A
// delay of zero or less uses DefaultDelay.
func New(fs types.FS, delay time.Duration, handler Handler, opts ...Option) *Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	s := &Scheduler{
		fs:      fs,
		delay:   delay,
		clock:   RealClock(),
		handler: handler,
		logger:  logging.GetLogger("debounce"),
		submit:  make(chan string, 64),
		fired:   make(chan firing, 64),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Delay returns the quiet period.
func (s *Scheduler) Delay() time.Duration {
	return s.delay
}

// Submit reports an event for path. It is safe to call from any goroutine
// and returns immediately once the scheduler has stopped.
func (s *Scheduler) Submit(path string) {
	select {
	case s.submit <- path:
	case <-s.done:
	}
}

// Run is the dispatch loop. It returns when ctx is cancelled, after the
// handler call in progress (if any) completes and every pending timer has
// been stopped. Run must be called at most once.
func (s *Scheduler) Run(ctx context.Context) error {
	pending := make(map[string]*pendingEvent)
	defer func() {
		close(s.done)
		for _, p := range pending {
			p.timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug().Int("pending", len(pending)).Msg("Debounce loop stopping")
			return nil

		case path := <-s.submit:
			if !s.qualifies(path) {
				continue
			}
			p, ok := pending[path]
			if !ok {
				p = &pendingEvent{}
				pending[path] = p
			} else {
				p.timer.Stop()
			}
			p.generation++
			p.timer = s.arm(path, p.generation)
			s.logger.Trace().
				Str("path", path).
				Uint64("generation", p.generation).
				Msg("Armed debounce timer")

		case f := <-s.fired:
			p, ok := pending[f.path]
			if !ok || p.generation != f.generation {
				continue
			}
			delete(pending, f.path)

			if _, err := s.fs.Stat(f.path); err != nil {
				s.logger.Debug().Str("path", f.path).Msg("File gone before handling")
				continue
			}
			s.handler(ctx, f.path)
		}
	}
}

func (s *Scheduler) arm(path string, generation uint64) Timer {
	return s.clock.AfterFunc(s.delay, func() {
		select {
		case s.fired <- firing{path: path, generation: generation}:
		case <-s.done:
		}
	})
}

// qualifies drops events for paths that are missing, not regular files or
// still empty.
func (s *Scheduler) qualifies(path string) bool {
	info, err := s.fs.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}
