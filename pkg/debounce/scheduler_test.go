package debounce

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/arthur-debert/homebin/pkg/filesystem"
	"github.com/arthur-debert/homebin/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	if !t.clock.ignoreStop {
		t.stopped = true
	}
	return true
}

// fakeClock fires timers only when advanced. With ignoreStop set, stopped
// timers still fire, as when Stop loses the race against expiry.
type fakeClock struct {
	mu         sync.Mutex
	now        time.Duration
	timers     []*fakeTimer
	ignoreStop bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Armed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (c *fakeClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []func()
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t.f)
		}
	}
	c.mu.Unlock()

	for _, f := range due {
		f()
	}
}

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) handle(_ context.Context, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recorder) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func (r *recorder) Count() int { return len(r.Paths()) }

const delay = 500 * time.Millisecond

func start(t *testing.T, clock Clock) (*Scheduler, *recorder, context.CancelFunc, <-chan error) {
	t.Helper()
	rec := &recorder{}
	s := New(filesystem.NewOS(), delay, rec.handle, WithClock(clock))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()
	t.Cleanup(cancel)
	return s, rec, cancel, errc
}

func waitArmed(t *testing.T, clock *fakeClock, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return clock.Armed() == n }, time.Second, time.Millisecond)
}

func TestBurstYieldsOneCall(t *testing.T) {
	clock := &fakeClock{}
	s, rec, _, _ := start(t, clock)
	path := testutil.CreateFile(t, t.TempDir(), "movie.mkv", "data")

	for i := 0; i < 5; i++ {
		s.Submit(path)
	}
	waitArmed(t, clock, 5)
	assert.Equal(t, 1, clock.Active(), "each event re-arms the single timer")

	clock.Advance(delay - time.Millisecond)
	assert.Never(t, func() bool { return rec.Count() > 0 }, 20*time.Millisecond, time.Millisecond)

	clock.Advance(time.Millisecond)
	require.Eventually(t, func() bool { return rec.Count() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{path}, rec.Paths())

	t.Run("path_is_idle_again", func(t *testing.T) {
		s.Submit(path)
		waitArmed(t, clock, 6)
		clock.Advance(delay)
		require.Eventually(t, func() bool { return rec.Count() == 2 }, time.Second, time.Millisecond)
	})
}

func TestStaleTimersAreIgnored(t *testing.T) {
	clock := &fakeClock{ignoreStop: true}
	s, rec, _, _ := start(t, clock)
	path := testutil.CreateFile(t, t.TempDir(), "a.zip", "zip")

	for i := 0; i < 3; i++ {
		s.Submit(path)
	}
	waitArmed(t, clock, 3)

	clock.Advance(delay)
	require.Eventually(t, func() bool { return rec.Count() == 1 }, time.Second, time.Millisecond)
	assert.Never(t, func() bool { return rec.Count() > 1 }, 20*time.Millisecond, time.Millisecond)
}

func TestPathsAreIndependent(t *testing.T) {
	clock := &fakeClock{}
	s, rec, _, _ := start(t, clock)
	dir := t.TempDir()
	a := testutil.CreateFile(t, dir, "a.txt", "a")
	b := testutil.CreateFile(t, dir, "b.txt", "b")

	s.Submit(a)
	s.Submit(b)
	s.Submit(a)
	waitArmed(t, clock, 3)

	clock.Advance(delay)
	require.Eventually(t, func() bool { return rec.Count() == 2 }, time.Second, time.Millisecond)
	assert.ElementsMatch(t, []string{a, b}, rec.Paths())
}

func TestNonQualifyingEventsAreDropped(t *testing.T) {
	clock := &fakeClock{}
	s, rec, _, _ := start(t, clock)
	dir := t.TempDir()

	s.Submit(testutil.CreateFile(t, dir, "empty.part", ""))
	s.Submit(testutil.CreateDir(t, dir, "subdir"))
	s.Submit(filepath.Join(dir, "missing"))
	s.Submit(testutil.CreateFile(t, dir, "real.txt", "x"))

	waitArmed(t, clock, 1)
	clock.Advance(delay)
	require.Eventually(t, func() bool { return rec.Count() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, filepath.Join(dir, "real.txt"), rec.Paths()[0])
}

func TestFileRemovedBeforeQuietPeriod(t *testing.T) {
	clock := &fakeClock{}
	s, rec, _, _ := start(t, clock)
	dir := t.TempDir()
	path := testutil.CreateFile(t, dir, "tmp.crdownload", "x")
	marker := testutil.CreateFile(t, dir, "marker", "x")

	s.Submit(path)
	waitArmed(t, clock, 1)
	require.NoError(t, os.Remove(path))

	clock.Advance(delay)
	s.Submit(marker)
	waitArmed(t, clock, 2)
	clock.Advance(delay)

	require.Eventually(t, func() bool { return rec.Count() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{marker}, rec.Paths())
}

func TestShutdown(t *testing.T) {
	clock := &fakeClock{}
	s, rec, cancel, errc := start(t, clock)
	path := testutil.CreateFile(t, t.TempDir(), "a.txt", "x")

	s.Submit(path)
	waitArmed(t, clock, 1)

	cancel()
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	assert.Equal(t, 0, clock.Active(), "pending timers are stopped")
	clock.Advance(delay)
	assert.Equal(t, 0, rec.Count())

	done := make(chan struct{})
	go func() {
		s.Submit(path)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked after shutdown")
	}
}

func TestRealClock(t *testing.T) {
	rec := &recorder{}
	s := New(filesystem.NewOS(), 20*time.Millisecond, rec.handle)
	assert.Equal(t, 20*time.Millisecond, s.Delay())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	path := testutil.CreateFile(t, t.TempDir(), "a.txt", "x")
	s.Submit(path)
	require.Eventually(t, func() bool { return rec.Count() == 1 }, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, DefaultDelay, New(filesystem.NewOS(), 0, rec.handle).Delay())
}
