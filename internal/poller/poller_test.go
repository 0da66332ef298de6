package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// refreshRecorder counts refresh calls and any overlap between them.
type refreshRecorder struct {
	inFlight atomic.Int32
	overlaps atomic.Int32
	calls    atomic.Int32
	release  chan struct{}
}

func (p *refreshRecorder) refresh(ctx context.Context) error {
	if p.inFlight.Add(1) > 1 {
		p.overlaps.Add(1)
	}
	defer p.inFlight.Add(-1)
	p.calls.Add(1)

	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

func TestController_NeverOverlaps(t *testing.T) {
	rec := &refreshRecorder{release: make(chan struct{})}
	c := New(rec.refresh, NewInteractionLock(time.Minute), Options{MinCooldown: -1})

	started := make(chan struct{})
	go func() {
		close(started)
		c.Tick(context.Background())
	}()
	<-started
	require.Eventually(t, func() bool { return rec.inFlight.Load() == 1 }, time.Second, time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.False(t, c.Tick(context.Background()))
		}()
		go func() {
			defer wg.Done()
			ran, err := c.ForceRefresh(context.Background())
			assert.False(t, ran)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	close(rec.release)
	require.Eventually(t, func() bool { return c.Status().State == StateIdle }, time.Second, time.Millisecond)

	// the queued manual requests collapse into a single follow-up run
	assert.EqualValues(t, 2, rec.calls.Load())
	assert.Zero(t, rec.overlaps.Load())
	assert.Equal(t, 40, c.Status().Skipped[SkipInFlight])
}

func TestController_ManualRequestDuringRefreshRunsAgain(t *testing.T) {
	var (
		mu      sync.Mutex
		backend = []string{}
		seen    [][]string
	)
	gate := make(chan struct{})
	fetched := make(chan struct{}, 1)
	c := New(func(context.Context) error {
		mu.Lock()
		snap := append([]string(nil), backend...)
		mu.Unlock()
		select {
		case fetched <- struct{}{}:
			<-gate
		default:
		}
		mu.Lock()
		seen = append(seen, snap)
		mu.Unlock()
		return nil
	}, NewInteractionLock(time.Minute), Options{MinCooldown: -1})

	done := make(chan bool)
	go func() { done <- c.Tick(context.Background()) }()
	<-fetched

	mu.Lock()
	backend = append(backend, "session 1")
	mu.Unlock()

	ran, err := c.ForceRefresh(context.Background())
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Equal(t, StateRefreshing, c.Status().State)

	close(gate)
	assert.True(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.Empty(t, seen[0])
	assert.Equal(t, []string{"session 1"}, seen[1])
	assert.Equal(t, StateIdle, c.Status().State)
	assert.Equal(t, 2, c.Status().Refreshes)
}

func TestController_TicksDuringRefreshDoNotQueue(t *testing.T) {
	rec := &refreshRecorder{release: make(chan struct{})}
	c := New(rec.refresh, nil, Options{MinCooldown: -1})

	done := make(chan bool)
	go func() { done <- c.Tick(context.Background()) }()
	require.Eventually(t, func() bool { return rec.inFlight.Load() == 1 }, time.Second, time.Millisecond)

	assert.False(t, c.Tick(context.Background()))
	close(rec.release)
	assert.True(t, <-done)
	assert.EqualValues(t, 1, rec.calls.Load())
}

func TestController_NoOverlapProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rec := &refreshRecorder{}
		lock := NewInteractionLock(time.Minute)
		c := New(rec.refresh, lock, Options{MinCooldown: -1})

		n := rapid.IntRange(1, 30).Draw(t, "callers")
		manual := rapid.SliceOfN(rapid.Bool(), n, n).Draw(t, "manual")

		var wg sync.WaitGroup
		for _, m := range manual {
			wg.Add(1)
			go func(m bool) {
				defer wg.Done()
				if m {
					_, _ = c.ForceRefresh(context.Background())
				} else {
					c.Tick(context.Background())
				}
			}(m)
		}
		wg.Wait()

		if rec.overlaps.Load() != 0 {
			t.Fatalf("refresh overlapped %d times", rec.overlaps.Load())
		}
	})
}

func TestController_Cooldown(t *testing.T) {
	clock := newFakeClock()
	rec := &refreshRecorder{}
	c := New(rec.refresh, NewInteractionLock(time.Minute), Options{
		MinCooldown: 10 * time.Second,
		Now:         clock.Now,
	})
	ctx := context.Background()

	assert.True(t, c.Tick(ctx))

	clock.Advance(9 * time.Second)
	assert.False(t, c.Tick(ctx))
	assert.Equal(t, 1, c.Status().Skipped[SkipCooldown])

	clock.Advance(time.Second)
	assert.True(t, c.Tick(ctx))
	assert.EqualValues(t, 2, rec.calls.Load())
}

func TestController_InteractionGuard(t *testing.T) {
	clock := newFakeClock()
	rec := &refreshRecorder{}
	lock := NewInteractionLock(time.Minute)
	c := New(rec.refresh, lock, Options{MinCooldown: -1, Now: clock.Now})
	ctx := context.Background()

	lease := lock.Acquire("start-session-dialog")

	assert.False(t, c.Tick(ctx))
	assert.Equal(t, 1, c.Status().Skipped[SkipInteraction])

	// The explicit refresh button bypasses the dialog guard.
	ran, err := c.ForceRefresh(ctx)
	assert.True(t, ran)
	assert.NoError(t, err)

	require.True(t, lock.Release(lease.ID))
	assert.True(t, c.Tick(ctx))
	assert.EqualValues(t, 2, rec.calls.Load())
}

func TestController_ForceRefreshIgnoresCooldown(t *testing.T) {
	clock := newFakeClock()
	rec := &refreshRecorder{}
	c := New(rec.refresh, nil, Options{MinCooldown: time.Minute, Now: clock.Now})
	ctx := context.Background()

	assert.True(t, c.Tick(ctx))
	ran, err := c.ForceRefresh(ctx)
	assert.True(t, ran)
	assert.NoError(t, err)
	assert.EqualValues(t, 2, rec.calls.Load())
}

func TestController_FailuresAreSwallowed(t *testing.T) {
	boom := errors.New("backend down")
	calls := 0
	c := New(func(context.Context) error {
		calls++
		if calls == 2 {
			panic("nil map")
		}
		return boom
	}, nil, Options{MinCooldown: -1})
	ctx := context.Background()

	assert.True(t, c.Tick(ctx))
	assert.Equal(t, boom.Error(), c.Status().LastError)
	assert.Equal(t, StateIdle, c.Status().State)

	require.NotPanics(t, func() { c.Tick(ctx) })
	assert.Contains(t, c.Status().LastError, "panicked")

	ran, err := c.ForceRefresh(ctx)
	assert.True(t, ran)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, c.Status().Refreshes)
}

func TestController_TimerDiscipline(t *testing.T) {
	rec := &refreshRecorder{}
	c := New(rec.refresh, nil, Options{Interval: 5 * time.Millisecond, MinCooldown: -1})

	c.Start(context.Background())
	assert.True(t, c.Status().Running)
	require.Eventually(t, func() bool { return rec.calls.Load() >= 2 }, time.Second, time.Millisecond)

	c.Reset(10 * time.Millisecond)
	c.SetRefresh(rec.refresh)
	assert.Equal(t, 10*time.Millisecond, c.Status().Interval)
	before := rec.calls.Load()
	require.Eventually(t, func() bool { return rec.calls.Load() > before }, time.Second, time.Millisecond)

	c.Stop()
	assert.False(t, c.Status().Running)
	stopped := rec.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, rec.calls.Load())
	assert.Zero(t, rec.overlaps.Load())
}

func TestController_StopCancelsInFlightRefresh(t *testing.T) {
	rec := &refreshRecorder{release: make(chan struct{})}
	c := New(rec.refresh, nil, Options{Interval: 5 * time.Millisecond, MinCooldown: -1})

	c.Start(context.Background())
	require.Eventually(t, func() bool { return rec.inFlight.Load() == 1 }, time.Second, time.Millisecond)

	c.Stop()
	assert.Zero(t, rec.inFlight.Load())
	assert.Equal(t, context.Canceled.Error(), c.Status().LastError)
}

func TestInteractionLock_LeasesLapse(t *testing.T) {
	clock := newFakeClock()
	lock := NewInteractionLock(time.Minute)
	lock.now = clock.Now

	first := lock.Acquire("canteen-cart")
	clock.Advance(30 * time.Second)
	second := lock.Acquire("table-settings")

	assert.True(t, lock.Held())
	assert.Equal(t, []string{"canteen-cart", "table-settings"}, []string{lock.Leases()[0].Screen, lock.Leases()[1].Screen})

	clock.Advance(31 * time.Second)
	assert.True(t, lock.Held())
	assert.False(t, lock.Release(first.ID))

	assert.True(t, lock.Release(second.ID))
	assert.False(t, lock.Held())
}
