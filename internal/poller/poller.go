// Package poller runs a background refresh on an interval without overlapping runs,
// without refreshing more often than a cooldown allows, and without refreshing while
// the operator is in the middle of input.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultInterval    = 30 * time.Second
	DefaultMinCooldown = 10 * time.Second
)

type RefreshFunc func(ctx context.Context) error

type State string

const (
	StateIdle       State = "idle"
	StateRefreshing State = "refreshing"
)

type SkipReason string

const (
	SkipInFlight    SkipReason = "in_flight"
	SkipCooldown    SkipReason = "cooldown"
	SkipInteraction SkipReason = "interaction"
)

// Options configure a Controller. Zero values take the defaults; a negative MinCooldown
// disables the cooldown.
type Options struct {
	Interval    time.Duration
	MinCooldown time.Duration
	Now         func() time.Time
}

type Status struct {
	State         State              `json:"state"`
	Running       bool               `json:"running"`
	Interval      time.Duration      `json:"interval"`
	LastStarted   time.Time          `json:"last_started"`
	LastCompleted time.Time          `json:"last_completed"`
	LastError     string             `json:"last_error,omitempty"`
	Refreshes     int                `json:"refreshes"`
	Skipped       map[SkipReason]int `json:"skipped"`
}

type Controller struct {
	lock *InteractionLock
	now  func() time.Time

	mu            sync.Mutex
	refresh       RefreshFunc
	interval      time.Duration
	cooldown      time.Duration
	state         State
	lastStarted   time.Time
	lastCompleted time.Time
	lastErr       error
	refreshes     int
	skipped       map[SkipReason]int
	// rerun is set when a manual refresh lands on an in-flight one; the running refresh
	// then goes once more, since its fetch may predate the write that asked for it.
	rerun bool

	// timerMu guards the single live ticker goroutine.
	timerMu sync.Mutex
	parent  context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(refresh RefreshFunc, lock *InteractionLock, opts Options) *Controller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	switch {
	case opts.MinCooldown == 0:
		opts.MinCooldown = DefaultMinCooldown
	case opts.MinCooldown < 0:
		opts.MinCooldown = 0
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if lock == nil {
		lock = NewInteractionLock(10 * time.Minute)
	}

	return &Controller{
		lock:     lock,
		now:      opts.Now,
		refresh:  refresh,
		interval: opts.Interval,
		cooldown: opts.MinCooldown,
		state:    StateIdle,
		skipped:  make(map[SkipReason]int),
	}
}

// Start arms the ticker. Calling it again replaces the running ticker.
func (c *Controller) Start(ctx context.Context) {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	c.parent = ctx
	c.disarmLocked()
	c.armLocked()
}

// Stop clears the ticker and cancels an in-flight background refresh.
func (c *Controller) Stop() {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	c.disarmLocked()
	c.parent = nil
}

// Reset changes the interval and re-arms the ticker if it is running.
func (c *Controller) Reset(interval time.Duration) {
	if interval <= 0 {
		return
	}

	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	c.mu.Lock()
	changed := c.interval != interval
	c.interval = interval
	c.mu.Unlock()

	if changed && c.parent != nil {
		c.disarmLocked()
		c.armLocked()
	}
}

// SetCooldown changes the minimum time between completed and next scheduled refresh.
func (c *Controller) SetCooldown(cooldown time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cooldown = cooldown
}

// SetRefresh swaps the refresh function and re-arms the ticker if it is running.
func (c *Controller) SetRefresh(fn RefreshFunc) {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	c.mu.Lock()
	c.refresh = fn
	c.mu.Unlock()

	if c.parent != nil {
		c.disarmLocked()
		c.armLocked()
	}
}

func (c *Controller) armLocked() {
	ctx, cancel := context.WithCancel(c.parent)
	done := make(chan struct{})

	c.mu.Lock()
	interval := c.interval
	c.mu.Unlock()

	go func() {
		defer close(done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Tick(ctx)
			}
		}
	}()

	c.cancel = cancel
	c.done = done
}

func (c *Controller) disarmLocked() {
	if c.cancel == nil {
		return
	}

	c.cancel()
	<-c.done
	c.cancel = nil
	c.done = nil
}

// Tick runs one scheduled refresh if every guard passes. Errors are logged, not returned.
func (c *Controller) Tick(ctx context.Context) bool {
	ran, _ := c.run(ctx, false)
	return ran
}

// ForceRefresh is the operator's explicit refresh. It ignores the interaction lock and the
// cooldown but never overlaps a refresh that is already running. When one is running it
// returns false and queues a single follow-up run on that refresh.
func (c *Controller) ForceRefresh(ctx context.Context) (bool, error) {
	return c.run(ctx, true)
}

func (c *Controller) run(ctx context.Context, manual bool) (bool, error) {
	fn, reason, ok := c.begin(manual)
	if !ok {
		zap.L().Debug("refresh skipped", zap.String("reason", string(reason)), zap.Bool("manual", manual))
		return false, nil
	}

	var err error
	for {
		err = call(ctx, fn)
		if err != nil {
			zap.L().Warn("refresh failed", zap.Bool("manual", manual), zap.Error(err))
		}

		if fn, ok = c.finish(ctx, err); !ok {
			break
		}
		zap.L().Debug("running queued refresh")
	}

	return true, err
}

func (c *Controller) begin(manual bool) (RefreshFunc, SkipReason, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	reason := SkipReason("")
	switch {
	case c.state == StateRefreshing:
		reason = SkipInFlight
		if manual {
			c.rerun = true
		}
	case manual:
	case !c.lastCompleted.IsZero() && c.now().Sub(c.lastCompleted) < c.cooldown:
		reason = SkipCooldown
	case c.lock.Held():
		reason = SkipInteraction
	}

	if reason != "" {
		c.skipped[reason]++
		return nil, reason, false
	}

	c.state = StateRefreshing
	c.lastStarted = c.now()

	return c.refresh, "", true
}

// finish records a completed refresh. It hands back the refresh function when a queued
// run is due, keeping the controller in StateRefreshing so nothing can slip in between.
func (c *Controller) finish(ctx context.Context, err error) (RefreshFunc, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastCompleted = c.now()
	c.lastErr = err
	c.refreshes++

	if c.rerun && ctx.Err() == nil {
		c.rerun = false
		c.lastStarted = c.now()
		return c.refresh, true
	}

	c.rerun = false
	c.state = StateIdle

	return nil, false
}

func call(ctx context.Context, fn RefreshFunc) (err error) {
	if fn == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("refresh panicked: %v", r)
		}
	}()

	return fn(ctx)
}

func (c *Controller) Status() Status {
	c.timerMu.Lock()
	running := c.cancel != nil
	c.timerMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	skipped := make(map[SkipReason]int, len(c.skipped))
	for reason, n := range c.skipped {
		skipped[reason] = n
	}

	status := Status{
		State:         c.state,
		Running:       running,
		Interval:      c.interval,
		LastStarted:   c.lastStarted,
		LastCompleted: c.lastCompleted,
		Refreshes:     c.refreshes,
		Skipped:       skipped,
	}
	if c.lastErr != nil {
		status.LastError = c.lastErr.Error()
	}

	return status
}

func (c *Controller) Lock() *InteractionLock {
	return c.lock
}
