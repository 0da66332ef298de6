package poller

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Lease marks a screen that is in the middle of operator input (open dialog, half-filled form).
type Lease struct {
	ID         string    `json:"id"`
	Screen     string    `json:"screen"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// InteractionLock is held while at least one lease is live. Leases lapse after maxAge so a
// UI that never releases cannot suppress background refresh forever.
type InteractionLock struct {
	mu     sync.Mutex
	leases map[string]Lease
	maxAge time.Duration
	now    func() time.Time
}

func NewInteractionLock(maxAge time.Duration) *InteractionLock {
	return &InteractionLock{
		leases: make(map[string]Lease),
		maxAge: maxAge,
		now:    time.Now,
	}
}

func (l *InteractionLock) Acquire(screen string) Lease {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	lease := Lease{
		ID:         uuid.NewString(),
		Screen:     screen,
		AcquiredAt: now,
		ExpiresAt:  now.Add(l.maxAge),
	}
	l.leases[lease.ID] = lease

	return lease
}

// Release drops a lease; it reports false for unknown or already lapsed ids.
func (l *InteractionLock) Release(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked()
	if _, ok := l.leases[id]; !ok {
		return false
	}
	delete(l.leases, id)

	return true
}

func (l *InteractionLock) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked()
	return len(l.leases) > 0
}

func (l *InteractionLock) Leases() []Lease {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked()
	leases := make([]Lease, 0, len(l.leases))
	for _, lease := range l.leases {
		leases = append(leases, lease)
	}
	sort.Slice(leases, func(i, j int) bool {
		return leases[i].AcquiredAt.Before(leases[j].AcquiredAt)
	})

	return leases
}

func (l *InteractionLock) pruneLocked() {
	now := l.now()
	for id, lease := range l.leases {
		if !now.Before(lease.ExpiresAt) {
			delete(l.leases, id)
		}
	}
}
