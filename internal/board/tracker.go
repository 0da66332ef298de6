package board

import (
	"sync"
	"time"

	"github.com/alihassan193/snooker-console/internal/domain"
)

type tracked struct {
	sessionID uint
	minutes   int
}

// ElapsedTracker keeps the minutes shown per table from going backwards while the same
// session stays on the table, e.g. when the wall clock is stepped back.
type ElapsedTracker struct {
	mu   sync.Mutex
	seen map[uint]tracked
}

func NewElapsedTracker() *ElapsedTracker {
	return &ElapsedTracker{
		seen: make(map[uint]tracked),
	}
}

// Observe returns the elapsed minutes for the table's session. A nil session or a new
// session id resets the table.
func (t *ElapsedTracker) Observe(tableID uint, session *domain.Session, now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if session == nil {
		delete(t.seen, tableID)
		return 0
	}

	minutes := Elapsed(session.StartTime, now)
	if prev, ok := t.seen[tableID]; ok && prev.sessionID == session.ID && prev.minutes > minutes {
		minutes = prev.minutes
	}
	t.seen[tableID] = tracked{sessionID: session.ID, minutes: minutes}

	return minutes
}

// Retain drops tables that are no longer on the board.
func (t *ElapsedTracker) Retain(tableIDs map[uint]struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id := range t.seen {
		if _, ok := tableIDs[id]; !ok {
			delete(t.seen, id)
		}
	}
}
