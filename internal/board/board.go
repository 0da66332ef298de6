package board

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/alihassan193/snooker-console/internal/domain"
)

const DefaultTick = time.Second

type Snapshot struct {
	Tables   []domain.Table
	Sessions []domain.Session
}

// Source provides the latest fetched tables and active sessions.
type Source interface {
	BoardSnapshot() Snapshot
}

type OverrideReader interface {
	Lookup(tableID uint) (domain.TableStatus, bool)
}

// Board recomputes every table card on a fixed tick so elapsed time and cost move without
// waiting for the next data refresh.
type Board struct {
	source    Source
	overrides OverrideReader
	tracker   *ElapsedTracker
	tick      time.Duration
	now       func() time.Time

	mu         sync.RWMutex
	cards      []Card
	index      map[uint]int
	computedAt time.Time

	timerMu sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(source Source, overrides OverrideReader, tick time.Duration) *Board {
	if tick <= 0 {
		tick = DefaultTick
	}

	return &Board{
		source:    source,
		overrides: overrides,
		tracker:   NewElapsedTracker(),
		tick:      tick,
		now:       time.Now,
		index:     make(map[uint]int),
	}
}

func (b *Board) Start(ctx context.Context) {
	b.timerMu.Lock()
	defer b.timerMu.Unlock()

	b.stopLocked()
	b.Recompute()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)

		ticker := time.NewTicker(b.tick)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.Recompute()
			}
		}
	}()

	b.cancel = cancel
	b.done = done
}

func (b *Board) Stop() {
	b.timerMu.Lock()
	defer b.timerMu.Unlock()

	b.stopLocked()
}

func (b *Board) stopLocked() {
	if b.cancel == nil {
		return
	}

	b.cancel()
	<-b.done
	b.cancel = nil
	b.done = nil
}

// Recompute rebuilds all cards from the current snapshot and overrides.
func (b *Board) Recompute() []Card {
	snap := b.source.BoardSnapshot()

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	present := make(map[uint]struct{}, len(snap.Tables))
	cards := make([]Card, 0, len(snap.Tables))
	for _, table := range snap.Tables {
		present[table.ID] = struct{}{}

		in := Input{
			Table:    table,
			Sessions: snap.Sessions,
			Now:      now,
			Elapsed:  b.tracker.Observe,
		}
		if status, ok := b.overrides.Lookup(table.ID); ok {
			in.Override = &status
		}
		cards = append(cards, Reconcile(in))
	}
	b.tracker.Retain(present)

	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].Table.Number < cards[j].Table.Number
	})

	index := make(map[uint]int, len(cards))
	for i, card := range cards {
		index[card.Table.ID] = i
	}

	b.cards = cards
	b.index = index
	b.computedAt = now

	return copyCards(cards)
}

func (b *Board) Cards() []Card {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return copyCards(b.cards)
}

func (b *Board) Card(tableID uint) (Card, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	i, ok := b.index[tableID]
	if !ok {
		return Card{}, false
	}

	return b.cards[i], true
}

// CardBySession finds the card currently showing the given active session.
func (b *Board) CardBySession(sessionID uint) (Card, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, card := range b.cards {
		if card.Session != nil && card.Session.ID == sessionID {
			return card, true
		}
	}

	return Card{}, false
}

func (b *Board) ComputedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.computedAt
}

func copyCards(cards []Card) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)

	return out
}
