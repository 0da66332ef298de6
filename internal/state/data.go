package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alihassan193/snooker-console/internal/board"
	"github.com/alihassan193/snooker-console/internal/domain"
)

type TableSource interface {
	List(ctx context.Context) ([]domain.Table, error)
	GameTypes(ctx context.Context) ([]domain.GameType, error)
}

type SessionSource interface {
	Active(ctx context.Context) ([]domain.Session, error)
}

type CatalogSource interface {
	Categories(ctx context.Context) ([]domain.CanteenCategory, error)
	Items(ctx context.Context) ([]domain.CanteenItem, error)
}

type ClubSessionSource interface {
	ActiveSession(ctx context.Context, clubID uint) (*domain.ClubSession, error)
}

type Identity interface {
	Authenticated() bool
	User() (domain.User, bool)
}

// Snapshot is one consistent fetch of everything the screens share.
type Snapshot struct {
	Tables         []domain.Table           `json:"tables"`
	ActiveSessions []domain.Session         `json:"active_sessions"`
	GameTypes      []domain.GameType        `json:"game_types"`
	Categories     []domain.CanteenCategory `json:"categories"`
	Items          []domain.CanteenItem     `json:"items"`
	ClubSession    *domain.ClubSession      `json:"club_session,omitempty"`
	FetchedAt      time.Time                `json:"fetched_at"`
	Version        uint64                   `json:"version"`
}

type Data struct {
	tables   TableSource
	sessions SessionSource
	catalog  CatalogSource
	clubs    ClubSessionSource
	identity Identity
	now      func() time.Time

	mu   sync.RWMutex
	snap Snapshot
	// gen is bumped by Clear; a refresh that started in an older generation is dropped.
	gen uint64
}

func NewData(tables TableSource, sessions SessionSource, catalog CatalogSource, clubs ClubSessionSource, identity Identity) *Data {
	return &Data{
		tables:   tables,
		sessions: sessions,
		catalog:  catalog,
		clubs:    clubs,
		identity: identity,
		now:      time.Now,
	}
}

// Refresh fetches all shared data in parallel and swaps it in only if every fetch succeeded,
// ctx is still live and nobody cleared the data meanwhile. It is the poller's refresh function.
func (d *Data) Refresh(ctx context.Context) error {
	d.mu.RLock()
	gen := d.gen
	d.mu.RUnlock()

	if !d.identity.Authenticated() {
		zap.L().Debug("skipping data refresh, nobody is signed in")
		return nil
	}

	var next Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		next.Tables, err = d.tables.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		next.GameTypes, err = d.tables.GameTypes(gctx)
		return err
	})
	g.Go(func() (err error) {
		next.ActiveSessions, err = d.sessions.Active(gctx)
		return err
	})
	g.Go(func() (err error) {
		next.Categories, err = d.catalog.Categories(gctx)
		return err
	})
	g.Go(func() (err error) {
		next.Items, err = d.catalog.Items(gctx)
		return err
	})
	if user, ok := d.identity.User(); ok && user.ClubID != nil {
		clubID := *user.ClubID
		g.Go(func() (err error) {
			next.ClubSession, err = d.clubs.ActiveSession(gctx, clubID)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("g.Wait -> %w", err)
	}
	// A refresh cancelled by Stop must not land after it.
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.gen != gen {
		zap.L().Debug("dropping data refresh that outlived a sign-out")
		return nil
	}

	next.FetchedAt = d.now()
	next.Version = d.snap.Version + 1
	d.snap = next

	return nil
}

func (d *Data) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.snap
}

func (d *Data) BoardSnapshot() board.Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return board.Snapshot{
		Tables:   d.snap.Tables,
		Sessions: d.snap.ActiveSessions,
	}
}

func (d *Data) CanteenItems() []domain.CanteenItem {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.snap.Items
}

func (d *Data) ClubSession() *domain.ClubSession {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.snap.ClubSession
}

// SetClubSession applies a club session the backend just confirmed opening or closing.
func (d *Data) SetClubSession(session *domain.ClubSession) {
	if session != nil && !session.Open() {
		session = nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.snap.ClubSession = session
	d.snap.Version++
}

// Clear drops everything fetched for the previous operator.
func (d *Data) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.snap = Snapshot{Version: d.snap.Version + 1}
	d.gen++
}
