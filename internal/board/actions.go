package board

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/alihassan193/snooker-console/internal/domain"
	"github.com/alihassan193/snooker-console/internal/service"
)

type SessionService interface {
	Start(ctx context.Context, in service.StartSessionInput) (domain.Session, error)
	End(ctx context.Context, id uint) (domain.Session, error)
	Cancel(ctx context.Context, id uint) error
	AddCanteenOrder(ctx context.Context, sessionID uint, lines []domain.OrderLine) (domain.CanteenOrder, error)
}

type CanteenService interface {
	Sell(ctx context.Context, sale service.CanteenSale) (domain.CanteenOrder, error)
}

// Catalog is the last fetched canteen catalog, used to bound carts by known stock.
type Catalog interface {
	CanteenItems() []domain.CanteenItem
}

type Refresher interface {
	ForceRefresh(ctx context.Context) (bool, error)
}

// Actions runs operator commands against the backend. Nothing local changes until the
// backend confirms; the board then follows from a forced refresh.
type Actions struct {
	board     *Board
	sessions  SessionService
	canteen   CanteenService
	catalog   Catalog
	refresher Refresher
}

func NewActions(board *Board, sessions SessionService, canteen CanteenService, catalog Catalog, refresher Refresher) *Actions {
	return &Actions{
		board:     board,
		sessions:  sessions,
		canteen:   canteen,
		catalog:   catalog,
		refresher: refresher,
	}
}

func (a *Actions) StartSession(ctx context.Context, req StartRequest) (domain.Session, error) {
	card, ok := a.board.Card(req.TableID)
	if !ok {
		return domain.Session{}, fmt.Errorf("table %d: %w", req.TableID, ErrTableNotFound)
	}

	in, err := ValidateStart(card, req)
	if err != nil {
		return domain.Session{}, err
	}

	session, err := a.sessions.Start(ctx, in)
	if err != nil {
		return domain.Session{}, fmt.Errorf("a.sessions.Start -> %w", err)
	}
	a.refresh(ctx)

	return session, nil
}

func (a *Actions) EndSession(ctx context.Context, sessionID uint) (domain.Session, error) {
	if _, ok := a.board.CardBySession(sessionID); !ok {
		return domain.Session{}, fmt.Errorf("%w: %w (session %d)", service.ErrValidation, ErrSessionNotActive, sessionID)
	}

	session, err := a.sessions.End(ctx, sessionID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("a.sessions.End -> %w", err)
	}
	a.refresh(ctx)

	return session, nil
}

// CancelSession voids an active session without billing it.
func (a *Actions) CancelSession(ctx context.Context, sessionID uint) error {
	if _, ok := a.board.CardBySession(sessionID); !ok {
		return fmt.Errorf("%w: %w (session %d)", service.ErrValidation, ErrSessionNotActive, sessionID)
	}

	if err := a.sessions.Cancel(ctx, sessionID); err != nil {
		return fmt.Errorf("a.sessions.Cancel -> %w", err)
	}
	a.refresh(ctx)

	return nil
}

func (a *Actions) AddOrder(ctx context.Context, sessionID uint, lines []domain.OrderLine) (domain.CanteenOrder, error) {
	if _, ok := a.board.CardBySession(sessionID); !ok {
		return domain.CanteenOrder{}, fmt.Errorf("%w: %w (session %d)", service.ErrValidation, ErrSessionNotActive, sessionID)
	}

	cart, err := a.fillCart(lines)
	if err != nil {
		return domain.CanteenOrder{}, err
	}

	order, err := a.sessions.AddCanteenOrder(ctx, sessionID, cart.Lines())
	if err != nil {
		return domain.CanteenOrder{}, fmt.Errorf("a.sessions.AddCanteenOrder -> %w", err)
	}
	a.refresh(ctx)

	return order, nil
}

// SellCanteen records a walk-in canteen sale that is not tied to a table.
func (a *Actions) SellCanteen(ctx context.Context, sale service.CanteenSale) (domain.CanteenOrder, error) {
	cart, err := a.fillCart(sale.Items)
	if err != nil {
		return domain.CanteenOrder{}, err
	}
	sale.Items = cart.Lines()

	order, err := a.canteen.Sell(ctx, sale)
	if err != nil {
		return domain.CanteenOrder{}, fmt.Errorf("a.canteen.Sell -> %w", err)
	}
	a.refresh(ctx)

	return order, nil
}

func (a *Actions) fillCart(lines []domain.OrderLine) (*service.Cart, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: %w", service.ErrValidation, service.ErrEmptyOrder)
	}

	cart, err := service.FillCart(a.catalog.CanteenItems(), lines)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrValidation, err)
	}

	return cart, nil
}

func (a *Actions) refresh(ctx context.Context) {
	ran, err := a.refresher.ForceRefresh(ctx)
	if err != nil {
		zap.L().Warn("refresh after operator action failed", zap.Error(err))
	}
	if !ran {
		zap.L().Debug("refresh after operator action queued behind the running one")
	}

	a.board.Recompute()
}
