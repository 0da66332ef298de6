// Package board turns tables, active sessions and local status overrides into the table
// cards the operator works from, and runs the operator's session actions against them.
package board

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alihassan193/snooker-console/internal/domain"
	"github.com/alihassan193/snooker-console/internal/service"
)

var (
	ErrNoPricing        = errors.New("no active pricing for this game type on this table")
	ErrNotStartable     = errors.New("table cannot start a session")
	ErrSessionNotActive = errors.New("session is not active")
	ErrTableNotFound    = errors.New("table not found")
)

type View string

const (
	ViewInSession     View = "in_session"
	ViewStartable     View = "startable"
	ViewInformational View = "informational"
)

type CardActions struct {
	CanStart bool `json:"can_start"`
	CanEnd   bool `json:"can_end"`
	CanOrder bool `json:"can_order"`
}

// Card is everything the operator needs to render and act on one table.
type Card struct {
	Table          domain.Table       `json:"table"`
	ServerStatus   domain.TableStatus `json:"server_status"`
	Status         domain.TableStatus `json:"status"`
	Overridden     bool               `json:"overridden"`
	View           View               `json:"view"`
	Session        *domain.Session    `json:"session,omitempty"`
	SessionPricing *domain.Pricing    `json:"session_pricing,omitempty"`
	ElapsedMinutes int                `json:"elapsed_minutes"`
	EstimatedCost  decimal.Decimal    `json:"estimated_cost"`
	Pricing        []domain.Pricing   `json:"pricing"`
	Actions        CardActions        `json:"actions"`
}

type Input struct {
	Table    domain.Table
	Override *domain.TableStatus
	Sessions []domain.Session
	Now      time.Time
	// Elapsed overrides the raw minutes computation, normally with an ElapsedTracker.
	Elapsed func(tableID uint, session *domain.Session, now time.Time) int
}

func Reconcile(in Input) Card {
	card := Card{
		Table:        in.Table,
		ServerStatus: in.Table.Status,
		Status:       in.Table.Status,
		Pricing:      in.Table.ActivePricing(),
	}
	if in.Override != nil {
		card.Status = *in.Override
		card.Overridden = true
	}

	session := FindActiveSession(in.Table.ID, in.Sessions)

	elapsed := 0
	if in.Elapsed != nil {
		elapsed = in.Elapsed(in.Table.ID, session, in.Now)
	} else if session != nil {
		elapsed = Elapsed(session.StartTime, in.Now)
	}

	if session != nil {
		card.View = ViewInSession
		card.Session = session
		card.ElapsedMinutes = elapsed
		card.EstimatedCost = decimal.Zero
		if pricing, ok := ResolvePricing(in.Table, *session); ok {
			card.SessionPricing = &pricing
			card.EstimatedCost = EstimateCost(pricing, elapsed)
		}
		card.Actions = CardActions{CanEnd: true, CanOrder: true}

		return card
	}

	if card.Status == domain.TableAvailable && len(card.Pricing) > 0 {
		card.View = ViewStartable
		card.Actions.CanStart = true
	} else {
		card.View = ViewInformational
	}

	return card
}

// FindActiveSession returns the first active session on the table. The backend allows at
// most one; if it ever reports more, the first wins.
func FindActiveSession(tableID uint, sessions []domain.Session) *domain.Session {
	for i := range sessions {
		if sessions[i].TableID == tableID && sessions[i].Active() {
			s := sessions[i]
			return &s
		}
	}

	return nil
}

// ResolvePricing finds the pricing a session is billed with, preferring the copy embedded in
// the session over the table's current entries.
func ResolvePricing(table domain.Table, session domain.Session) (domain.Pricing, bool) {
	if session.Pricing != nil {
		return *session.Pricing, true
	}

	return table.PricingByID(session.PricingID)
}

// PricingForGameType returns the table's active pricing entry for a game type.
func PricingForGameType(table domain.Table, gameTypeID uint) (domain.Pricing, bool) {
	for _, p := range table.ActivePricing() {
		if p.GameTypeID == gameTypeID {
			return p, true
		}
	}

	return domain.Pricing{}, false
}

type StartRequest struct {
	TableID    uint
	GameTypeID uint
	PlayerID   *uint
	GuestName  string
}

// ValidateStart checks a start request against the card and builds the backend input.
func ValidateStart(card Card, req StartRequest) (service.StartSessionInput, error) {
	if !card.Actions.CanStart {
		return service.StartSessionInput{}, fmt.Errorf("%w: %w (table %d is %s)",
			service.ErrValidation, ErrNotStartable, card.Table.Number, card.Status)
	}

	pricing, ok := PricingForGameType(card.Table, req.GameTypeID)
	if !ok {
		return service.StartSessionInput{}, fmt.Errorf("%w: %w", service.ErrValidation, ErrNoPricing)
	}

	in := service.StartSessionInput{
		TableID:         card.Table.ID,
		GameTypeID:      req.GameTypeID,
		PricingID:       pricing.ID,
		PlayerID:        req.PlayerID,
		GuestPlayerName: strings.TrimSpace(req.GuestName),
	}.Normalize()
	if in.PlayerID == nil && in.GuestPlayerName == "" {
		return service.StartSessionInput{}, fmt.Errorf("%w: %w", service.ErrValidation, service.ErrPlayerRequired)
	}

	return in, nil
}
