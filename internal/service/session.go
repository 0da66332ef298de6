package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/alihassan193/snooker-console/internal/domain"
)

var ErrPlayerRequired = errors.New("a registered player or a guest name is required")

// StartSessionInput is the body the backend expects to open a game on a table.
type StartSessionInput struct {
	TableID         uint   `json:"table_id"`
	GameTypeID      uint   `json:"game_type_id"`
	PricingID       uint   `json:"pricing_id"`
	PlayerID        *uint  `json:"player_id,omitempty"`
	IsGuest         bool   `json:"is_guest"`
	GuestPlayerName string `json:"guest_player_name,omitempty"`
}

// Normalize trims the guest name and derives the guest flag from the player reference.
func (in StartSessionInput) Normalize() StartSessionInput {
	in.GuestPlayerName = strings.TrimSpace(in.GuestPlayerName)
	if in.PlayerID != nil && *in.PlayerID == 0 {
		in.PlayerID = nil
	}
	in.IsGuest = in.PlayerID == nil

	return in
}

func (in StartSessionInput) Validate() error {
	err := validation.ValidateStruct(
		&in,
		validation.Field(&in.TableID, validation.Required),
		validation.Field(&in.GameTypeID, validation.Required),
		validation.Field(&in.PricingID, validation.Required),
		validation.Field(&in.GuestPlayerName, validation.Length(0, 100)),
	)
	if err != nil {
		return err
	}
	if in.PlayerID == nil && strings.TrimSpace(in.GuestPlayerName) == "" {
		return ErrPlayerRequired
	}

	return nil
}

type SessionFilter struct {
	Status  domain.SessionStatus
	TableID uint
	From    string
	To      string
	Page    int
	Limit   int
}

func (f SessionFilter) query() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.TableID != 0 {
		q.Set("table_id", strconv.FormatUint(uint64(f.TableID), 10))
	}
	if f.From != "" {
		q.Set("from", f.From)
	}
	if f.To != "" {
		q.Set("to", f.To)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}

	return q
}

type SessionService struct {
	gw Gateway
}

func NewSessionService(gw Gateway) *SessionService {
	return &SessionService{
		gw: gw,
	}
}

func (s *SessionService) Active(ctx context.Context) ([]domain.Session, error) {
	var sessions []domain.Session
	if err := s.gw.Get(ctx, "/sessions/active", &sessions); err != nil {
		return nil, fmt.Errorf("s.gw.Get -> %w", err)
	}

	return sessions, nil
}

func (s *SessionService) List(ctx context.Context, filter SessionFilter) ([]domain.Session, error) {
	var sessions []domain.Session
	if err := s.gw.Get(ctx, withQuery("/sessions", filter.query()), &sessions); err != nil {
		return nil, fmt.Errorf("s.gw.Get -> %w", err)
	}

	return sessions, nil
}

func (s *SessionService) Get(ctx context.Context, id uint) (domain.Session, error) {
	var session domain.Session
	if err := s.gw.Get(ctx, resourcePath("/sessions", id), &session); err != nil {
		return domain.Session{}, fmt.Errorf("s.gw.Get -> %w", err)
	}

	return session, nil
}

func (s *SessionService) Start(ctx context.Context, in StartSessionInput) (domain.Session, error) {
	in = in.Normalize()
	if err := validate(in); err != nil {
		return domain.Session{}, err
	}

	var session domain.Session
	if err := s.gw.Post(ctx, "/sessions", in, &session); err != nil {
		return domain.Session{}, fmt.Errorf("s.gw.Post -> %w", err)
	}

	return session, nil
}

func (s *SessionService) End(ctx context.Context, id uint) (domain.Session, error) {
	var session domain.Session
	if err := s.gw.Put(ctx, resourcePath("/sessions", id, "end"), struct{}{}, &session); err != nil {
		return domain.Session{}, fmt.Errorf("s.gw.Put -> %w", err)
	}

	return session, nil
}

func (s *SessionService) Cancel(ctx context.Context, id uint) error {
	if err := s.gw.Put(ctx, resourcePath("/sessions", id, "cancel"), struct{}{}, nil); err != nil {
		return fmt.Errorf("s.gw.Put -> %w", err)
	}

	return nil
}

// AddCanteenOrder attaches canteen items to a running session so they land on its invoice.
func (s *SessionService) AddCanteenOrder(ctx context.Context, sessionID uint, lines []domain.OrderLine) (domain.CanteenOrder, error) {
	if err := validateLines(lines); err != nil {
		return domain.CanteenOrder{}, err
	}

	body := map[string]any{"items": lines}
	var order domain.CanteenOrder
	if err := s.gw.Post(ctx, resourcePath("/sessions", sessionID, "orders"), body, &order); err != nil {
		return domain.CanteenOrder{}, fmt.Errorf("s.gw.Post -> %w", err)
	}

	return order, nil
}
