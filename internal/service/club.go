package service

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/alihassan193/snooker-console/internal/domain"
	"github.com/alihassan193/snooker-console/internal/gateway"
)

type OpenClubSessionInput struct {
	OpeningCash decimal.Decimal `json:"opening_cash"`
	Notes       string          `json:"notes,omitempty"`
}

func (in OpenClubSessionInput) Validate() error {
	return validation.ValidateStruct(
		&in,
		validation.Field(&in.OpeningCash, validation.By(nonNegative)),
		validation.Field(&in.Notes, validation.Length(0, 500)),
	)
}

type CloseClubSessionInput struct {
	ClosingCash decimal.Decimal `json:"closing_cash"`
	Notes       string          `json:"notes,omitempty"`
}

func (in CloseClubSessionInput) Validate() error {
	return validation.ValidateStruct(
		&in,
		validation.Field(&in.ClosingCash, validation.By(nonNegative)),
		validation.Field(&in.Notes, validation.Length(0, 500)),
	)
}

type ClubService struct {
	gw Gateway
}

func NewClubService(gw Gateway) *ClubService {
	return &ClubService{
		gw: gw,
	}
}

func (s *ClubService) List(ctx context.Context) ([]domain.Club, error) {
	var clubs []domain.Club
	if err := s.gw.Get(ctx, "/clubs", &clubs); err != nil {
		return nil, fmt.Errorf("s.gw.Get -> %w", err)
	}

	return clubs, nil
}

func (s *ClubService) Get(ctx context.Context, id uint) (domain.Club, error) {
	var club domain.Club
	if err := s.gw.Get(ctx, resourcePath("/clubs", id), &club); err != nil {
		return domain.Club{}, fmt.Errorf("s.gw.Get -> %w", err)
	}

	return club, nil
}

// ActiveSession returns the club's open cash-register session, or nil when none is open.
func (s *ClubService) ActiveSession(ctx context.Context, clubID uint) (*domain.ClubSession, error) {
	var session *domain.ClubSession
	err := s.gw.Get(ctx, resourcePath("/clubs", clubID, "sessions", "active"), &session)
	if gateway.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("s.gw.Get -> %w", err)
	}
	if session != nil && (session.ID == 0 || !session.Open()) {
		return nil, nil
	}

	return session, nil
}

func (s *ClubService) OpenSession(ctx context.Context, clubID uint, in OpenClubSessionInput) (domain.ClubSession, error) {
	if clubID == 0 {
		return domain.ClubSession{}, fmt.Errorf("%w: operator is not assigned to a club", ErrValidation)
	}
	if err := validate(in); err != nil {
		return domain.ClubSession{}, err
	}

	var session domain.ClubSession
	if err := s.gw.Post(ctx, resourcePath("/clubs", clubID, "sessions"), in, &session); err != nil {
		return domain.ClubSession{}, fmt.Errorf("s.gw.Post -> %w", err)
	}

	return session, nil
}

func (s *ClubService) CloseSession(ctx context.Context, sessionID uint, in CloseClubSessionInput) (domain.ClubSession, error) {
	if err := validate(in); err != nil {
		return domain.ClubSession{}, err
	}

	var session domain.ClubSession
	if err := s.gw.Put(ctx, resourcePath("/club-sessions", sessionID, "close"), in, &session); err != nil {
		return domain.ClubSession{}, fmt.Errorf("s.gw.Put -> %w", err)
	}

	return session, nil
}
