package service

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/alihassan193/snooker-console/internal/domain"
)

type TableInput struct {
	Number    int                `json:"table_number"`
	TableType string             `json:"table_type"`
	Status    domain.TableStatus `json:"status,omitempty"`
	ClubID    uint               `json:"club_id,omitempty"`
}

func (in TableInput) Validate() error {
	return validation.ValidateStruct(
		&in,
		validation.Field(&in.Number, validation.Required, validation.Min(1)),
		validation.Field(&in.TableType, validation.Required, validation.Length(1, 50)),
		validation.Field(&in.Status, validation.By(func(any) error {
			if in.Status != "" && !in.Status.Valid() {
				return errors.New("must be available, occupied, maintenance or reserved")
			}
			return nil
		})),
	)
}

type PricingInput struct {
	GameTypeID       uint            `json:"game_type_id"`
	Price            decimal.Decimal `json:"price"`
	PricePerMinute   decimal.Decimal `json:"price_per_minute"`
	TimeLimitMinutes int             `json:"time_limit_minutes"`
	IsUnlimitedTime  bool            `json:"is_unlimited_time"`
	IsActive         bool            `json:"is_active"`
}

func (in PricingInput) Validate() error {
	return validation.ValidateStruct(
		&in,
		validation.Field(&in.GameTypeID, validation.Required),
		validation.Field(&in.Price, validation.By(nonNegative), validation.By(func(any) error {
			if in.Price.IsZero() && in.PricePerMinute.IsZero() {
				return errors.New("either price or price_per_minute is required")
			}
			return nil
		})),
		validation.Field(&in.PricePerMinute, validation.By(nonNegative)),
		validation.Field(&in.TimeLimitMinutes, validation.Min(0)),
	)
}

func nonNegative(value any) error {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return errors.New("must be a decimal amount")
	}
	if d.IsNegative() {
		return errors.New("must not be negative")
	}

	return nil
}

func positive(value any) error {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return errors.New("must be a decimal amount")
	}
	if !d.IsPositive() {
		return errors.New("must be greater than zero")
	}

	return nil
}

type TableService struct {
	gw Gateway
}

func NewTableService(gw Gateway) *TableService {
	return &TableService{
		gw: gw,
	}
}

func (s *TableService) List(ctx context.Context) ([]domain.Table, error) {
	var tables []domain.Table
	if err := s.gw.Get(ctx, "/tables", &tables); err != nil {
		return nil, fmt.Errorf("s.gw.Get -> %w", err)
	}

	return tables, nil
}

func (s *TableService) Get(ctx context.Context, id uint) (domain.Table, error) {
	var table domain.Table
	if err := s.gw.Get(ctx, resourcePath("/tables", id), &table); err != nil {
		return domain.Table{}, fmt.Errorf("s.gw.Get -> %w", err)
	}

	return table, nil
}

func (s *TableService) Create(ctx context.Context, in TableInput) (domain.Table, error) {
	if err := validate(in); err != nil {
		return domain.Table{}, err
	}

	var table domain.Table
	if err := s.gw.Post(ctx, "/tables", in, &table); err != nil {
		return domain.Table{}, fmt.Errorf("s.gw.Post -> %w", err)
	}

	return table, nil
}

func (s *TableService) Update(ctx context.Context, id uint, in TableInput) (domain.Table, error) {
	if err := validate(in); err != nil {
		return domain.Table{}, err
	}

	var table domain.Table
	if err := s.gw.Put(ctx, resourcePath("/tables", id), in, &table); err != nil {
		return domain.Table{}, fmt.Errorf("s.gw.Put -> %w", err)
	}

	return table, nil
}

func (s *TableService) Delete(ctx context.Context, id uint) error {
	if err := s.gw.Delete(ctx, resourcePath("/tables", id), nil); err != nil {
		return fmt.Errorf("s.gw.Delete -> %w", err)
	}

	return nil
}

func (s *TableService) Pricing(ctx context.Context, tableID uint) ([]domain.Pricing, error) {
	var pricing []domain.Pricing
	if err := s.gw.Get(ctx, resourcePath("/tables", tableID, "pricing"), &pricing); err != nil {
		return nil, fmt.Errorf("s.gw.Get -> %w", err)
	}

	return pricing, nil
}

func (s *TableService) UpsertPricing(ctx context.Context, tableID uint, in PricingInput) (domain.Pricing, error) {
	if err := validate(in); err != nil {
		return domain.Pricing{}, err
	}

	var pricing domain.Pricing
	if err := s.gw.Post(ctx, resourcePath("/tables", tableID, "pricing"), in, &pricing); err != nil {
		return domain.Pricing{}, fmt.Errorf("s.gw.Post -> %w", err)
	}

	return pricing, nil
}

func (s *TableService) GameTypes(ctx context.Context) ([]domain.GameType, error) {
	var gameTypes []domain.GameType
	if err := s.gw.Get(ctx, "/game-types", &gameTypes); err != nil {
		return nil, fmt.Errorf("s.gw.Get -> %w", err)
	}

	return gameTypes, nil
}
