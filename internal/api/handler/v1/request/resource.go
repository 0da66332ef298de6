package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/shopspring/decimal"

	"github.com/alihassan193/snooker-console/internal/domain"
)

func nonNegative(value any) error {
	if d, ok := value.(decimal.Decimal); ok && d.IsNegative() {
		return errors.New("must not be negative")
	}

	return nil
}

func positive(value any) error {
	if d, ok := value.(decimal.Decimal); ok && !d.IsPositive() {
		return errors.New("must be greater than zero")
	}

	return nil
}

type ClubSessionRequest struct {
	Cash  decimal.Decimal `json:"cash"`
	Notes string          `json:"notes"`
}

func (req *ClubSessionRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Cash, validation.By(nonNegative)),
		validation.Field(&req.Notes, validation.Length(0, 500)),
	)
}

type InvoiceStatusRequest struct {
	PaymentStatus string `json:"payment_status"`
	PaymentMethod string `json:"payment_method"`
}

func (req *InvoiceStatusRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.PaymentStatus, validation.Required, validation.In(
			string(domain.PaymentPending), string(domain.PaymentPaid), string(domain.PaymentCancelled),
		)),
		validation.Field(&req.PaymentMethod, validation.In("cash", "card", "online")),
	)
}

type TableRequest struct {
	Number    int    `json:"table_number"`
	TableType string `json:"table_type"`
	Status    string `json:"status"`
	ClubID    uint   `json:"club_id"`
}

func (req *TableRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Number, validation.Required, validation.Min(1)),
		validation.Field(&req.TableType, validation.Required, validation.Length(1, 50)),
		validation.Field(&req.Status, validation.In(
			string(domain.TableAvailable), string(domain.TableOccupied),
			string(domain.TableMaintenance), string(domain.TableReserved),
		)),
	)
}

type PricingRequest struct {
	GameTypeID       uint            `json:"game_type_id"`
	Price            decimal.Decimal `json:"price"`
	PricePerMinute   decimal.Decimal `json:"price_per_minute"`
	TimeLimitMinutes int             `json:"time_limit_minutes"`
	IsUnlimitedTime  bool            `json:"is_unlimited_time"`
	IsActive         *bool           `json:"is_active"`
}

func (req *PricingRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.GameTypeID, validation.Required),
		validation.Field(&req.Price, validation.By(nonNegative)),
		validation.Field(&req.PricePerMinute, validation.By(nonNegative)),
		validation.Field(&req.TimeLimitMinutes, validation.Min(0)),
	)
}

type CanteenItemRequest struct {
	CategoryID    uint            `json:"category_id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	IsAvailable   *bool           `json:"is_available"`
}

func (req *CanteenItemRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.CategoryID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Price, validation.By(positive)),
		validation.Field(&req.StockQuantity, validation.Min(0)),
	)
}

type StockRequest struct {
	StockQuantity int `json:"stock_quantity"`
}

func (req *StockRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.StockQuantity, validation.Min(0)),
	)
}

type PlayerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

func (req *PlayerRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Phone, validation.Length(0, 20)),
		validation.Field(&req.Email, is.Email),
	)
}

type ExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	ExpenseDate string          `json:"expense_date" format:"YYYY-MM-DD"`
}

func (req *ExpenseRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Amount, validation.By(positive)),
		validation.Field(&req.Category, validation.Required, validation.Length(1, 50)),
		validation.Field(&req.Description, validation.Length(0, 500)),
		validation.Field(&req.ExpenseDate, validation.Required, validation.Date("2006-01-02")),
	)
}
