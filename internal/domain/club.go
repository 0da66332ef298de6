package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Club struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Address    string `json:"address,omitempty"`
	SubAdminID *uint  `json:"sub_admin_id,omitempty"`
}

// ClubSession is a cash-register period of a club, opened and closed by a manager.
type ClubSession struct {
	ID          uint             `json:"id"`
	ClubID      uint             `json:"club_id"`
	OpeningCash decimal.Decimal  `json:"opening_cash"`
	ClosingCash *decimal.Decimal `json:"closing_cash,omitempty"`
	OpenedAt    time.Time        `json:"opened_at"`
	ClosedAt    *time.Time       `json:"closed_at,omitempty"`
	Notes       string           `json:"notes,omitempty"`
}

func (s ClubSession) Open() bool {
	return s.ClosedAt == nil
}

type Expense struct {
	ID          uint            `json:"id"`
	ClubID      uint            `json:"club_id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	ExpenseDate string          `json:"expense_date"`
}
