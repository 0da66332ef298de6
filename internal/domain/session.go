package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

type Session struct {
	ID              uint            `json:"id"`
	TableID         uint            `json:"table_id"`
	GameTypeID      uint            `json:"game_type_id"`
	PricingID       uint            `json:"pricing_id"`
	PlayerID        *uint           `json:"player_id,omitempty"`
	IsGuest         bool            `json:"is_guest"`
	GuestPlayerName string          `json:"guest_player_name,omitempty"`
	PlayerName      string          `json:"player_name,omitempty"`
	StartTime       time.Time       `json:"start_time"`
	EndTime         *time.Time      `json:"end_time,omitempty"`
	Status          SessionStatus   `json:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Pricing         *Pricing        `json:"pricing,omitempty"`
	GameType        *GameType       `json:"game_type,omitempty"`
	InvoiceID       *uint           `json:"invoice_id,omitempty"`
}

func (s Session) Active() bool {
	return s.Status == SessionActive
}

type Player struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}
