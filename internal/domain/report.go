package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type DailyReport struct {
	Date           string          `json:"date"`
	SessionsCount  int             `json:"sessions_count"`
	GameRevenue    decimal.Decimal `json:"game_revenue"`
	CanteenRevenue decimal.Decimal `json:"canteen_revenue"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	Expenses       decimal.Decimal `json:"total_expenses"`
	Details        json.RawMessage `json:"details,omitempty"`
}

type RevenueReport struct {
	From         string          `json:"from"`
	To           string          `json:"to"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	Breakdown    json.RawMessage `json:"breakdown,omitempty"`
}
