package domain

import "github.com/shopspring/decimal"

type GameType struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Pricing is the price rule of a (table, game type) pair. It is either a fixed price per
// time slot of TimeLimitMinutes, or a price per minute that may be flagged unlimited.
type Pricing struct {
	ID               uint            `json:"id"`
	TableID          uint            `json:"table_id"`
	GameTypeID       uint            `json:"game_type_id"`
	GameType         *GameType       `json:"game_type,omitempty"`
	Price            decimal.Decimal `json:"price"`
	PricePerMinute   decimal.Decimal `json:"price_per_minute"`
	TimeLimitMinutes int             `json:"time_limit_minutes"`
	IsUnlimitedTime  bool            `json:"is_unlimited_time"`
	IsActive         bool            `json:"is_active"`
}

// SlotPrice is the amount billed for one slot, or the flat fee of unlimited pricing.
func (p Pricing) SlotPrice() decimal.Decimal {
	if !p.Price.IsZero() {
		return p.Price
	}

	return p.PricePerMinute
}
