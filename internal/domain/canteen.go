package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CanteenCategory struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type CanteenItem struct {
	ID            uint            `json:"id"`
	CategoryID    uint            `json:"category_id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	IsAvailable   bool            `json:"is_available"`
}

type OrderLine struct {
	ItemID   uint `json:"item_id"`
	Quantity int  `json:"quantity"`
}

type CanteenOrder struct {
	ID          uint            `json:"id"`
	SessionID   *uint           `json:"session_id,omitempty"`
	Items       []OrderLine     `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
}
