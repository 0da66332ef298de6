package domain

import "time"

type TableStatus string

const (
	TableAvailable   TableStatus = "available"
	TableOccupied    TableStatus = "occupied"
	TableMaintenance TableStatus = "maintenance"
	TableReserved    TableStatus = "reserved"
)

var TableStatuses = []TableStatus{TableAvailable, TableOccupied, TableMaintenance, TableReserved}

func (s TableStatus) Valid() bool {
	for _, status := range TableStatuses {
		if s == status {
			return true
		}
	}

	return false
}

type Table struct {
	ID        uint        `json:"id"`
	Number    int         `json:"table_number"`
	Status    TableStatus `json:"status"`
	TableType string      `json:"table_type"`
	ClubID    uint        `json:"club_id,omitempty"`
	Pricing   []Pricing   `json:"pricing,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// ActivePricing returns the table's pricing entries that can be offered to the operator.
func (t Table) ActivePricing() []Pricing {
	active := make([]Pricing, 0, len(t.Pricing))
	for _, p := range t.Pricing {
		if p.IsActive {
			active = append(active, p)
		}
	}

	return active
}

// PricingByID looks up any pricing entry of the table, active or not.
func (t Table) PricingByID(id uint) (Pricing, bool) {
	for _, p := range t.Pricing {
		if p.ID == id {
			return p, true
		}
	}

	return Pricing{}, false
}
