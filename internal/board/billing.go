package board

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/alihassan193/snooker-console/internal/domain"
)

// Elapsed is the whole minutes between start and now. A start in the future counts as zero.
func Elapsed(start, now time.Time) int {
	if start.IsZero() || !now.After(start) {
		return 0
	}

	return int(now.Sub(start) / time.Minute)
}

// BilledSlots is the number of started time slots: any partial slot bills as a full one.
func BilledSlots(elapsedMinutes, slotMinutes int) int {
	if elapsedMinutes <= 0 || slotMinutes <= 0 {
		return 0
	}

	return (elapsedMinutes + slotMinutes - 1) / slotMinutes
}

// EstimateCost is the client-side running cost of a session. The backend invoice stays
// authoritative and may differ.
func EstimateCost(p domain.Pricing, elapsedMinutes int) decimal.Decimal {
	switch {
	case p.IsUnlimitedTime:
		return p.SlotPrice()
	case p.TimeLimitMinutes > 0:
		slots := BilledSlots(elapsedMinutes, p.TimeLimitMinutes)
		return p.SlotPrice().Mul(decimal.NewFromInt(int64(slots)))
	case elapsedMinutes > 0:
		return p.PricePerMinute.Mul(decimal.NewFromInt(int64(elapsedMinutes)))
	}

	return decimal.Zero
}
