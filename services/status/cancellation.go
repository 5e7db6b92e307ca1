package status

import (
	"time"

	"servihub/models"

	"github.com/shopspring/decimal"
)

// Cancellation fee windows. Cancelling within lateWindow of the appointment
// costs latePct of the total, within earlyWindow costs earlyPct, and earlier
// than that is free. Enforcement happens upstream; this only derives the
// copy every card must agree on.
const (
	lateWindow  = 12 * time.Hour
	earlyWindow = 24 * time.Hour
)

// CancellationTerms computes the display-only fee terms for cancelling the
// booking at `now`. Returns nil when cancel is not currently available.
func CancellationTerms(b models.Booking, now time.Time, latePct, earlyPct int) *models.CancellationTerm {
	if !Allowed(b, ActionCancel) {
		return nil
	}

	until := b.ScheduledDate.Sub(now)
	pct := 0
	switch {
	case until <= lateWindow:
		pct = latePct
	case until <= earlyWindow:
		pct = earlyPct
	}

	term := &models.CancellationTerm{FeePercent: pct}
	if pct > 0 && b.TotalAmount > 0 {
		fee := decimal.NewFromFloat(b.TotalAmount).
			Mul(decimal.NewFromInt(int64(pct))).
			Div(decimal.NewFromInt(100)).
			Round(2)
		term.FeeAmount = fee.InexactFloat64()
	}
	if pct == earlyPct && pct > 0 {
		term.Deadline = b.ScheduledDate.Add(-lateWindow).Format(time.RFC3339)
	}
	return term
}
