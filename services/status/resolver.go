package status

import (
	"strings"

	"servihub/models"
)

// statusMeta is the single source of truth for how each booking status is
// presented. Every dashboard variant renders from this table; none may carry
// its own copy.
type statusMeta struct {
	Label       string
	Description string
	ColorToken  string
	Icon        string
}

var statusTable = map[models.BookingStatus]statusMeta{
	models.BookingPending: {
		Label:       "Pending Approval",
		Description: "Waiting for the provider to accept your booking.",
		ColorToken:  "amber",
		Icon:        "⏳",
	},
	models.BookingConfirmed: {
		Label:       "Confirmed",
		Description: "Your provider accepted. Complete payment to lock in your slot.",
		ColorToken:  "blue",
		Icon:        "📅",
	},
	models.BookingPendingExecution: {
		Label:       "Scheduled",
		Description: "Payment received. Your provider will start at the scheduled time.",
		ColorToken:  "indigo",
		Icon:        "💳",
	},
	models.BookingInProgress: {
		Label:       "In Progress",
		Description: "Your provider is working on this booking.",
		ColorToken:  "sky",
		Icon:        "🔧",
	},
	models.BookingAwaitingConfirm: {
		Label:       "Awaiting Your Confirmation",
		Description: "The provider marked this as done. Confirm to wrap it up.",
		ColorToken:  "purple",
		Icon:        "🕓",
	},
	models.BookingCompleted: {
		Label:       "Completed",
		Description: "This booking is finished. Thanks for using the service!",
		ColorToken:  "green",
		Icon:        "✅",
	},
	models.BookingCancelled: {
		Label:       "Cancelled",
		Description: "This booking was cancelled.",
		ColorToken:  "red",
		Icon:        "❌",
	},
	models.BookingDisputed: {
		Label:       "Disputed",
		Description: "This booking is under review. We'll be in touch shortly.",
		ColorToken:  "orange",
		Icon:        "⚠️",
	},
}

// PaymentSettled reports whether the booking's payment should be treated as
// captured. The payment record's own status is authoritative; inferring from
// the booking status alone is strictly a fallback for webhook lag, where the
// booking has advanced to (or past) PENDING_EXECUTION while the payment
// record is missing or still shows PENDING.
func PaymentSettled(s models.BookingStatus, p *models.Payment) bool {
	if p != nil {
		switch p.Status {
		case models.PaymentEscrow, models.PaymentHeldInEscrow,
			models.PaymentReleased, models.PaymentCompleted,
			models.PaymentCashPaid, models.PaymentProcessingRelease:
			return true
		}
	}
	if p == nil || p.Status == models.PaymentPending {
		return s == models.BookingPendingExecution || s.Past(models.BookingPendingExecution)
	}
	return false
}

// Resolve maps a booking's (status, payment, method) triple to everything a
// renderer needs. Total: unknown statuses humanize into a fallback view, and
// the function never errors.
func Resolve(s models.BookingStatus, p *models.Payment, method models.PaymentMethod) models.StatusView {
	meta, ok := statusTable[s]
	if !ok {
		meta = statusMeta{
			Label:       humanize(string(s)),
			Description: "Unknown status",
			ColorToken:  "gray",
			Icon:        "❔",
		}
	}

	return models.StatusView{
		Label:       meta.Label,
		Description: meta.Description,
		ColorToken:  meta.ColorToken,
		Icon:        meta.Icon,
		Timeline:    Timeline(s, p, method),
	}
}

// timelineStep declares the booking statuses under which the step counts as
// complete. Payment steps override doneWhen with a payment-aware check.
type timelineStep struct {
	id       string
	label    string
	doneWhen []models.BookingStatus
	payment  bool
}

var progressed = []models.BookingStatus{
	models.BookingConfirmed, models.BookingPendingExecution,
	models.BookingInProgress, models.BookingAwaitingConfirm,
	models.BookingCompleted,
}

var working = []models.BookingStatus{
	models.BookingInProgress, models.BookingAwaitingConfirm,
	models.BookingCompleted,
}

func steps(method models.PaymentMethod) []timelineStep {
	payLabel := "Paid"
	if method == models.MethodCash {
		payLabel = "Pay in Cash"
	}
	return []timelineStep{
		{id: "requested", label: "Booking Requested", doneWhen: nil}, // always complete
		{id: "confirmed", label: "Provider Confirmed", doneWhen: progressed},
		{id: "payment", label: payLabel, payment: true},
		{id: "in_progress", label: "Service In Progress", doneWhen: working},
		{id: "completed", label: "Completed", doneWhen: []models.BookingStatus{models.BookingCompleted}},
	}
}

// Timeline computes the ordered progress steps for a booking. Cancellation
// freezes progress at the first step; a dispute freezes it after the payment
// step, since that is the point the interruption occurred.
func Timeline(s models.BookingStatus, p *models.Payment, method models.PaymentMethod) []models.TimelineStep {
	defs := steps(method)
	out := make([]models.TimelineStep, 0, len(defs))

	paymentIdx := 2
	for i, def := range defs {
		var done bool
		switch {
		case s == models.BookingCancelled:
			done = i == 0
		case s == models.BookingDisputed:
			done = i <= paymentIdx
		case def.payment:
			done = PaymentSettled(s, p)
		case def.doneWhen == nil:
			done = true
		default:
			done = contains(def.doneWhen, s)
		}
		out = append(out, models.TimelineStep{ID: def.id, Label: def.label, Completed: done})
	}
	return out
}

func contains(set []models.BookingStatus, s models.BookingStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// humanize turns an unrecognized status string into display copy,
// e.g. "ON_HOLD_REVIEW" -> "On Hold Review".
func humanize(raw string) string {
	if raw == "" {
		return "Unknown"
	}
	words := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	if len(words) == 0 {
		return "Unknown"
	}
	return strings.Join(words, " ")
}
