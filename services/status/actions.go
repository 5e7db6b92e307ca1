package status

import "servihub/models"

// Action is a user-facing operation on a booking.
type Action string

const (
	ActionCancel            Action = "cancel"
	ActionModify            Action = "modify"
	ActionReschedule        Action = "reschedule"
	ActionPay               Action = "pay"
	ActionConfirmCompletion Action = "confirmCompletion"
	ActionDispute           Action = "dispute"
	ActionMessage           Action = "message"
)

// NoQuoteMessage is shown instead of the pay button when the provider has
// not priced the booking yet.
const NoQuoteMessage = "Your provider hasn't sent a quote yet. You'll be able to pay once the price is set."

// Eligibility is the gate's full answer: the legal actions plus, when pay is
// suppressed for a priceable reason, the message to show in its place.
type Eligibility struct {
	Actions    []Action
	PayBlocked string
}

// Status-membership tables for the simple gates. The payment-refined gates
// (pay, confirmCompletion) live in their own predicates below.
var (
	cancelStatuses  = statusSet(models.BookingPending, models.BookingConfirmed)
	disputeStatuses = statusSet(models.BookingInProgress, models.BookingAwaitingConfirm, models.BookingCompleted)
	messageStatuses = statusSet(models.BookingConfirmed, models.BookingPendingExecution, models.BookingInProgress)
)

func statusSet(ss ...models.BookingStatus) map[models.BookingStatus]struct{} {
	m := make(map[models.BookingStatus]struct{}, len(ss))
	for _, s := range ss {
		m[s] = struct{}{}
	}
	return m
}

func in(set map[models.BookingStatus]struct{}, s models.BookingStatus) bool {
	_, ok := set[s]
	return ok
}

// AvailableActions computes the admission set for a booking. Pure: it never
// touches the network and calling it twice with the same booking yields the
// same answer.
func AvailableActions(b models.Booking) Eligibility {
	var e Eligibility

	if in(cancelStatuses, b.Status) {
		e.Actions = append(e.Actions, ActionCancel)
	}
	// Address and description freeze once the provider has confirmed.
	if b.Status == models.BookingPending {
		e.Actions = append(e.Actions, ActionModify)
	}
	if b.Status == models.BookingConfirmed {
		e.Actions = append(e.Actions, ActionReschedule)
	}

	if payEligible(b) {
		if b.TotalAmount > 0 {
			e.Actions = append(e.Actions, ActionPay)
		} else {
			e.PayBlocked = NoQuoteMessage
		}
	}

	if confirmEligible(b) {
		e.Actions = append(e.Actions, ActionConfirmCompletion)
	}
	if in(disputeStatuses, b.Status) {
		e.Actions = append(e.Actions, ActionDispute)
	}
	if in(messageStatuses, b.Status) && b.Provider != nil {
		e.Actions = append(e.Actions, ActionMessage)
	}

	return e
}

// Allowed reports whether a single action is currently legal. The dispatcher
// checks this before any network call.
func Allowed(b models.Booking, a Action) bool {
	for _, got := range AvailableActions(b).Actions {
		if got == a {
			return true
		}
	}
	return false
}

func payEligible(b models.Booking) bool {
	if b.Status != models.BookingConfirmed {
		return false
	}
	if b.Payment == nil {
		return true
	}
	return b.Payment.Status == models.PaymentPending || b.Payment.Status == models.PaymentFailed
}

func confirmEligible(b models.Booking) bool {
	p := b.Payment
	if p == nil {
		return false
	}
	if b.Status == models.BookingAwaitingConfirm {
		if b.PaymentMethod == models.MethodCash {
			// Hide once CASH_PAID so the button can't be double-submitted.
			return p.Status == models.PaymentCashPending
		}
		return p.Status.InEscrow()
	}
	// Recovery path: the client reloaded mid-confirmation and the booking
	// already reads COMPLETED while funds still sit in escrow.
	return b.Status == models.BookingCompleted && p.Status.InEscrow()
}

// ConfirmLabel is the button copy for the confirm-completion action.
func ConfirmLabel(method models.PaymentMethod) string {
	if method == models.MethodCash {
		return "Pay Cash"
	}
	return "Confirm Completion"
}
