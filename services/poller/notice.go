package poller

import (
	"time"

	"servihub/models"
)

// NoticeLevel grades how worried the UI should look about a pending payment.
type NoticeLevel int

const (
	// NoticeNone: payment is not in a state worth watching.
	NoticeNone NoticeLevel = iota
	// NoticeWaiting: pending and young; show the basic indicator only.
	NoticeWaiting
	// NoticeDelayed: taking longer than usual; reassure, no action needed.
	NoticeDelayed
	// NoticeStuck: webhook likely lost; offer a manual recheck.
	NoticeStuck
)

func (l NoticeLevel) String() string {
	switch l {
	case NoticeWaiting:
		return "waiting"
	case NoticeDelayed:
		return "delayed"
	case NoticeStuck:
		return "stuck"
	}
	return "none"
}

// PaymentNotice is the user-facing verdict for one pending payment.
type PaymentNotice struct {
	Level      NoticeLevel `json:"level"`
	Message    string      `json:"message,omitempty"`
	CanRecheck bool        `json:"canRecheck"`
}

const (
	waitingCopy = "Awaiting payment confirmation…"
	delayedCopy = "Payment confirmation is taking a little longer than usual. No action needed — we're still checking."
	stuckCopy   = "We haven't heard back about this payment yet. It may have gone through; use Check Status to sync it now."
)

// NoticeFor grades a payment by how long it has sat in PENDING. The
// thresholds only apply to PENDING: escrow states are watched but expected,
// and settled or failed payments need no notice at all.
func NoticeFor(p *models.Payment, now time.Time, delayedAfter, stuckAfter time.Duration) PaymentNotice {
	if p == nil || p.Status != models.PaymentPending {
		return PaymentNotice{Level: NoticeNone}
	}

	age := now.Sub(p.CreatedAt)
	switch {
	case age > stuckAfter:
		return PaymentNotice{Level: NoticeStuck, Message: stuckCopy, CanRecheck: true}
	case age >= delayedAfter:
		return PaymentNotice{Level: NoticeDelayed, Message: delayedCopy}
	default:
		return PaymentNotice{Level: NoticeWaiting, Message: waitingCopy}
	}
}
