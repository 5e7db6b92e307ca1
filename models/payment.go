package models

import "time"

// PaymentMethod distinguishes cash-on-delivery from online gateway payments.
type PaymentMethod string

const (
	MethodCash   PaymentMethod = "CASH"
	MethodOnline PaymentMethod = "ONLINE"
)

// PaymentStatus values mirror the upstream payment lifecycle, including the
// escrow states used for online payments and the cash acknowledgement pair.
type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "PENDING"
	PaymentEscrow            PaymentStatus = "ESCROW"
	PaymentHeldInEscrow      PaymentStatus = "HELD_IN_ESCROW"
	PaymentReleased          PaymentStatus = "RELEASED"
	PaymentCompleted         PaymentStatus = "COMPLETED"
	PaymentFailed            PaymentStatus = "FAILED"
	PaymentCashPending       PaymentStatus = "CASH_PENDING"
	PaymentCashPaid          PaymentStatus = "CASH_PAID"
	PaymentProcessingRelease PaymentStatus = "PROCESSING_RELEASE"
)

// InEscrow reports whether funds are captured and held by the platform.
func (s PaymentStatus) InEscrow() bool {
	return s == PaymentEscrow || s == PaymentHeldInEscrow
}

// Transient reports whether the status is expected to change without user
// action (a gateway webhook still in flight). This is the watch set for
// payment polling; release processing resolves on its own and is not
// watched.
func (s PaymentStatus) Transient() bool {
	return s == PaymentPending || s.InEscrow()
}

// Payment represents the single active monetary transaction tied to a booking.
// Historical payments are not modeled; the upstream API always reports the
// latest one.
type Payment struct {
	ID               string        `json:"id"`
	Amount           float64       `json:"amount"`
	Status           PaymentStatus `json:"status"`
	CreatedAt        time.Time     `json:"createdAt"`
	AuthorizationURL string        `json:"authorizationUrl,omitempty"`
	Payout           string        `json:"payout,omitempty"`
}
