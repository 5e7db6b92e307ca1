package models

import "time"

// BookingStatus is the closed set of lifecycle states the dashboard knows.
// Unknown values coming off the wire are preserved as-is and rendered
// through the resolver's fallback path rather than rejected.
type BookingStatus string

const (
	BookingPending          BookingStatus = "PENDING"
	BookingConfirmed        BookingStatus = "CONFIRMED"
	BookingPendingExecution BookingStatus = "PENDING_EXECUTION"
	BookingInProgress       BookingStatus = "IN_PROGRESS"
	BookingAwaitingConfirm  BookingStatus = "AWAITING_CONFIRMATION"
	BookingCompleted        BookingStatus = "COMPLETED"
	BookingCancelled        BookingStatus = "CANCELLED"
	BookingDisputed         BookingStatus = "DISPUTED"
)

// Past reports whether the booking lifecycle has moved beyond the given stage.
func (s BookingStatus) Past(stage BookingStatus) bool {
	order := map[BookingStatus]int{
		BookingPending:          0,
		BookingConfirmed:        1,
		BookingPendingExecution: 2,
		BookingInProgress:       3,
		BookingAwaitingConfirm:  4,
		BookingCompleted:        5,
	}
	a, okA := order[s]
	b, okB := order[stage]
	if !okA || !okB {
		return false
	}
	return a > b
}

// Booking represents one service engagement between a client and a provider,
// as reported by the upstream booking API.
type Booking struct {
	ID            string        `json:"id"`
	Status        BookingStatus `json:"status"`
	ScheduledDate time.Time     `json:"scheduledDate"`
	Duration      int           `json:"duration"` // minutes
	TotalAmount   float64       `json:"totalAmount"`
	Address       string        `json:"address"`
	Description   string        `json:"description"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	CreatedAt     time.Time     `json:"createdAt"`
	Payment       *Payment      `json:"payment,omitempty"`
	Provider      *Provider     `json:"provider,omitempty"`
}

// Recent reports whether the booking was created within the last 24 hours.
func (b *Booking) Recent(now time.Time) bool {
	return now.Sub(b.CreatedAt) < 24*time.Hour
}
