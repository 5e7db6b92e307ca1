package models

import "time"

// TimelineStep is one entry of the derived booking progress timeline.
// Steps are never persisted; they are recomputed per render.
type TimelineStep struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Completed bool   `json:"completed"`
}

// StatusView is the resolver's full answer for one booking: everything a
// presentational component needs to render status without re-deriving rules.
type StatusView struct {
	Label       string         `json:"label"`
	Description string         `json:"description"`
	ColorToken  string         `json:"colorToken"`
	Icon        string         `json:"icon"`
	Timeline    []TimelineStep `json:"timeline"`
}

// BookingView decorates a raw booking with everything derived from it.
type BookingView struct {
	Booking      Booking           `json:"booking"`
	Status       StatusView        `json:"status"`
	Actions      []string          `json:"actions"`
	PayBlocked   string            `json:"payBlocked,omitempty"` // set when pay is suppressed (e.g. no quote yet)
	ConfirmLabel string            `json:"confirmLabel,omitempty"`
	Recent       bool              `json:"recent"`
	Cancellation *CancellationTerm `json:"cancellation,omitempty"`
}

// CancellationTerm is the display-only fee schedule entry for cancelling now.
type CancellationTerm struct {
	FeePercent int     `json:"feePercent"`
	FeeAmount  float64 `json:"feeAmount"`
	Deadline   string  `json:"deadline,omitempty"`
}

// BookingListSnapshot is what the watcher caches between refreshes to diff
// payment status per booking.
type BookingListSnapshot struct {
	Version   int64                    `json:"version"`
	FetchedAt time.Time                `json:"fetchedAt"`
	Payments  map[string]PaymentStatus `json:"payments"`
}
