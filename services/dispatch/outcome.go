package dispatch

import (
	"errors"

	"servihub/models"
	"servihub/upstream"
)

// ErrorKind buckets a failed dispatch for user-facing handling.
type ErrorKind string

const (
	// ErrNetwork: the request never reached the API; retried by polling.
	ErrNetwork ErrorKind = "network"
	// ErrApplication: the API refused with a structured message.
	ErrApplication ErrorKind = "application"
	// ErrMalformed: 2xx with an unparsable body; generic message.
	ErrMalformed ErrorKind = "malformed"
	// ErrNotAllowed: the action gate rejected the action before dispatch.
	ErrNotAllowed ErrorKind = "notAllowed"
	// ErrInFlight: a pay call for this booking is already running.
	ErrInFlight ErrorKind = "inFlight"
)

// Outcome is the dispatcher's answer. NewStatus is the server-declared
// status on success, or the unchanged prior status otherwise.
type Outcome struct {
	OK          bool                 `json:"ok"`
	NewStatus   models.BookingStatus `json:"newStatus"`
	Message     string               `json:"message,omitempty"`
	RedirectURL string               `json:"redirectUrl,omitempty"`
	Resumed     bool                 `json:"resumed,omitempty"`
	ErrorKind   ErrorKind            `json:"errorKind,omitempty"`
}

const (
	networkCopy = "Can't reach the server right now. We'll keep checking — your booking is unchanged."
	genericCopy = "Something went wrong on our side. Please try again."
)

// classify maps an upstream error to its bucket and display copy. Server
// messages are surfaced verbatim; everything else gets stable generic copy.
func classify(err error) (ErrorKind, string) {
	var te *upstream.TransportError
	if errors.As(err, &te) {
		return ErrNetwork, networkCopy
	}
	var ae *upstream.APIError
	if errors.As(err, &ae) {
		if ae.Message != "" {
			return ErrApplication, ae.Message
		}
		return ErrApplication, genericCopy
	}
	var de *upstream.DecodeError
	if errors.As(err, &de) {
		return ErrMalformed, genericCopy
	}
	return ErrApplication, genericCopy
}
