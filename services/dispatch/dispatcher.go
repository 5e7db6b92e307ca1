package dispatch

import (
	"context"
	"sync"

	"servihub/models"
	"servihub/services/status"
	"servihub/upstream"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Payload carries the per-action request fields. Unused fields are ignored
// by actions that don't need them.
type Payload struct {
	Address     string `json:"address,omitempty"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Details     string `json:"details,omitempty"`
}

// Dispatcher executes booking actions against the upstream API.
type Dispatcher interface {
	Dispatch(ctx context.Context, action status.Action, b models.Booking, payload Payload) Outcome
}

// DefaultDispatcher implements Dispatcher. Admission via the action gate
// always precedes a network call, and optimistic status updates only come
// from server-confirmed responses.
type DefaultDispatcher struct {
	Client *upstream.Client
	Logger *zap.Logger

	mu       sync.Mutex
	inFlight map[string]struct{} // booking ids with a pay call in flight
}

func NewDispatcher(client *upstream.Client, logger *zap.Logger) *DefaultDispatcher {
	return &DefaultDispatcher{
		Client:   client,
		Logger:   logger,
		inFlight: make(map[string]struct{}),
	}
}

func (d *DefaultDispatcher) Dispatch(ctx context.Context, action status.Action, b models.Booking, payload Payload) Outcome {
	log := d.Logger.With(
		zap.String("dispatchId", uuid.New().String()),
		zap.String("bookingId", b.ID),
		zap.String("action", string(action)),
	)

	if !status.Allowed(b, action) {
		log.Warn("action rejected by gate", zap.String("status", string(b.Status)))
		return Outcome{
			OK:        false,
			NewStatus: b.Status,
			ErrorKind: ErrNotAllowed,
			Message:   "That action isn't available for this booking right now.",
		}
	}

	switch action {
	case status.ActionPay:
		return d.pay(ctx, b, log)
	case status.ActionCancel:
		return d.mutate(ctx, b, log, func() (*upstream.ActionResponse, error) {
			return d.Client.Cancel(ctx, b.ID)
		})
	case status.ActionModify:
		return d.mutate(ctx, b, log, func() (*upstream.ActionResponse, error) {
			return d.Client.Modify(ctx, b.ID, payload.Address, payload.Description)
		})
	case status.ActionReschedule:
		return d.mutate(ctx, b, log, func() (*upstream.ActionResponse, error) {
			return d.Client.Reschedule(ctx, b.ID, payload.Date, payload.Time)
		})
	case status.ActionDispute:
		return d.mutate(ctx, b, log, func() (*upstream.ActionResponse, error) {
			return d.Client.Dispute(ctx, b.ID, payload.Reason, payload.Details)
		})
	case status.ActionConfirmCompletion:
		return d.mutate(ctx, b, log, func() (*upstream.ActionResponse, error) {
			return d.Client.ReleasePayment(ctx, b.ID)
		})
	default:
		// message has no endpoint here; the chat surface owns it.
		log.Warn("no dispatch mapping for action")
		return Outcome{
			OK:        false,
			NewStatus: b.Status,
			ErrorKind: ErrNotAllowed,
			Message:   "That action isn't available for this booking right now.",
		}
	}
}

// mutate runs one booking mutation endpoint and interprets the response.
// The new status comes from the server when declared, otherwise the prior
// status is retained; a status value is never invented locally.
func (d *DefaultDispatcher) mutate(ctx context.Context, b models.Booking, log *zap.Logger, call func() (*upstream.ActionResponse, error)) Outcome {
	resp, err := call()
	if err != nil {
		kind, msg := classify(err)
		log.Warn("booking action failed", zap.String("kind", string(kind)), zap.Error(err))
		return Outcome{OK: false, NewStatus: b.Status, ErrorKind: kind, Message: msg}
	}

	newStatus := b.Status
	if resp.Booking != nil && resp.Booking.Status != "" {
		newStatus = resp.Booking.Status
	}
	log.Info("booking action applied", zap.String("newStatus", string(newStatus)))
	return Outcome{OK: true, NewStatus: newStatus, Message: resp.Message}
}

// pay initiates payment. It may complete synchronously (already paid or a
// zero-amount edge the server accepted) or return a gateway redirect; the
// caller redirects and lets the payment watcher observe the webhook result.
func (d *DefaultDispatcher) pay(ctx context.Context, b models.Booking, log *zap.Logger) Outcome {
	if !d.beginPay(b.ID) {
		log.Warn("duplicate pay attempt rejected")
		return Outcome{
			OK:        false,
			NewStatus: b.Status,
			ErrorKind: ErrInFlight,
			Message:   "A payment for this booking is already in progress.",
		}
	}
	defer d.endPay(b.ID)

	resp, err := d.Client.Pay(ctx, b.ID)
	if err != nil {
		// Recovery fallback: a gateway session may already exist for this
		// attempt. Resuming it avoids a duplicate session for one booking.
		if out, ok := d.resumeExisting(ctx, b, log); ok {
			return out
		}
		kind, msg := classify(err)
		log.Warn("payment initiation failed", zap.String("kind", string(kind)), zap.Error(err))
		return Outcome{OK: false, NewStatus: b.Status, ErrorKind: kind, Message: msg}
	}

	if resp.ShouldRedirect || resp.AuthorizationURL != "" {
		log.Info("payment redirect issued")
		return Outcome{OK: true, NewStatus: b.Status, RedirectURL: resp.AuthorizationURL, Message: resp.Message}
	}

	newStatus := b.Status
	if resp.BookingStatus != "" {
		newStatus = resp.BookingStatus
	}
	log.Info("payment completed synchronously", zap.String("newStatus", string(newStatus)))
	return Outcome{OK: true, NewStatus: newStatus, Message: resp.Message}
}

func (d *DefaultDispatcher) resumeExisting(ctx context.Context, b models.Booking, log *zap.Logger) (Outcome, bool) {
	probe, err := d.Client.PaymentStatus(ctx, b.ID)
	if err != nil {
		return Outcome{}, false
	}
	if probe.Payment.Status == models.PaymentPending && probe.Payment.AuthorizationURL != "" {
		log.Info("resuming existing gateway session")
		return Outcome{
			OK:          true,
			NewStatus:   b.Status,
			RedirectURL: probe.Payment.AuthorizationURL,
			Resumed:     true,
			Message:     "Resuming your existing payment session.",
		}, true
	}
	return Outcome{}, false
}

func (d *DefaultDispatcher) beginPay(bookingID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, busy := d.inFlight[bookingID]; busy {
		return false
	}
	d.inFlight[bookingID] = struct{}{}
	return true
}

func (d *DefaultDispatcher) endPay(bookingID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.inFlight, bookingID)
}
