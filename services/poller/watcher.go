package poller

import (
	"context"
	"sync"
	"time"

	"servihub/models"

	"go.uber.org/zap"
)

// RefreshFunc is the external "refresh bookings" collaborator: typically the
// upstream my-bookings endpoint bound to a user token.
type RefreshFunc func(ctx context.Context) ([]models.Booking, error)

// ChangeFunc is invoked with the ids whose payment status changed and the
// freshly fetched bookings. Only called when at least one status differs, so
// subscribers never re-render on identical data.
type ChangeFunc func(changed []string, bookings []models.Booking)

// Watcher re-fetches bookings on a fixed period while any payment is in a
// transient state, diffs payment statuses per booking, and notifies on real
// change. It stops on its own once nothing is transient or the wall-clock
// ceiling from payment initiation passes; it never polls forever.
type Watcher struct {
	refresh  RefreshFunc
	onChange ChangeFunc
	period   time.Duration
	ceiling  time.Duration
	log      *zap.Logger

	mu       sync.Mutex
	issued   int64            // monotonically increasing fetch version
	applied  map[string]int64 // booking id -> version of last applied result
	payments map[string]models.PaymentStatus
}

// NewWatcher builds a watcher. period is the refresh interval (8s in list
// views, 2s in the dedicated payment-confirmation flow); ceiling bounds the
// total auto-polling time from Run.
func NewWatcher(refresh RefreshFunc, onChange ChangeFunc, period, ceiling time.Duration, log *zap.Logger) *Watcher {
	return &Watcher{
		refresh:  refresh,
		onChange: onChange,
		period:   period,
		ceiling:  ceiling,
		log:      log,
		applied:  make(map[string]int64),
		payments: make(map[string]models.PaymentStatus),
	}
}

// Seed primes the diff base from an already-fetched list so the first tick
// doesn't report everything as changed.
func (w *Watcher) Seed(bookings []models.Booking) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, b := range bookings {
		if b.Payment != nil {
			w.payments[b.ID] = b.Payment.Status
		}
	}
}

// Run polls until the context is cancelled, the ceiling passes, or no
// watched booking has a transient payment left. Fetch errors are retried on
// the next tick; the user never sees a hard error from here.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.period)
	defer ticker.Stop()
	deadline := time.Now().Add(w.ceiling)

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("payment watcher stopped", zap.String("reason", "context cancelled"))
			return
		case <-ticker.C:
			if time.Now().After(deadline) {
				w.log.Info("payment watcher ceiling reached, falling back to manual recheck")
				return
			}

			version := w.nextVersion()
			bookings, err := w.refresh(ctx)
			if err != nil {
				// Transient by definition; next tick retries.
				w.log.Debug("booking refresh failed, will retry", zap.Error(err))
				continue
			}

			changed := w.Apply(version, bookings)
			if len(changed) > 0 {
				w.onChange(changed, bookings)
			}

			if !AnyTransient(bookings) {
				w.log.Debug("payment watcher stopped", zap.String("reason", "no transient payments"))
				return
			}
		}
	}
}

func (w *Watcher) nextVersion() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.issued++
	return w.issued
}

// Apply reconciles a completed refresh onto the shared payment map. The
// version was issued when the fetch started: a slow request that resolves
// after a newer one arrives with a lower version and is discarded per
// booking, so status never regresses to a stale response.
func (w *Watcher) Apply(version int64, bookings []models.Booking) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var changed []string
	for _, b := range bookings {
		if version <= w.applied[b.ID] {
			continue
		}
		w.applied[b.ID] = version

		var status models.PaymentStatus
		if b.Payment != nil {
			status = b.Payment.Status
		}
		if prev, seen := w.payments[b.ID]; !seen || prev != status {
			w.payments[b.ID] = status
			if seen {
				changed = append(changed, b.ID)
			}
		}
	}
	return changed
}

// PaymentStatuses returns a copy of the last applied payment status per
// booking.
func (w *Watcher) PaymentStatuses() map[string]models.PaymentStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]models.PaymentStatus, len(w.payments))
	for k, v := range w.payments {
		out[k] = v
	}
	return out
}

// AnyTransient reports whether any booking still has a payment in a
// transient state worth watching.
func AnyTransient(bookings []models.Booking) bool {
	for _, b := range bookings {
		if b.Payment != nil && b.Payment.Status.Transient() {
			return true
		}
	}
	return false
}
