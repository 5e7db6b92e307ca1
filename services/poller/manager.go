package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"servihub/models"
	"servihub/upstream"

	"go.uber.org/zap"
)

// Mode selects the polling cadence and ceiling for a watch session.
type Mode string

const (
	// ModeList: booking list views. Relaxed cadence, inline-pay ceiling.
	ModeList Mode = "list"
	// ModeConfirm: the dedicated payment-callback flow. Tight cadence,
	// shorter ceiling.
	ModeConfirm Mode = "confirm"
)

// Manager owns one background watcher per active dashboard session. Watchers
// are created when a session shows a transient payment and tear themselves
// down when everything settles, the ceiling passes, or the session stops.
type Manager struct {
	Base           *upstream.Client
	Store          SnapshotStore
	Log            *zap.Logger
	ListPeriod     time.Duration
	ConfirmPeriod  time.Duration
	ListCeiling    time.Duration
	ConfirmCeiling time.Duration

	version int64 // snapshot version, bumped on every applied change

	mu     sync.Mutex
	active map[string]context.CancelFunc
}

func NewManager(base *upstream.Client, store SnapshotStore, log *zap.Logger, listPeriod, confirmPeriod, listCeiling, confirmCeiling time.Duration) *Manager {
	return &Manager{
		Base:           base,
		Store:          store,
		Log:            log,
		ListPeriod:     listPeriod,
		ConfirmPeriod:  confirmPeriod,
		ListCeiling:    listCeiling,
		ConfirmCeiling: confirmCeiling,
		active:         make(map[string]context.CancelFunc),
	}
}

// Ensure starts a watcher for the session unless one is already running.
// seed primes the diff base so the first tick doesn't report noise.
func (m *Manager) Ensure(ctx context.Context, sessionKey, token string, mode Mode, seed []models.Booking) {
	m.mu.Lock()
	if _, running := m.active[sessionKey]; running {
		m.mu.Unlock()
		return
	}
	wctx, cancel := context.WithCancel(ctx)
	m.active[sessionKey] = cancel
	m.mu.Unlock()

	period, ceiling := m.ListPeriod, m.ListCeiling
	if mode == ModeConfirm {
		period, ceiling = m.ConfirmPeriod, m.ConfirmCeiling
	}

	client := m.Base.WithToken(token)
	w := NewWatcher(
		func(c context.Context) ([]models.Booking, error) { return client.MyBookings(c) },
		func(changed []string, bookings []models.Booking) {
			m.applyChange(sessionKey, changed, bookings)
		},
		period, ceiling,
		m.Log.With(zap.String("session", sessionKey), zap.String("mode", string(mode))),
	)
	w.Seed(seed)

	go func() {
		defer m.release(sessionKey)
		w.Run(wctx)
	}()
}

// Bump records an out-of-band payment status update (e.g. a manual recheck)
// so pollers see a version change.
func (m *Manager) Bump(ctx context.Context, sessionKey, bookingID string, status models.PaymentStatus) {
	snap, err := m.Store.Load(ctx, sessionKey)
	if err != nil || snap == nil {
		snap = &models.BookingListSnapshot{Payments: make(map[string]models.PaymentStatus)}
	}
	if snap.Payments[bookingID] == status {
		return
	}
	snap.Payments[bookingID] = status
	snap.Version = atomic.AddInt64(&m.version, 1)
	snap.FetchedAt = time.Now()
	if err := m.Store.Save(ctx, sessionKey, *snap); err != nil {
		m.Log.Warn("failed to save snapshot after recheck", zap.Error(err))
	}
}

// Stop cancels the session's watcher if one is running.
func (m *Manager) Stop(sessionKey string) {
	m.mu.Lock()
	cancel, ok := m.active[sessionKey]
	delete(m.active, sessionKey)
	m.mu.Unlock()
	if ok {
		cancel()
	}
}

// StopAll cancels every running watcher; called on shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, cancel := range m.active {
		cancel()
		delete(m.active, key)
	}
}

func (m *Manager) applyChange(sessionKey string, changed []string, bookings []models.Booking) {
	ctx, cancelTO := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelTO()

	v := atomic.AddInt64(&m.version, 1)
	snap := SnapshotFrom(v, bookings, time.Now())
	if err := m.Store.Save(ctx, sessionKey, snap); err != nil {
		m.Log.Warn("failed to save snapshot", zap.Error(err))
	}
	m.Log.Info("payment status changed",
		zap.Strings("bookings", changed),
		zap.Int64("version", v),
	)
}

func (m *Manager) release(sessionKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, sessionKey)
}
