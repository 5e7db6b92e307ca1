package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"servihub/models"
	"servihub/services/status"
	"servihub/upstream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func confirmedBooking() models.Booking {
	return models.Booking{
		ID:          "bk-1",
		Status:      models.BookingConfirmed,
		TotalAmount: 450,
	}
}

func newDispatcher(baseURL string) *DefaultDispatcher {
	client := upstream.NewClient(baseURL, 2*time.Second)
	return NewDispatcher(client, zap.NewNop())
}

func TestDispatch_GateRejectsBeforeNetwork(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	d := newDispatcher(srv.URL)
	b := models.Booking{ID: "bk-1", Status: models.BookingCancelled}

	out := d.Dispatch(context.Background(), status.ActionCancel, b, Payload{})
	require.False(t, out.OK)
	assert.Equal(t, ErrNotAllowed, out.ErrorKind)
	assert.Equal(t, models.BookingCancelled, out.NewStatus)
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits), "gate rejection must not touch the network")
}

func TestDispatch_CancelAppliesServerStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/bookings/bk-1/cancel", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"message": "Booking cancelled",
			"booking": map[string]any{"status": "CANCELLED"},
		})
	}))
	defer srv.Close()

	d := newDispatcher(srv.URL)
	b := confirmedBooking()

	out := d.Dispatch(context.Background(), status.ActionCancel, b, Payload{})
	require.True(t, out.OK)
	assert.Equal(t, models.BookingCancelled, out.NewStatus)
	assert.Equal(t, "Booking cancelled", out.Message)

	// Applying the new status empties the action set.
	b.Status = out.NewStatus
	assert.Empty(t, status.AvailableActions(b).Actions)
}

func TestDispatch_RetainsStatusWhenServerOmitsIt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"message": "Rescheduled"})
	}))
	defer srv.Close()

	d := newDispatcher(srv.URL)
	out := d.Dispatch(context.Background(), status.ActionReschedule, confirmedBooking(), Payload{Date: "2026-09-10", Time: "10:00"})
	require.True(t, out.OK)
	assert.Equal(t, models.BookingConfirmed, out.NewStatus, "must never invent a status")
}

func TestDispatch_ApplicationErrorSurfacedVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{"message": "Cancellation window has passed"})
	}))
	defer srv.Close()

	d := newDispatcher(srv.URL)
	b := confirmedBooking()

	out := d.Dispatch(context.Background(), status.ActionCancel, b, Payload{})
	require.False(t, out.OK)
	assert.Equal(t, ErrApplication, out.ErrorKind)
	assert.Equal(t, "Cancellation window has passed", out.Message)
	assert.Equal(t, b.Status, out.NewStatus, "no speculative mutation on failure")
}

func TestDispatch_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	d := newDispatcher(srv.URL)
	out := d.Dispatch(context.Background(), status.ActionCancel, confirmedBooking(), Payload{})
	require.False(t, out.OK)
	assert.Equal(t, ErrMalformed, out.ErrorKind)
	assert.NotEmpty(t, out.Message)
}

func TestDispatch_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse all connections

	d := newDispatcher(srv.URL)
	out := d.Dispatch(context.Background(), status.ActionDispute, models.Booking{
		ID:     "bk-1",
		Status: models.BookingInProgress,
	}, Payload{Reason: "no-show", Details: "provider never arrived"})
	require.False(t, out.OK)
	assert.Equal(t, ErrNetwork, out.ErrorKind)
}

func TestDispatch_PayRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bookings/bk-1/pay", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"success":          true,
			"shouldRedirect":   true,
			"authorizationUrl": "https://gateway.example/session/abc",
		})
	}))
	defer srv.Close()

	d := newDispatcher(srv.URL)
	out := d.Dispatch(context.Background(), status.ActionPay, confirmedBooking(), Payload{})
	require.True(t, out.OK)
	assert.Equal(t, "https://gateway.example/session/abc", out.RedirectURL)
	assert.Equal(t, models.BookingConfirmed, out.NewStatus, "status only moves on webhook, not on redirect")
}

func TestDispatch_PaySynchronousCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success":       true,
			"bookingStatus": "PENDING_EXECUTION",
			"message":       "Payment already captured",
		})
	}))
	defer srv.Close()

	d := newDispatcher(srv.URL)
	out := d.Dispatch(context.Background(), status.ActionPay, confirmedBooking(), Payload{})
	require.True(t, out.OK)
	assert.Empty(t, out.RedirectURL)
	assert.Equal(t, models.BookingPendingExecution, out.NewStatus)
}

func TestDispatch_PayInFlightRejected(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()
	defer close(release)

	d := newDispatcher(srv.URL)
	b := confirmedBooking()

	started := make(chan struct{})
	go func() {
		close(started)
		d.Dispatch(context.Background(), status.ActionPay, b, Payload{})
	}()
	<-started
	time.Sleep(50 * time.Millisecond) // let the first call take the slot

	out := d.Dispatch(context.Background(), status.ActionPay, b, Payload{})
	require.False(t, out.OK)
	assert.Equal(t, ErrInFlight, out.ErrorKind)
}

func TestDispatch_PayFailureResumesExistingSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bookings/bk-1/pay":
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]any{"message": "gateway timeout"})
		case "/bookings/bk-1/payment-status":
			json.NewEncoder(w).Encode(map[string]any{
				"payment": map[string]any{
					"status":           "PENDING",
					"authorizationUrl": "https://gateway.example/session/existing",
				},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	d := newDispatcher(srv.URL)
	out := d.Dispatch(context.Background(), status.ActionPay, confirmedBooking(), Payload{})
	require.True(t, out.OK, "an existing gateway session must be resumed, not errored")
	assert.True(t, out.Resumed)
	assert.Equal(t, "https://gateway.example/session/existing", out.RedirectURL)
}

func TestDispatch_PayFailureWithoutSessionFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bookings/bk-1/pay":
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{"message": "card declined"})
		case "/bookings/bk-1/payment-status":
			json.NewEncoder(w).Encode(map[string]any{
				"payment": map[string]any{"status": "FAILED"},
			})
		}
	}))
	defer srv.Close()

	d := newDispatcher(srv.URL)
	out := d.Dispatch(context.Background(), status.ActionPay, confirmedBooking(), Payload{})
	require.False(t, out.OK)
	assert.Equal(t, ErrApplication, out.ErrorKind)
	assert.Equal(t, "card declined", out.Message)
}

func TestDispatch_ConfirmCompletionReleasesPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bookings/bk-1/release-payment", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"message": "Payment released",
			"booking": map[string]any{"status": "COMPLETED"},
		})
	}))
	defer srv.Close()

	d := newDispatcher(srv.URL)
	b := models.Booking{
		ID:            "bk-1",
		Status:        models.BookingAwaitingConfirm,
		PaymentMethod: models.MethodOnline,
		Payment:       &models.Payment{Status: models.PaymentHeldInEscrow},
	}
	out := d.Dispatch(context.Background(), status.ActionConfirmCompletion, b, Payload{})
	require.True(t, out.OK)
	assert.Equal(t, models.BookingCompleted, out.NewStatus)
}
