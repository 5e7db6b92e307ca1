package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"servihub/config"
	"servihub/models"
	"servihub/services/dispatch"
	"servihub/services/poller"
	"servihub/services/status"
	"servihub/services/tasks"
	"servihub/upstream"
)

// BookingHandler is the only surface through which dashboard components may
// touch booking/payment semantics: resolve, available actions, poll state,
// and dispatch all live here.
type BookingHandler struct {
	Client     *upstream.Client
	Dispatcher dispatch.Dispatcher
	Watch      *poller.Manager
	Snapshots  poller.SnapshotStore
	Queue      *asynq.Client
}

func NewBookingHandler(client *upstream.Client, d dispatch.Dispatcher, watch *poller.Manager, snapshots poller.SnapshotStore, queue *asynq.Client) *BookingHandler {
	return &BookingHandler{
		Client:     client,
		Dispatcher: d,
		Watch:      watch,
		Snapshots:  snapshots,
		Queue:      queue,
	}
}

// bookingEntry is one decorated booking plus its payment notice.
type bookingEntry struct {
	models.BookingView
	Notice poller.PaymentNotice `json:"notice"`
}

// ListBookings returns the caller's bookings fully decorated. When any
// payment is transient it also ensures a background watcher for the session.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	token := bearerToken(c)
	ctx := upstream.WithTokenContext(c.Request.Context(), token)

	bookings, err := h.Client.MyBookings(ctx)
	if err != nil {
		respondUpstreamError(c, err, "failed to load bookings")
		return
	}

	now := time.Now()
	entries := make([]bookingEntry, 0, len(bookings))
	for _, b := range bookings {
		entries = append(entries, decorate(b, now))
	}

	if poller.AnyTransient(bookings) {
		mode := poller.ModeList
		if c.Query("flow") == "callback" {
			mode = poller.ModeConfirm
		}
		h.Watch.Ensure(context.Background(), sessionKey(c), token, mode, bookings)
	}

	c.JSON(http.StatusOK, gin.H{"bookings": entries})
}

// GetBooking returns a single decorated booking.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	token := bearerToken(c)
	ctx := upstream.WithTokenContext(c.Request.Context(), token)

	b, err := h.findBooking(ctx, c.Param("id"))
	if err != nil {
		respondUpstreamError(c, err, "failed to load booking")
		return
	}
	if b == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}

	c.JSON(http.StatusOK, decorate(*b, time.Now()))
}

// DispatchAction runs one booking action through the gate and the upstream
// API. The response body is always the dispatch outcome.
func (h *BookingHandler) DispatchAction(c *gin.Context) {
	action := status.Action(c.Param("action"))
	token := bearerToken(c)
	ctx := upstream.WithTokenContext(c.Request.Context(), token)

	var payload dispatch.Payload
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}
	}

	b, err := h.findBooking(ctx, c.Param("id"))
	if err != nil {
		respondUpstreamError(c, err, "failed to load booking")
		return
	}
	if b == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}

	outcome := h.Dispatcher.Dispatch(ctx, action, *b, payload)
	c.JSON(outcomeStatus(outcome), outcome)
}

// PollState is the lightweight change signal: the dashboard polls it with
// the last version it saw and re-fetches the list only when told to.
func (h *BookingHandler) PollState(c *gin.Context) {
	since, _ := strconv.ParseInt(c.Query("since"), 10, 64)

	snap, err := h.Snapshots.Load(c.Request.Context(), sessionKey(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load poll state", "details": err.Error()})
		return
	}
	if snap == nil {
		c.JSON(http.StatusOK, gin.H{"version": 0, "changed": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"version":  snap.Version,
		"changed":  snap.Version > since,
		"payments": snap.Payments,
	})
}

// Recheck is the manual Check Status affordance: it schedules an immediate
// out-of-band probe of the booking's payment status.
func (h *BookingHandler) Recheck(c *gin.Context) {
	payload := tasks.RecheckPayload{
		BookingID:  c.Param("id"),
		SessionKey: sessionKey(c),
		Token:      bearerToken(c),
	}
	task, opts, err := tasks.NewRecheckTask(payload, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build recheck task", "details": err.Error()})
		return
	}
	if _, err := h.Queue.Enqueue(task, opts...); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to schedule recheck", "details": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Recheck scheduled"})
}

// StopWatch tears down the session's background watcher. The dashboard calls
// it on unmount/navigation so no interval outlives the view that needed it.
func (h *BookingHandler) StopWatch(c *gin.Context) {
	h.Watch.Stop(sessionKey(c))
	c.JSON(http.StatusOK, gin.H{"message": "Watcher stopped"})
}

func (h *BookingHandler) findBooking(ctx context.Context, id string) (*models.Booking, error) {
	bookings, err := h.Client.MyBookings(ctx)
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		if bookings[i].ID == id {
			return &bookings[i], nil
		}
	}
	return nil, nil
}

// decorate derives everything a renderer needs from one raw booking.
func decorate(b models.Booking, now time.Time) bookingEntry {
	elig := status.AvailableActions(b)
	actions := make([]string, 0, len(elig.Actions))
	confirmLabel := ""
	for _, a := range elig.Actions {
		actions = append(actions, string(a))
		if a == status.ActionConfirmCompletion {
			confirmLabel = status.ConfirmLabel(b.PaymentMethod)
		}
	}

	cfg := config.AppConfig
	return bookingEntry{
		BookingView: models.BookingView{
			Booking:      b,
			Status:       status.Resolve(b.Status, b.Payment, b.PaymentMethod),
			Actions:      actions,
			PayBlocked:   elig.PayBlocked,
			ConfirmLabel: confirmLabel,
			Recent:       b.Recent(now),
			Cancellation: status.CancellationTerms(b, now, cfg.LateCancelFeePct, cfg.EarlyCancelFeePct),
		},
		Notice: poller.NoticeFor(b.Payment, now, cfg.DelayedAfter, cfg.StuckAfter),
	}
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	return strings.TrimPrefix(auth, "Bearer ")
}

// sessionKey identifies one dashboard session for watcher and snapshot
// scoping. The dashboard sends a stable X-Session-ID; the client IP is a
// fallback for older builds.
func sessionKey(c *gin.Context) string {
	if sid := c.GetHeader("X-Session-ID"); sid != "" {
		return sid
	}
	return c.ClientIP()
}

func outcomeStatus(o dispatch.Outcome) int {
	if o.OK {
		return http.StatusOK
	}
	switch o.ErrorKind {
	case dispatch.ErrNotAllowed, dispatch.ErrInFlight:
		return http.StatusConflict
	case dispatch.ErrNetwork:
		return http.StatusBadGateway
	case dispatch.ErrMalformed:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

func respondUpstreamError(c *gin.Context, err error, msg string) {
	log := getLogger(c)
	log.Warn(msg, zap.Error(err))
	c.JSON(http.StatusBadGateway, gin.H{"error": msg, "details": err.Error()})
}
