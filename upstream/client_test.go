package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMyBookings_DecodesAndAuthenticates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/bookings/my-bookings", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]any{
			"bookings": []map[string]any{
				{"id": "bk-1", "status": "CONFIRMED", "totalAmount": 450},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 2*time.Second).WithToken("tok-123")
	bookings, err := client.MyBookings(context.Background())
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "bk-1", bookings[0].ID)
	assert.Equal(t, 450.0, bookings[0].TotalAmount)
}

func TestContextTokenOverridesBoundToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer per-request", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{"bookings": []any{}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 2*time.Second).WithToken("bound")
	ctx := WithTokenContext(context.Background(), "per-request")
	_, err := client.MyBookings(ctx)
	require.NoError(t, err)
}

func TestNon2xxBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{"message": "not your booking"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 2*time.Second)
	_, err := client.Cancel(context.Background(), "bk-1")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "not your booking", apiErr.Message)
}

func TestUnparsableBodyBecomesDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("oops not json"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 2*time.Second)
	_, err := client.Pay(context.Background(), "bk-1")
	require.Error(t, err)

	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr))
}

func TestUnreachableServerBecomesTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.MyBookings(context.Background())
	require.Error(t, err)

	var transportErr *TransportError
	assert.True(t, errors.As(err, &transportErr))
}

func TestReschedulePayloadShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2026-09-10", body["date"])
		assert.Equal(t, "14:30", body["time"])
		json.NewEncoder(w).Encode(map[string]any{"message": "ok"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 2*time.Second)
	resp, err := client.Reschedule(context.Background(), "bk-1", "2026-09-10", "14:30")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Message)
}
