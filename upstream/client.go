package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"servihub/models"
)

// Client talks to the external booking API. It owns no booking semantics:
// callers interpret statuses, the client only moves JSON and classifies
// failures into the transport/application/malformed taxonomy.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	// AuthToken is the caller's bearer token, forwarded untouched.
	AuthToken string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		BaseURL:    baseURL,
	}
}

// WithToken returns a shallow copy bound to the given bearer token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.AuthToken = token
	return &cp
}

type tokenKey struct{}

// WithTokenContext stores a per-request bearer token on the context. It takes
// precedence over the client's bound token, so one shared client can serve
// many callers.
func WithTokenContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFrom(ctx context.Context) string {
	if t, ok := ctx.Value(tokenKey{}).(string); ok {
		return t
	}
	return ""
}

func (c *Client) doJSON(ctx context.Context, method, path string, reqBody any, respBody any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 20 * time.Second}
	}
	if c.BaseURL == "" {
		return fmt.Errorf("missing booking api base url")
	}

	var buf bytes.Buffer
	if reqBody != nil {
		if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	token := tokenFrom(ctx)
	if token == "" {
		token = c.AuthToken
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	b, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return &TransportError{Err: readErr}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Surface the server's own message when the body is structured.
		var body struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		msg := ""
		if len(b) > 0 && json.Unmarshal(b, &body) == nil {
			msg = body.Message
			if msg == "" {
				msg = body.Error
			}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if respBody != nil && len(b) > 0 {
		if err := json.Unmarshal(b, respBody); err != nil {
			return &DecodeError{Err: err, Body: string(b)}
		}
	}

	return nil
}

// ActionResponse is the common shape of booking mutation endpoints.
type ActionResponse struct {
	Message string `json:"message"`
	Booking *struct {
		Status models.BookingStatus `json:"status"`
	} `json:"booking,omitempty"`
}

// PayResponse is returned by the payment-initiation endpoint. Either the
// payment completed synchronously or the caller must redirect to the gateway.
type PayResponse struct {
	Success          bool                 `json:"success"`
	ShouldRedirect   bool                 `json:"shouldRedirect,omitempty"`
	AuthorizationURL string               `json:"authorizationUrl,omitempty"`
	BookingStatus    models.BookingStatus `json:"bookingStatus,omitempty"`
	Message          string               `json:"message,omitempty"`
}

// PaymentStatusResponse is returned by the payment-status probe.
type PaymentStatusResponse struct {
	Payment struct {
		Status           models.PaymentStatus `json:"status"`
		AuthorizationURL string               `json:"authorizationUrl,omitempty"`
	} `json:"payment"`
}

// MyBookings fetches the caller's full booking list (the bulk refresh source
// for the payment watcher).
func (c *Client) MyBookings(ctx context.Context) ([]models.Booking, error) {
	var out struct {
		Bookings []models.Booking `json:"bookings"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/bookings/my-bookings", nil, &out); err != nil {
		return nil, err
	}
	return out.Bookings, nil
}

func (c *Client) Cancel(ctx context.Context, bookingID string) (*ActionResponse, error) {
	var out ActionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/bookings/"+bookingID+"/cancel", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Modify(ctx context.Context, bookingID, address, description string) (*ActionResponse, error) {
	body := map[string]string{"address": address, "description": description}
	var out ActionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/bookings/"+bookingID+"/modify", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Reschedule(ctx context.Context, bookingID, date, timeOfDay string) (*ActionResponse, error) {
	body := map[string]string{"date": date, "time": timeOfDay}
	var out ActionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/bookings/"+bookingID+"/reschedule", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Dispute(ctx context.Context, bookingID, reason, details string) (*ActionResponse, error) {
	body := map[string]string{"reason": reason, "details": details}
	var out ActionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/bookings/"+bookingID+"/dispute", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReleasePayment confirms completion: escrowed funds are released to the
// provider (or the cash payment is acknowledged).
func (c *Client) ReleasePayment(ctx context.Context, bookingID string) (*ActionResponse, error) {
	var out ActionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/bookings/"+bookingID+"/release-payment", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Pay(ctx context.Context, bookingID string) (*PayResponse, error) {
	var out PayResponse
	if err := c.doJSON(ctx, http.MethodPost, "/bookings/"+bookingID+"/pay", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PaymentStatus probes the current payment state for one booking; used by the
// out-of-band recheck path.
func (c *Client) PaymentStatus(ctx context.Context, bookingID string) (*PaymentStatusResponse, error) {
	var out PaymentStatusResponse
	if err := c.doJSON(ctx, http.MethodGet, "/bookings/"+bookingID+"/payment-status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
