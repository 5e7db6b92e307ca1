package upstream

import "fmt"

// TransportError wraps a failed or timed-out request: the call never produced
// an HTTP response. The poller retries these on its next tick.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("booking api unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a non-2xx response with a structured body. Message carries the
// server-provided text and is safe to surface verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("booking api error: status=%d message=%s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("booking api error: status=%d", e.StatusCode)
}

// DecodeError is a 2xx response whose body could not be parsed. Treated as an
// application error with a generic message; never crashes a render.
type DecodeError struct {
	Err  error
	Body string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode booking api response failed: %v body=%s", e.Err, e.Body)
}

func (e *DecodeError) Unwrap() error { return e.Err }
