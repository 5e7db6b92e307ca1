package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypePaymentRecheck = "payment:recheck"

// RecheckPayload identifies one booking whose payment status should be
// probed out-of-band. The token is the caller's own bearer token; tasks are
// enqueued for immediate processing, so it's handled well inside its TTL.
type RecheckPayload struct {
	BookingID  string `json:"bookingId"`
	SessionKey string `json:"sessionKey"`
	Token      string `json:"token"`
}

func NewRecheckTask(payload RecheckPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypePaymentRecheck, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt), asynq.MaxRetry(3)}

	return task, opts, nil
}
