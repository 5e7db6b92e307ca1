package status

import (
	"reflect"
	"testing"
	"time"

	"servihub/models"
)

var allStatuses = []models.BookingStatus{
	models.BookingPending, models.BookingConfirmed, models.BookingPendingExecution,
	models.BookingInProgress, models.BookingAwaitingConfirm, models.BookingCompleted,
	models.BookingCancelled, models.BookingDisputed,
}

func TestResolve_TotalOverAllInputs(t *testing.T) {
	payments := []*models.Payment{
		nil,
		{Status: models.PaymentPending, CreatedAt: time.Now()},
		{Status: models.PaymentEscrow},
		{Status: models.PaymentCashPending},
		{Status: models.PaymentFailed},
	}
	methods := []models.PaymentMethod{models.MethodCash, models.MethodOnline}

	for _, s := range append(allStatuses, "WEIRD_FUTURE_STATE", "") {
		for _, p := range payments {
			for _, m := range methods {
				view := Resolve(s, p, m)
				if view.Label == "" {
					t.Fatalf("empty label for status %q", s)
				}
				if view.Description == "" {
					t.Fatalf("empty description for status %q", s)
				}
				if len(view.Timeline) != 5 {
					t.Fatalf("expected 5 timeline steps for %q, got %d", s, len(view.Timeline))
				}
			}
		}
	}
}

func TestResolve_UnknownStatusFallsBack(t *testing.T) {
	view := Resolve("ON_HOLD_REVIEW", nil, models.MethodOnline)
	if view.Label != "On Hold Review" {
		t.Fatalf("expected humanized label, got %q", view.Label)
	}
	if view.Description != "Unknown status" {
		t.Fatalf("expected unknown-status description, got %q", view.Description)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	p := &models.Payment{Status: models.PaymentEscrow}
	a := Resolve(models.BookingAwaitingConfirm, p, models.MethodOnline)
	b := Resolve(models.BookingAwaitingConfirm, p, models.MethodOnline)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("resolve is not idempotent: %+v vs %+v", a, b)
	}
}

func TestTimeline_CancelledFreezesAtFirstStep(t *testing.T) {
	steps := Timeline(models.BookingCancelled, nil, models.MethodOnline)
	if !steps[0].Completed {
		t.Fatalf("first step must stay complete on cancellation")
	}
	for _, s := range steps[1:] {
		if s.Completed {
			t.Fatalf("step %q must not be complete on a cancelled booking", s.ID)
		}
	}
}

func TestTimeline_DisputedFreezesAfterPayment(t *testing.T) {
	steps := Timeline(models.BookingDisputed, &models.Payment{Status: models.PaymentEscrow}, models.MethodOnline)
	for i, s := range steps {
		want := i <= 2
		if s.Completed != want {
			t.Fatalf("disputed timeline step %q: completed=%v, want %v", s.ID, s.Completed, want)
		}
	}
}

func TestTimeline_CashPaymentStep(t *testing.T) {
	steps := Timeline(models.BookingAwaitingConfirm, &models.Payment{Status: models.PaymentCashPending}, models.MethodCash)
	if steps[2].Label != "Pay in Cash" {
		t.Fatalf("expected cash payment step label, got %q", steps[2].Label)
	}
	if steps[2].Completed {
		t.Fatalf("cash step must not complete while CASH_PENDING")
	}

	steps = Timeline(models.BookingAwaitingConfirm, &models.Payment{Status: models.PaymentCashPaid}, models.MethodCash)
	if !steps[2].Completed {
		t.Fatalf("cash step must complete once CASH_PAID")
	}
}

func TestPaymentSettled_FallbackOnWebhookLag(t *testing.T) {
	// Payment record missing but the booking has progressed: treat as paid.
	if !PaymentSettled(models.BookingInProgress, nil) {
		t.Fatalf("missing payment on an in-progress booking must count as settled")
	}
	if !PaymentSettled(models.BookingPendingExecution, &models.Payment{Status: models.PaymentPending}) {
		t.Fatalf("stale PENDING on a pending-execution booking must count as settled")
	}
	if PaymentSettled(models.BookingConfirmed, &models.Payment{Status: models.PaymentPending}) {
		t.Fatalf("pending payment on a confirmed booking is not settled")
	}
	if PaymentSettled(models.BookingInProgress, &models.Payment{Status: models.PaymentFailed}) {
		t.Fatalf("a failed payment must never be inferred as settled")
	}
}

func TestHumanize(t *testing.T) {
	cases := map[string]string{
		"ON_HOLD":   "On Hold",
		"pending":   "Pending",
		"a-b_c":     "A B C",
		"":          "Unknown",
	}
	for in, want := range cases {
		if got := humanize(in); got != want {
			t.Fatalf("humanize(%q) = %q, want %q", in, got, want)
		}
	}
}
