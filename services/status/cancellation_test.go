package status

import (
	"testing"
	"time"

	"servihub/models"
)

func TestCancellationTerms_Windows(t *testing.T) {
	now := time.Now()
	base := models.Booking{Status: models.BookingConfirmed, TotalAmount: 200}

	b := base
	b.ScheduledDate = now.Add(6 * time.Hour)
	term := CancellationTerms(b, now, 50, 25)
	if term == nil || term.FeePercent != 50 {
		t.Fatalf("6h out: want 50%%, got %+v", term)
	}
	if term.FeeAmount != 100 {
		t.Fatalf("6h out: want fee 100, got %v", term.FeeAmount)
	}

	b.ScheduledDate = now.Add(18 * time.Hour)
	term = CancellationTerms(b, now, 50, 25)
	if term == nil || term.FeePercent != 25 {
		t.Fatalf("18h out: want 25%%, got %+v", term)
	}
	if term.FeeAmount != 50 {
		t.Fatalf("18h out: want fee 50, got %v", term.FeeAmount)
	}
	if term.Deadline == "" {
		t.Fatalf("18h out: expected the free-window deadline")
	}

	b.ScheduledDate = now.Add(48 * time.Hour)
	term = CancellationTerms(b, now, 50, 25)
	if term == nil || term.FeePercent != 0 || term.FeeAmount != 0 {
		t.Fatalf("48h out: want free cancellation, got %+v", term)
	}
}

func TestCancellationTerms_NilWhenCancelUnavailable(t *testing.T) {
	b := models.Booking{Status: models.BookingCompleted, TotalAmount: 200, ScheduledDate: time.Now()}
	if term := CancellationTerms(b, time.Now(), 50, 25); term != nil {
		t.Fatalf("completed booking must have no cancellation terms, got %+v", term)
	}
}

func TestCancellationTerms_RoundsToCents(t *testing.T) {
	now := time.Now()
	b := models.Booking{
		Status:        models.BookingConfirmed,
		TotalAmount:   33.33,
		ScheduledDate: now.Add(2 * time.Hour),
	}
	term := CancellationTerms(b, now, 50, 25)
	if term == nil || term.FeeAmount != 16.67 {
		t.Fatalf("want fee 16.67, got %+v", term)
	}
}
