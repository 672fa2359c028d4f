package domain

import (
	"testing"

	"umrahtransfer/internal/domain/models"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]models.BookingStatus{
		{models.StatusPending, models.StatusConfirmed},
		{models.StatusPending, models.StatusCancelled},
		{models.StatusConfirmed, models.StatusCompleted},
		{models.StatusConfirmed, models.StatusCancelled},
	}
	for _, tr := range allowed {
		if !CanTransition(tr[0], tr[1]) {
			t.Fatalf("expected %s -> %s to be allowed", tr[0], tr[1])
		}
	}
	rejected := [][2]models.BookingStatus{
		{models.StatusPending, models.StatusCompleted},
		{models.StatusCompleted, models.StatusCancelled},
		{models.StatusCancelled, models.StatusPending},
		{models.StatusConfirmed, models.StatusPending},
		{models.StatusPending, models.StatusPending},
	}
	for _, tr := range rejected {
		if CanTransition(tr[0], tr[1]) {
			t.Fatalf("expected %s -> %s to be rejected", tr[0], tr[1])
		}
	}
}

func TestCheckTransitionErrors(t *testing.T) {
	if err := CheckTransition(models.StatusPending, "shipped"); !IsValidation(err) {
		t.Fatalf("unknown status should be a validation error, got %v", err)
	}
	if err := CheckTransition(models.StatusConfirmed, models.StatusConfirmed); !IsConflict(err) {
		t.Fatalf("same status should conflict, got %v", err)
	}
	if err := CheckTransition(models.StatusCancelled, models.StatusConfirmed); !IsConflict(err) {
		t.Fatalf("terminal status should conflict, got %v", err)
	}
	if err := CheckTransition(models.StatusPending, models.StatusConfirmed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFieldErrorsHelpers(t *testing.T) {
	var fe FieldErrors
	if fe.Err() != nil {
		t.Fatalf("empty list must be nil error")
	}
	fe = fe.Add("pickup", "required").Add("pickup", "second").Add("email", "bad")
	if got := fe.Fields()["pickup"]; got != "required" {
		t.Fatalf("first message should win, got %q", got)
	}
	if !IsValidation(fe.Err()) {
		t.Fatalf("FieldErrors should count as validation error")
	}
}
