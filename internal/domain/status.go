package domain

import (
	"fmt"

	"umrahtransfer/internal/domain/models"
)

var transitions = map[models.BookingStatus][]models.BookingStatus{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusCompleted, models.StatusCancelled},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to models.BookingStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CheckTransition is CanTransition as an error for service callers.
func CheckTransition(from, to models.BookingStatus) error {
	if !to.Valid() {
		return ValidationError{Field: "status", Msg: fmt.Sprintf("unknown status %q", to)}
	}
	if from == to {
		return ConflictError{Resource: "booking", Msg: fmt.Sprintf("already %s", to)}
	}
	if !CanTransition(from, to) {
		return ConflictError{Resource: "booking", Msg: fmt.Sprintf("cannot move from %s to %s", from, to)}
	}
	return nil
}
