package attendance

import (
	"errors"
	"fmt"
)

// Attendance domain errors
var (
	ErrInvalidTimeFormat = errors.New("invalid time format, expected HH:MM")
	ErrInvalidTimeWindow = errors.New("invalid attendance time window")

	// Scan errors
	ErrUnknownEmployee  = errors.New("unrecognized code")
	ErrAlreadyClosed    = errors.New("attendance already completed today")
	ErrStoreUnavailable = errors.New("attendance store unavailable")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrAttendanceExists   = errors.New("attendance already recorded for this date")
	ErrCheckOutWithoutIn  = errors.New("check-out requires a check-in")
)

// Unavailable tags a store failure so callers can match ErrStoreUnavailable
// while keeping the original message.
func Unavailable(err error) error {
	if err == nil || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
