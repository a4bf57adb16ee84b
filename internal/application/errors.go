package application

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a directory record collides with an
	// existing one.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrSlotUnavailable is returned when a requested interval overlaps a
	// booking that holds the slot. Contention error: re-query available slots.
	ErrSlotUnavailable = errors.New("application: slot unavailable")
	// ErrSlotNoLongerAvailable is returned when an approval re-check finds the
	// interval taken by a committed booking. Contention error.
	ErrSlotNoLongerAvailable = errors.New("application: slot no longer available")
	// ErrInvalidTransition is returned when an operation is not legal for the
	// appointment's or participant's current status.
	ErrInvalidTransition = errors.New("application: invalid status transition")
	// ErrNotCancellable is returned when cancellation is attempted on a
	// completed, rejected or already cancelled appointment.
	ErrNotCancellable = errors.New("application: appointment not cancellable")
	// ErrParticipantConflict is returned when an accepting party is already
	// booked elsewhere during the appointment. Contention error.
	ErrParticipantConflict = errors.New("application: participant calendar conflict")
)

// IsContention reports whether the error signals a race lost against another
// booking. Callers should re-query availability rather than retry the same
// interval.
func IsContention(err error) bool {
	return errors.Is(err, ErrSlotUnavailable) ||
		errors.Is(err, ErrSlotNoLongerAvailable) ||
		errors.Is(err, ErrParticipantConflict)
}

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
