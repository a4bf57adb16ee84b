package application

import (
	"context"
	"time"

	"github.com/example/practice-scheduler/internal/booking"
)

// TransitionEvent describes a completed appointment status transition.
// Downstream consumers (notification, document generation, audit logging)
// subscribe to these events; they are informational and never influence the
// outcome of the operation that produced them.
type TransitionEvent struct {
	Appointment Appointment
	From        booking.Status
	To          booking.Status
	Reason      string
	OccurredAt  time.Time
}

// Notifier receives appointment transition events. Implementations must not
// block for long; delivery failures are logged and otherwise ignored.
type Notifier interface {
	AppointmentTransitioned(ctx context.Context, event TransitionEvent) error
}
