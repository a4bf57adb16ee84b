package booking

// Status is the lifecycle state of an appointment.
type Status string

const (
	// StatusRequested is the initial state of a client-initiated booking.
	StatusRequested Status = "requested"
	// StatusApproved means the professional accepted the request.
	StatusApproved Status = "approved"
	// StatusConfirmed means every participant accepted the invitation.
	StatusConfirmed Status = "confirmed"
	// StatusCompleted means the appointment took place. Terminal.
	StatusCompleted Status = "completed"
	// StatusRejected means the professional declined the request. Terminal.
	StatusRejected Status = "rejected"
	// StatusCancelled means the appointment was called off. Terminal.
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusRequested, StatusApproved, StatusConfirmed, StatusCompleted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition may leave s.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// BlocksRequest reports whether an appointment in status s holds its slot
// against new booking requests. Pending requests block too: two clients must
// never be offered the same interval while the first request awaits approval.
func (s Status) BlocksRequest() bool {
	switch s {
	case StatusRequested, StatusApproved, StatusConfirmed:
		return true
	}
	return false
}

// BlocksApproval reports whether an appointment in status s blocks the
// approval of a sibling request. Unapproved siblings do not: only one of the
// competing requests can win, and approval decides which.
func (s Status) BlocksApproval() bool {
	switch s {
	case StatusApproved, StatusConfirmed:
		return true
	}
	return false
}

// CanTransition reports whether the state machine permits moving from one
// status to another. Cancellation legality is checked separately via
// Terminal, since cancel is allowed from every non-terminal state.
func CanTransition(from, to Status) bool {
	switch to {
	case StatusApproved, StatusRejected:
		return from == StatusRequested
	case StatusConfirmed:
		return from == StatusApproved
	case StatusCompleted:
		return from == StatusConfirmed
	case StatusCancelled:
		return !from.Terminal()
	}
	return false
}
