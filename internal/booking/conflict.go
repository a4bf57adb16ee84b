package booking

import (
	"time"

	"github.com/example/practice-scheduler/internal/interval"
)

// Booking is the summary of a committed appointment that conflict detection
// reads: identity, owner, interval and lifecycle status.
type Booking struct {
	ID             string
	ProfessionalID string
	Start          time.Time
	End            time.Time
	Status         Status
}

// Conflict identifies an existing booking that overlaps a candidate interval.
type Conflict struct {
	WithBookingID string
	Start         time.Time
	End           time.Time
	Status        Status
}

// FindConflicts returns the existing bookings whose interval overlaps the
// candidate and whose status passes the blocks predicate. The candidate's own
// ID is excluded so re-checks during approval do not conflict with themselves.
func FindConflicts(existing []Booking, candidate Booking, blocks func(Status) bool) []Conflict {
	if blocks == nil {
		blocks = Status.BlocksRequest
	}

	var conflicts []Conflict
	for _, b := range existing {
		if b.ID != "" && b.ID == candidate.ID {
			continue
		}
		if candidate.ProfessionalID != "" && b.ProfessionalID != candidate.ProfessionalID {
			continue
		}
		if !blocks(b.Status) {
			continue
		}
		if !interval.Overlaps(b.Start, b.End, candidate.Start, candidate.End) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			WithBookingID: b.ID,
			Start:         b.Start,
			End:           b.End,
			Status:        b.Status,
		})
	}
	return conflicts
}

// FilterSlots removes candidate slots that overlap any blocking booking.
// Slots are assumed to belong to a single professional's calendar.
func FilterSlots(slots []interval.Span, existing []Booking) []interval.Span {
	if len(existing) == 0 {
		return slots
	}

	kept := make([]interval.Span, 0, len(slots))
	for _, slot := range slots {
		blocked := false
		for _, b := range existing {
			if !b.Status.BlocksRequest() {
				continue
			}
			if interval.Overlaps(b.Start, b.End, slot.Start, slot.End) {
				blocked = true
				break
			}
		}
		if !blocked {
			kept = append(kept, slot)
		}
	}
	return kept
}
