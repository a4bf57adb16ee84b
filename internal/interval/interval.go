package interval

import "time"

// Overlaps reports whether the half-open intervals [startA, endA) and
// [startB, endB) share at least one instant. Touching endpoints do not
// overlap: a slot ending at 10:00 never conflicts with one starting at 10:00.
func Overlaps(startA, endA, startB, endB time.Time) bool {
	return startA.Before(endB) && endA.After(startB)
}

// Span is a half-open time interval [Start, End).
type Span struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether the span has positive length.
func (s Span) Valid() bool {
	return s.Start.Before(s.End)
}

// Overlaps reports whether the span shares an instant with other.
func (s Span) Overlaps(other Span) bool {
	return Overlaps(s.Start, s.End, other.Start, other.End)
}

// Contains reports whether t falls inside the span.
func (s Span) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}

// Duration returns the length of the span.
func (s Span) Duration() time.Duration {
	return s.End.Sub(s.Start)
}
