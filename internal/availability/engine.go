package availability

import (
	"errors"
	"sort"
	"time"

	"github.com/example/practice-scheduler/internal/interval"
)

// Template describes a recurring weekly opening for a professional. Start and
// End are expressed as minutes from midnight in the engine's timezone.
type Template struct {
	ID             string
	ProfessionalID string
	Weekday        time.Weekday
	StartMinute    int
	EndMinute      int
	SlotMinutes    int
	ValidFrom      time.Time
	ValidUntil     *time.Time
	Active         bool
	OnlineBooking  bool
}

// Exception is a date-time range override. When Closed is set it suppresses
// every slot on any calendar day it touches, regardless of templates.
type Exception struct {
	ID             string
	ProfessionalID string
	Start          time.Time
	End            time.Time
	Closed         bool
	Reason         string
}

// Slot is a candidate bookable interval produced by the engine.
type Slot struct {
	ProfessionalID string
	Start          time.Time
	End            time.Time
}

// GenerateParams bounds a slot generation run. From and To are calendar dates
// (inclusive); Now is the instant used to drop slots that are no longer in the
// future. Callers must supply Now explicitly so generation stays deterministic.
type GenerateParams struct {
	From            time.Time
	To              time.Time
	DurationMinutes int
	Now             time.Time
}

var (
	// ErrInvalidDuration indicates the requested slot duration is not positive.
	ErrInvalidDuration = errors.New("availability: slot duration must be positive")
	// ErrInvalidRange indicates the requested date range is inverted.
	ErrInvalidRange = errors.New("availability: date range end precedes start")
)

// Engine expands availability templates into discrete candidate slots.
type Engine struct {
	location *time.Location
}

// NewEngine constructs an Engine that interprets template minutes and calendar
// dates in the provided location. If loc is nil, UTC is used.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{location: loc}
}

// GenerateSlots walks every calendar date in [From, To], matches the active
// online-bookable templates valid on that date, skips dates touched by a
// closure exception, and emits fixed-duration slots from each surviving
// template window. Partial trailing slots shorter than the requested duration
// are discarded, as are slots starting at or before Now. The result is ordered
// chronologically.
//
// The engine performs no conflict filtering against existing appointments;
// that is the booking package's concern.
func (e *Engine) GenerateSlots(templates []Template, exceptions []Exception, params GenerateParams) ([]Slot, error) {
	loc := e.location
	if loc == nil {
		loc = time.UTC
	}

	if params.DurationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}
	duration := time.Duration(params.DurationMinutes) * time.Minute

	fromDate := truncateToDate(params.From, loc)
	toDate := truncateToDate(params.To, loc)
	if toDate.Before(fromDate) {
		return nil, ErrInvalidRange
	}

	slots := make([]Slot, 0)

	for date := fromDate; !date.After(toDate); date = date.AddDate(0, 0, 1) {
		dayStart := date
		dayEnd := date.AddDate(0, 0, 1)

		if dateClosed(exceptions, dayStart, dayEnd) {
			continue
		}

		for _, tpl := range templates {
			if !templateAppliesOn(tpl, date, loc) {
				continue
			}

			open := minuteOfDay(date, tpl.StartMinute, loc)
			close := minuteOfDay(date, tpl.EndMinute, loc)
			if !close.After(open) {
				continue
			}

			for start := open; !start.Add(duration).After(close); start = start.Add(duration) {
				end := start.Add(duration)
				if !start.After(params.Now) {
					continue
				}
				slots = append(slots, Slot{
					ProfessionalID: tpl.ProfessionalID,
					Start:          start,
					End:            end,
				})
			}
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Start.Equal(slots[j].Start) {
			return slots[i].End.Before(slots[j].End)
		}
		return slots[i].Start.Before(slots[j].Start)
	})

	return slots, nil
}

func dateClosed(exceptions []Exception, dayStart, dayEnd time.Time) bool {
	for _, exc := range exceptions {
		if !exc.Closed {
			continue
		}
		if interval.Overlaps(exc.Start, exc.End, dayStart, dayEnd) {
			return true
		}
	}
	return false
}

func templateAppliesOn(tpl Template, date time.Time, loc *time.Location) bool {
	if !tpl.Active || !tpl.OnlineBooking {
		return false
	}
	if tpl.Weekday != date.Weekday() {
		return false
	}
	if tpl.StartMinute >= tpl.EndMinute {
		return false
	}

	validFrom := truncateToDate(tpl.ValidFrom, loc)
	if validFrom.After(date) {
		return false
	}
	if tpl.ValidUntil != nil {
		validUntil := truncateToDate(*tpl.ValidUntil, loc)
		if validUntil.Before(date) {
			return false
		}
	}
	return true
}

func truncateToDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func minuteOfDay(date time.Time, minute int, loc *time.Location) time.Time {
	y, m, d := date.In(loc).Date()
	return time.Date(y, m, d, minute/60, minute%60, 0, 0, loc)
}
