// Package testfixtures supplies deterministic clocks, identifier generators
// and record builders shared by application and persistence tests.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/practice-scheduler/internal/application"
	"github.com/example/practice-scheduler/internal/availability"
	"github.com/example/practice-scheduler/internal/booking"
)

var (
	professionalCounter uint64
	clientCounter       uint64
	partnerCounter      uint64
	templateCounter     uint64
	exceptionCounter    uint64
	appointmentCounter  uint64
	participantCounter  uint64
)

var referenceTime = time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures. It
// is a Monday morning, so weekday-based availability templates apply to it.
func ReferenceTime() time.Time {
	return referenceTime
}

// ProfessionalOption configures a generated professional record.
type ProfessionalOption func(*application.Professional)

// NewProfessional builds a unique active professional.
func NewProfessional(opts ...ProfessionalOption) application.Professional {
	n := atomic.AddUint64(&professionalCounter, 1)
	professional := application.Professional{
		ID:          fmt.Sprintf("prof-%d", n),
		DisplayName: fmt.Sprintf("Avv. Esposito %d", n),
		Email:       fmt.Sprintf("studio%d@esposito.it", n),
		Active:      true,
		CreatedAt:   referenceTime,
		UpdatedAt:   referenceTime,
	}
	for _, opt := range opts {
		opt(&professional)
	}
	return professional
}

// ProfessionalWithID overrides the generated identifier.
func ProfessionalWithID(id string) ProfessionalOption {
	return func(p *application.Professional) { p.ID = id }
}

// ProfessionalInactive marks the professional as deactivated.
func ProfessionalInactive() ProfessionalOption {
	return func(p *application.Professional) { p.Active = false }
}

// ClientOption configures a generated client record.
type ClientOption func(*application.Client)

// NewClient builds a unique client.
func NewClient(opts ...ClientOption) application.Client {
	n := atomic.AddUint64(&clientCounter, 1)
	client := application.Client{
		ID:          fmt.Sprintf("client-%d", n),
		DisplayName: fmt.Sprintf("Mario Rossi %d", n),
		Email:       fmt.Sprintf("mario.rossi%d@example.it", n),
		CreatedAt:   referenceTime,
		UpdatedAt:   referenceTime,
	}
	for _, opt := range opts {
		opt(&client)
	}
	return client
}

// ClientWithID overrides the generated identifier.
func ClientWithID(id string) ClientOption {
	return func(c *application.Client) { c.ID = id }
}

// PartnerOption configures a generated partner organization record.
type PartnerOption func(*application.PartnerOrg)

// NewPartner builds a unique partner organization.
func NewPartner(opts ...PartnerOption) application.PartnerOrg {
	n := atomic.AddUint64(&partnerCounter, 1)
	partner := application.PartnerOrg{
		ID:        fmt.Sprintf("partner-%d", n),
		Name:      fmt.Sprintf("Notaio Verdi %d", n),
		Email:     fmt.Sprintf("segreteria%d@verdi.it", n),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&partner)
	}
	return partner
}

// PartnerWithID overrides the generated identifier.
func PartnerWithID(id string) PartnerOption {
	return func(p *application.PartnerOrg) { p.ID = id }
}

// TemplateOption configures a generated availability template.
type TemplateOption func(*availability.Template)

// NewTemplate builds a Monday-morning template valid from the start of the
// reference year.
func NewTemplate(professionalID string, opts ...TemplateOption) availability.Template {
	n := atomic.AddUint64(&templateCounter, 1)
	template := availability.Template{
		ID:             fmt.Sprintf("tpl-%d", n),
		ProfessionalID: professionalID,
		Weekday:        time.Monday,
		StartMinute:    9 * 60,
		EndMinute:      12 * 60,
		SlotMinutes:    60,
		ValidFrom:      time.Date(referenceTime.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
		Active:         true,
		OnlineBooking:  true,
	}
	for _, opt := range opts {
		opt(&template)
	}
	return template
}

// TemplateOnWeekday moves the template to another weekday.
func TemplateOnWeekday(weekday time.Weekday) TemplateOption {
	return func(t *availability.Template) { t.Weekday = weekday }
}

// TemplateWindow sets the daily window in minutes from midnight.
func TemplateWindow(startMinute, endMinute int) TemplateOption {
	return func(t *availability.Template) {
		t.StartMinute = startMinute
		t.EndMinute = endMinute
	}
}

// TemplateSlotMinutes overrides the slot granularity.
func TemplateSlotMinutes(minutes int) TemplateOption {
	return func(t *availability.Template) { t.SlotMinutes = minutes }
}

// TemplateInactive deactivates the template.
func TemplateInactive() TemplateOption {
	return func(t *availability.Template) { t.Active = false }
}

// ExceptionOption configures a generated availability exception.
type ExceptionOption func(*availability.Exception)

// NewClosure builds a closed exception covering the whole reference day.
func NewClosure(professionalID string, opts ...ExceptionOption) availability.Exception {
	n := atomic.AddUint64(&exceptionCounter, 1)
	day := referenceTime.Truncate(24 * time.Hour)
	exception := availability.Exception{
		ID:             fmt.Sprintf("exc-%d", n),
		ProfessionalID: professionalID,
		Start:          day,
		End:            day.Add(24 * time.Hour),
		Closed:         true,
		Reason:         "studio closed",
	}
	for _, opt := range opts {
		opt(&exception)
	}
	return exception
}

// ExceptionRange overrides the covered range.
func ExceptionRange(start, end time.Time) ExceptionOption {
	return func(e *availability.Exception) {
		e.Start = start
		e.End = end
	}
}

// ExceptionOpen marks the exception as extra opening instead of closure.
func ExceptionOpen() ExceptionOption {
	return func(e *availability.Exception) { e.Closed = false }
}

// AppointmentOption configures a generated appointment.
type AppointmentOption func(*application.Appointment)

// NewAppointment builds a requested one-hour appointment starting at the
// reference time.
func NewAppointment(professionalID, clientID string, opts ...AppointmentOption) application.Appointment {
	n := atomic.AddUint64(&appointmentCounter, 1)
	appointment := application.Appointment{
		ID:             fmt.Sprintf("apt-%d", n),
		ProfessionalID: professionalID,
		ClientID:       clientID,
		Title:          fmt.Sprintf("Consultation %d", n),
		Kind:           "consultation",
		Start:          referenceTime,
		End:            referenceTime.Add(time.Hour),
		Status:         booking.StatusRequested,
		CreatedAt:      referenceTime,
		UpdatedAt:      referenceTime,
	}
	for _, opt := range opts {
		opt(&appointment)
	}
	return appointment
}

// AppointmentWithStatus overrides the lifecycle status.
func AppointmentWithStatus(status booking.Status) AppointmentOption {
	return func(a *application.Appointment) { a.Status = status }
}

// AppointmentAt moves the appointment to another interval.
func AppointmentAt(start, end time.Time) AppointmentOption {
	return func(a *application.Appointment) {
		a.Start = start
		a.End = end
	}
}

// ParticipantOption configures a generated participant.
type ParticipantOption func(*application.Participant)

// NewParticipant builds a pending invited participant for the given party.
func NewParticipant(appointmentID string, party application.Party, opts ...ParticipantOption) application.Participant {
	n := atomic.AddUint64(&participantCounter, 1)
	participant := application.Participant{
		ID:            fmt.Sprintf("part-%d", n),
		AppointmentID: appointmentID,
		Party:         party,
		Role:          application.RoleInvited,
		Response:      application.ResponsePending,
		CreatedAt:     referenceTime,
		UpdatedAt:     referenceTime,
	}
	for _, opt := range opts {
		opt(&participant)
	}
	return participant
}

// ParticipantAsRequester marks the participant as the accepted requester.
func ParticipantAsRequester() ParticipantOption {
	return func(p *application.Participant) {
		p.Role = application.RoleRequester
		p.Response = application.ResponseAccepted
		respondedAt := referenceTime
		p.RespondedAt = &respondedAt
	}
}

// ParticipantWithResponse overrides the recorded answer.
func ParticipantWithResponse(response application.ParticipantResponse) ParticipantOption {
	return func(p *application.Participant) { p.Response = response }
}
