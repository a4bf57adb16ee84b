package application

import (
	"time"

	"github.com/example/practice-scheduler/internal/booking"
)

// Professional represents a bookable professional in the directory.
type Professional struct {
	ID          string
	DisplayName string
	Email       string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Client represents a person who requests appointments.
type Client struct {
	ID          string
	DisplayName string
	Email       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PartnerOrg represents an external organization that can be invited to
// appointments.
type PartnerOrg struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PartyKind discriminates the participant party union.
type PartyKind string

const (
	// PartyClient marks a party resolved against the client directory.
	PartyClient PartyKind = "client"
	// PartyPartner marks a party resolved against the partner directory.
	PartyPartner PartyKind = "partner"
)

// Party is a tagged reference to either a client or a partner organization.
// The tag makes the client-XOR-partner invariant structural: a party can never
// point at both directories at once.
type Party struct {
	Kind PartyKind
	ID   string
}

// ClientParty builds a client-kind party.
func ClientParty(id string) Party {
	return Party{Kind: PartyClient, ID: id}
}

// PartnerParty builds a partner-kind party.
func PartnerParty(id string) Party {
	return Party{Kind: PartyPartner, ID: id}
}

// Valid reports whether the party carries a known kind and a non-empty ID.
func (p Party) Valid() bool {
	if p.ID == "" {
		return false
	}
	return p.Kind == PartyClient || p.Kind == PartyPartner
}

// ParticipantRole describes why a party is attached to an appointment.
type ParticipantRole string

const (
	// RoleOrganizer marks the professional hosting the appointment.
	RoleOrganizer ParticipantRole = "organizer"
	// RoleRequester marks the client who initiated the booking.
	RoleRequester ParticipantRole = "requester"
	// RoleInvited marks a party whose acceptance is required for confirmation.
	RoleInvited ParticipantRole = "invited"
	// RoleOptional marks a courtesy invitation.
	RoleOptional ParticipantRole = "optional"
)

// Valid reports whether the role is a known value.
func (r ParticipantRole) Valid() bool {
	switch r {
	case RoleOrganizer, RoleRequester, RoleInvited, RoleOptional:
		return true
	}
	return false
}

// ParticipantResponse is a party's answer to an invitation.
type ParticipantResponse string

const (
	// ResponsePending means the party has not answered yet.
	ResponsePending ParticipantResponse = "pending"
	// ResponseAccepted means the party committed to attend.
	ResponseAccepted ParticipantResponse = "accepted"
	// ResponseDeclined means the party will not attend.
	ResponseDeclined ParticipantResponse = "declined"
	// ResponseTentative means the party may attend but is not committed.
	// A tentative answer blocks confirmation until revised.
	ResponseTentative ParticipantResponse = "tentative"
)

// Participant links a party to an appointment together with its response.
type Participant struct {
	ID            string
	AppointmentID string
	Party         Party
	Role          ParticipantRole
	Response      ParticipantResponse
	RespondedAt   *time.Time
	Note          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Appointment is a booked (or requested) meeting on a professional's calendar.
type Appointment struct {
	ID                 string
	ProfessionalID     string
	ClientID           string
	Title              string
	Description        string
	Kind               string
	Start              time.Time
	End                time.Time
	Status             booking.Status
	PublicNotes        string
	PrivateNotes       string
	ActID              *string
	ReminderSentAt     *time.Time
	ConfirmationSentAt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Slot is a candidate bookable interval offered to clients.
type Slot struct {
	ProfessionalID string
	Start          time.Time
	End            time.Time
}

// RequestAppointmentParams wraps the data required to request a booking.
type RequestAppointmentParams struct {
	ProfessionalID string
	ClientID       string
	Title          string
	Description    string
	Kind           string
	Start          time.Time
	End            time.Time
}

// InviteParticipantsParams wraps the data required to invite parties to an
// approved appointment.
type InviteParticipantsParams struct {
	AppointmentID string
	Parties       []Party
	Role          ParticipantRole
}

// ResponseDecision enumerates the answers a participant may give.
type ResponseDecision string

const (
	// DecisionAccept records acceptance and may confirm the appointment.
	DecisionAccept ResponseDecision = "accept"
	// DecisionDecline records refusal without touching the appointment.
	DecisionDecline ResponseDecision = "decline"
	// DecisionTentative records an uncommitted answer.
	DecisionTentative ResponseDecision = "tentative"
)

// RespondToInvitationParams wraps a participant's answer to an invitation.
type RespondToInvitationParams struct {
	ParticipantID string
	Decision      ResponseDecision
	Note          string
}

// RespondResult carries the participant after the answer was recorded and the
// appointment, whose status may have advanced to confirmed.
type RespondResult struct {
	Participant Participant
	Appointment Appointment
}

// GetAvailableSlotsParams bounds a slot query for one professional.
type GetAvailableSlotsParams struct {
	ProfessionalID  string
	From            time.Time
	To              time.Time
	DurationMinutes int
}

// TemplateInput captures caller provided availability template fields.
type TemplateInput struct {
	ProfessionalID string
	Weekday        time.Weekday
	StartMinute    int
	EndMinute      int
	SlotMinutes    int
	ValidFrom      time.Time
	ValidUntil     *time.Time
	OnlineBooking  bool
}

// ExceptionInput captures caller provided availability exception fields.
type ExceptionInput struct {
	ProfessionalID string
	Start          time.Time
	End            time.Time
	Closed         bool
	Reason         string
}

// ProfessionalInput captures caller provided professional fields.
type ProfessionalInput struct {
	DisplayName string
	Email       string
}

// ClientInput captures caller provided client fields.
type ClientInput struct {
	DisplayName string
	Email       string
}

// PartnerInput captures caller provided partner organization fields.
type PartnerInput struct {
	Name  string
	Email string
}
