package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/practice-scheduler/internal/booking"
	"github.com/example/practice-scheduler/internal/interval"
)

// AppointmentFilter narrows queries issued to the appointment repository.
type AppointmentFilter struct {
	ProfessionalID string
	StartsBefore   *time.Time
	EndsAfter      *time.Time
}

// AppointmentRepository captures the persistence interactions needed by the
// booking service. CreateAppointment persists the appointment and its initial
// participants as a single atomic write.
type AppointmentRepository interface {
	CreateAppointment(ctx context.Context, appointment Appointment, participants []Participant) (Appointment, error)
	GetAppointment(ctx context.Context, id string) (Appointment, error)
	UpdateAppointment(ctx context.Context, appointment Appointment) (Appointment, error)
	ListAppointments(ctx context.Context, filter AppointmentFilter) ([]Appointment, error)
	// ListAppointmentsForParty returns the appointments the party is attached
	// to with a response other than declined.
	ListAppointmentsForParty(ctx context.Context, party Party) ([]Appointment, error)
}

// ParticipantRepository stores invitation state per appointment and party.
type ParticipantRepository interface {
	CreateParticipant(ctx context.Context, participant Participant) (Participant, error)
	GetParticipant(ctx context.Context, id string) (Participant, error)
	UpdateParticipant(ctx context.Context, participant Participant) (Participant, error)
	ListParticipants(ctx context.Context, appointmentID string) ([]Participant, error)
}

// PartyDirectory resolves party references against the directories.
type PartyDirectory interface {
	MissingParties(ctx context.Context, parties []Party) ([]Party, error)
}

// SlotInvalidator drops cached slot listings after a calendar write.
type SlotInvalidator interface {
	InvalidateSlots(professionalID string)
}

// BookingService owns the appointment lifecycle: request, approval or
// rejection, participant invitations, the acceptance consensus, cancellation
// and completion. Every mutation of an existing appointment holds that
// appointment's lock, so a transition read under the lock is the committed one.
// Slot-allocation decisions additionally hold the professional's lock so the
// conflict re-check and the resulting write form one atomic unit.
type BookingService struct {
	appointments AppointmentRepository
	participants ParticipantRepository
	directory    PartyDirectory
	notifier     Notifier
	invalidator  SlotInvalidator
	locks        *keyedMutex
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewBookingService wires dependencies for booking operations. notifier and
// invalidator may be nil.
func NewBookingService(appointments AppointmentRepository, participants ParticipantRepository, directory PartyDirectory, notifier Notifier, invalidator SlotInvalidator, idGenerator func() string, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(appointments, participants, directory, notifier, invalidator, idGenerator, now, nil)
}

// NewBookingServiceWithLogger wires dependencies plus a base logger.
func NewBookingServiceWithLogger(appointments AppointmentRepository, participants ParticipantRepository, directory PartyDirectory, notifier Notifier, invalidator SlotInvalidator, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		appointments: appointments,
		participants: participants,
		directory:    directory,
		notifier:     notifier,
		invalidator:  invalidator,
		locks:        newKeyedMutex(),
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

// Request validates a client's booking request against the professional's
// calendar and creates the appointment in requested status. The requesting
// client is attached as an accepted participant: the act of requesting is
// implicit consent. The client's own calendar is deliberately not checked;
// only the professional's availability gates the request.
func (s *BookingService) Request(ctx context.Context, params RequestAppointmentParams) (Appointment, error) {
	if s == nil {
		return Appointment{}, fmt.Errorf("BookingService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "booking", "request", "professional_id", params.ProfessionalID)

	vErr := &ValidationError{}
	if strings.TrimSpace(params.ProfessionalID) == "" {
		vErr.add("professional_id", "professional is required")
	}
	if strings.TrimSpace(params.ClientID) == "" {
		vErr.add("client_id", "client is required")
	}
	if strings.TrimSpace(params.Title) == "" {
		vErr.add("title", "title is required")
	}
	if !params.Start.Before(params.End) {
		vErr.add("time", "start must precede end")
	}
	if vErr.HasErrors() {
		return Appointment{}, vErr
	}

	unlock := s.locks.Lock(professionalLockKey(params.ProfessionalID))
	defer unlock()

	conflicts, err := s.professionalConflicts(ctx, booking.Booking{
		ProfessionalID: params.ProfessionalID,
		Start:          params.Start,
		End:            params.End,
	}, booking.Status.BlocksRequest)
	if err != nil {
		return Appointment{}, err
	}
	if len(conflicts) > 0 {
		logger.InfoContext(ctx, "slot contention on request", "conflicts", len(conflicts))
		return Appointment{}, ErrSlotUnavailable
	}

	createdAt := s.now()
	appointment := Appointment{
		ID:             s.idGenerator(),
		ProfessionalID: params.ProfessionalID,
		ClientID:       params.ClientID,
		Title:          strings.TrimSpace(params.Title),
		Description:    params.Description,
		Kind:           params.Kind,
		Start:          params.Start,
		End:            params.End,
		Status:         booking.StatusRequested,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}

	respondedAt := createdAt
	requester := Participant{
		ID:            s.idGenerator(),
		AppointmentID: appointment.ID,
		Party:         ClientParty(params.ClientID),
		Role:          RoleRequester,
		Response:      ResponseAccepted,
		RespondedAt:   &respondedAt,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}

	persisted, err := s.appointments.CreateAppointment(ctx, appointment, []Participant{requester})
	if err != nil {
		return Appointment{}, err
	}

	s.invalidateSlots(persisted.ProfessionalID)
	s.notify(ctx, TransitionEvent{
		Appointment: persisted,
		From:        "",
		To:          booking.StatusRequested,
		OccurredAt:  createdAt,
	})
	logger.InfoContext(ctx, "appointment requested", "appointment_id", persisted.ID)
	return persisted, nil
}

// Approve moves a requested appointment to approved after re-checking the
// interval against committed bookings only. Requested-but-unapproved siblings
// no longer block: only one of the competing requests can win.
func (s *BookingService) Approve(ctx context.Context, appointmentID string) (Appointment, error) {
	if s == nil {
		return Appointment{}, fmt.Errorf("BookingService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "booking", "approve", "appointment_id", appointmentID)

	first, err := s.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return Appointment{}, err
	}

	// Professional first, then appointment: Request competes on the former,
	// every other transition on the latter. The order is fixed so the two
	// locks can never deadlock against each other.
	unlockProfessional := s.locks.Lock(professionalLockKey(first.ProfessionalID))
	defer unlockProfessional()
	unlock := s.locks.Lock(appointmentLockKey(appointmentID))
	defer unlock()

	appointment, err := s.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return Appointment{}, err
	}
	if appointment.Status != booking.StatusRequested {
		return Appointment{}, ErrInvalidTransition
	}

	conflicts, err := s.professionalConflicts(ctx, asBooking(appointment), booking.Status.BlocksApproval)
	if err != nil {
		return Appointment{}, err
	}
	if len(conflicts) > 0 {
		logger.InfoContext(ctx, "slot lost before approval", "conflicts", len(conflicts))
		return Appointment{}, ErrSlotNoLongerAvailable
	}

	previous := appointment.Status
	appointment.Status = booking.StatusApproved
	appointment.UpdatedAt = s.now()

	persisted, err := s.appointments.UpdateAppointment(ctx, appointment)
	if err != nil {
		return Appointment{}, err
	}

	s.invalidateSlots(persisted.ProfessionalID)
	s.notify(ctx, TransitionEvent{
		Appointment: persisted,
		From:        previous,
		To:          booking.StatusApproved,
		OccurredAt:  persisted.UpdatedAt,
	})
	logger.InfoContext(ctx, "appointment approved")
	return persisted, nil
}

// Reject declines a requested appointment, recording the reason.
func (s *BookingService) Reject(ctx context.Context, appointmentID, reason string) (Appointment, error) {
	if s == nil {
		return Appointment{}, fmt.Errorf("BookingService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "booking", "reject", "appointment_id", appointmentID)

	unlock := s.locks.Lock(appointmentLockKey(appointmentID))
	defer unlock()

	appointment, err := s.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return Appointment{}, err
	}
	if appointment.Status != booking.StatusRequested {
		return Appointment{}, ErrInvalidTransition
	}

	previous := appointment.Status
	appointment.Status = booking.StatusRejected
	appointment.PublicNotes = appendNote(appointment.PublicNotes, reason)
	appointment.UpdatedAt = s.now()

	persisted, err := s.appointments.UpdateAppointment(ctx, appointment)
	if err != nil {
		return Appointment{}, err
	}

	s.invalidateSlots(persisted.ProfessionalID)
	s.notify(ctx, TransitionEvent{
		Appointment: persisted,
		From:        previous,
		To:          booking.StatusRejected,
		Reason:      reason,
		OccurredAt:  persisted.UpdatedAt,
	})
	logger.InfoContext(ctx, "appointment rejected")
	return persisted, nil
}

// InviteParticipants attaches pending invitations to an approved or confirmed
// appointment. Parties already attached are silently skipped, so re-inviting
// is idempotent. Returns the participants created by this call.
func (s *BookingService) InviteParticipants(ctx context.Context, params InviteParticipantsParams) ([]Participant, error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "booking", "invite", "appointment_id", params.AppointmentID)

	role := params.Role
	if role == "" {
		role = RoleInvited
	}

	vErr := &ValidationError{}
	if len(params.Parties) == 0 {
		vErr.add("parties", "at least one party is required")
	}
	for _, party := range params.Parties {
		if !party.Valid() {
			vErr.add("parties", "party references must carry a kind and an id")
			break
		}
	}
	if !role.Valid() {
		vErr.add("role", "unknown participant role")
	}
	if vErr.HasErrors() {
		return nil, vErr
	}

	if s.directory != nil {
		missing, err := s.directory.MissingParties(ctx, params.Parties)
		if err != nil {
			return nil, err
		}
		if len(missing) > 0 {
			vErr.add("parties", fmt.Sprintf("%d party reference(s) not found in the directory", len(missing)))
			return nil, vErr
		}
	}

	unlock := s.locks.Lock(appointmentLockKey(params.AppointmentID))
	defer unlock()

	appointment, err := s.appointments.GetAppointment(ctx, params.AppointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.Status != booking.StatusApproved && appointment.Status != booking.StatusConfirmed {
		return nil, ErrInvalidTransition
	}

	existing, err := s.participants.ListParticipants(ctx, appointment.ID)
	if err != nil {
		return nil, err
	}
	attached := make(map[Party]struct{}, len(existing))
	for _, p := range existing {
		attached[p.Party] = struct{}{}
	}

	createdAt := s.now()
	var created []Participant
	for _, party := range params.Parties {
		if _, ok := attached[party]; ok {
			continue
		}
		attached[party] = struct{}{}

		participant := Participant{
			ID:            s.idGenerator(),
			AppointmentID: appointment.ID,
			Party:         party,
			Role:          role,
			Response:      ResponsePending,
			CreatedAt:     createdAt,
			UpdatedAt:     createdAt,
		}
		persisted, err := s.participants.CreateParticipant(ctx, participant)
		if err != nil {
			return nil, err
		}
		created = append(created, persisted)
	}

	logger.InfoContext(ctx, "participants invited", "invited", len(created), "skipped", len(params.Parties)-len(created))
	return created, nil
}

// RespondToInvitation records a pending participant's answer. Acceptance first
// re-checks the party's own calendar, then re-evaluates the consensus rule:
// when an approved appointment has every participant accepted, it is promoted
// to confirmed inside the same critical section. A decline never cancels the
// appointment; the professional decides what happens next.
func (s *BookingService) RespondToInvitation(ctx context.Context, params RespondToInvitationParams) (RespondResult, error) {
	if s == nil {
		return RespondResult{}, fmt.Errorf("BookingService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "booking", "respond", "participant_id", params.ParticipantID)

	if params.Decision != DecisionAccept && params.Decision != DecisionDecline && params.Decision != DecisionTentative {
		vErr := &ValidationError{}
		vErr.add("decision", "decision must be accept, decline or tentative")
		return RespondResult{}, vErr
	}

	first, err := s.participants.GetParticipant(ctx, params.ParticipantID)
	if err != nil {
		return RespondResult{}, err
	}

	unlock := s.locks.Lock(appointmentLockKey(first.AppointmentID))
	defer unlock()

	participant, err := s.participants.GetParticipant(ctx, params.ParticipantID)
	if err != nil {
		return RespondResult{}, err
	}
	if participant.Response != ResponsePending {
		return RespondResult{}, ErrInvalidTransition
	}

	appointment, err := s.appointments.GetAppointment(ctx, participant.AppointmentID)
	if err != nil {
		return RespondResult{}, err
	}

	if params.Decision == DecisionAccept {
		conflict, err := s.partyHasConflict(ctx, participant.Party, appointment)
		if err != nil {
			return RespondResult{}, err
		}
		if conflict {
			logger.InfoContext(ctx, "participant calendar conflict on accept")
			return RespondResult{}, ErrParticipantConflict
		}
	}

	respondedAt := s.now()
	switch params.Decision {
	case DecisionAccept:
		participant.Response = ResponseAccepted
	case DecisionDecline:
		participant.Response = ResponseDeclined
	case DecisionTentative:
		participant.Response = ResponseTentative
	}
	participant.RespondedAt = &respondedAt
	participant.Note = params.Note
	participant.UpdatedAt = respondedAt

	persisted, err := s.participants.UpdateParticipant(ctx, participant)
	if err != nil {
		return RespondResult{}, err
	}

	if params.Decision == DecisionAccept {
		appointment, err = s.evaluateConsensus(ctx, appointment)
		if err != nil {
			return RespondResult{}, err
		}
	}

	logger.InfoContext(ctx, "invitation answered", "decision", string(params.Decision), "appointment_status", string(appointment.Status))
	return RespondResult{Participant: persisted, Appointment: appointment}, nil
}

// Get returns an appointment together with its participants.
func (s *BookingService) Get(ctx context.Context, appointmentID string) (Appointment, []Participant, error) {
	if s == nil {
		return Appointment{}, nil, fmt.Errorf("BookingService is nil")
	}

	appointment, err := s.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return Appointment{}, nil, err
	}
	participants, err := s.participants.ListParticipants(ctx, appointmentID)
	if err != nil {
		return Appointment{}, nil, err
	}
	return appointment, participants, nil
}

// Cancel calls off an appointment from any non-terminal status, recording the
// reason as a public note.
func (s *BookingService) Cancel(ctx context.Context, appointmentID, reason string) (Appointment, error) {
	if s == nil {
		return Appointment{}, fmt.Errorf("BookingService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "booking", "cancel", "appointment_id", appointmentID)

	unlock := s.locks.Lock(appointmentLockKey(appointmentID))
	defer unlock()

	appointment, err := s.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return Appointment{}, err
	}
	if appointment.Status.Terminal() {
		return Appointment{}, ErrNotCancellable
	}

	previous := appointment.Status
	appointment.Status = booking.StatusCancelled
	appointment.PublicNotes = appendNote(appointment.PublicNotes, reason)
	appointment.UpdatedAt = s.now()

	persisted, err := s.appointments.UpdateAppointment(ctx, appointment)
	if err != nil {
		return Appointment{}, err
	}

	s.invalidateSlots(persisted.ProfessionalID)
	s.notify(ctx, TransitionEvent{
		Appointment: persisted,
		From:        previous,
		To:          booking.StatusCancelled,
		Reason:      reason,
		OccurredAt:  persisted.UpdatedAt,
	})
	logger.InfoContext(ctx, "appointment cancelled", "from", string(previous))
	return persisted, nil
}

// Complete marks a confirmed appointment as having taken place.
func (s *BookingService) Complete(ctx context.Context, appointmentID string) (Appointment, error) {
	if s == nil {
		return Appointment{}, fmt.Errorf("BookingService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "booking", "complete", "appointment_id", appointmentID)

	unlock := s.locks.Lock(appointmentLockKey(appointmentID))
	defer unlock()

	appointment, err := s.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return Appointment{}, err
	}
	if appointment.Status != booking.StatusConfirmed {
		return Appointment{}, ErrInvalidTransition
	}

	previous := appointment.Status
	appointment.Status = booking.StatusCompleted
	appointment.UpdatedAt = s.now()

	persisted, err := s.appointments.UpdateAppointment(ctx, appointment)
	if err != nil {
		return Appointment{}, err
	}

	s.notify(ctx, TransitionEvent{
		Appointment: persisted,
		From:        previous,
		To:          booking.StatusCompleted,
		OccurredAt:  persisted.UpdatedAt,
	})
	logger.InfoContext(ctx, "appointment completed")
	return persisted, nil
}

// AttachAct links a generated legal act to a confirmed or completed
// appointment. The act itself lives in the document subsystem; the engine only
// stores the reference.
func (s *BookingService) AttachAct(ctx context.Context, appointmentID, actID string) (Appointment, error) {
	if s == nil {
		return Appointment{}, fmt.Errorf("BookingService is nil")
	}
	if strings.TrimSpace(actID) == "" {
		vErr := &ValidationError{}
		vErr.add("act_id", "act reference is required")
		return Appointment{}, vErr
	}

	unlock := s.locks.Lock(appointmentLockKey(appointmentID))
	defer unlock()

	appointment, err := s.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return Appointment{}, err
	}
	if appointment.Status != booking.StatusConfirmed && appointment.Status != booking.StatusCompleted {
		return Appointment{}, ErrInvalidTransition
	}

	appointment.ActID = &actID
	appointment.UpdatedAt = s.now()
	return s.appointments.UpdateAppointment(ctx, appointment)
}

// MarkReminderSent records that the notification collaborator delivered the
// appointment reminder.
func (s *BookingService) MarkReminderSent(ctx context.Context, appointmentID string) (Appointment, error) {
	return s.markSent(ctx, appointmentID, func(a *Appointment, at time.Time) { a.ReminderSentAt = &at })
}

// MarkConfirmationSent records that the confirmation message went out.
func (s *BookingService) MarkConfirmationSent(ctx context.Context, appointmentID string) (Appointment, error) {
	return s.markSent(ctx, appointmentID, func(a *Appointment, at time.Time) { a.ConfirmationSentAt = &at })
}

func (s *BookingService) markSent(ctx context.Context, appointmentID string, apply func(*Appointment, time.Time)) (Appointment, error) {
	if s == nil {
		return Appointment{}, fmt.Errorf("BookingService is nil")
	}

	unlock := s.locks.Lock(appointmentLockKey(appointmentID))
	defer unlock()

	appointment, err := s.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return Appointment{}, err
	}

	at := s.now()
	apply(&appointment, at)
	appointment.UpdatedAt = at
	return s.appointments.UpdateAppointment(ctx, appointment)
}

// evaluateConsensus promotes an approved appointment to confirmed when every
// participant has accepted. It runs inside the caller's appointment critical
// section, which is shared with cancellation and completion, so a concurrent
// transition cannot be overwritten and two acceptances cannot lose or
// duplicate the promotion. When the condition is not met, nothing is written.
func (s *BookingService) evaluateConsensus(ctx context.Context, appointment Appointment) (Appointment, error) {
	if appointment.Status != booking.StatusApproved {
		return appointment, nil
	}

	participants, err := s.participants.ListParticipants(ctx, appointment.ID)
	if err != nil {
		return Appointment{}, err
	}
	if len(participants) == 0 {
		return appointment, nil
	}
	for _, p := range participants {
		if p.Response != ResponseAccepted {
			return appointment, nil
		}
	}

	previous := appointment.Status
	appointment.Status = booking.StatusConfirmed
	appointment.UpdatedAt = s.now()

	persisted, err := s.appointments.UpdateAppointment(ctx, appointment)
	if err != nil {
		return Appointment{}, err
	}

	s.notify(ctx, TransitionEvent{
		Appointment: persisted,
		From:        previous,
		To:          booking.StatusConfirmed,
		OccurredAt:  persisted.UpdatedAt,
	})
	return persisted, nil
}

// professionalConflicts loads the bookings that might overlap the candidate
// and runs conflict detection with the supplied blocking rule.
func (s *BookingService) professionalConflicts(ctx context.Context, candidate booking.Booking, blocks func(booking.Status) bool) ([]booking.Conflict, error) {
	existing, err := s.appointments.ListAppointments(ctx, AppointmentFilter{
		ProfessionalID: candidate.ProfessionalID,
		StartsBefore:   &candidate.End,
		EndsAfter:      &candidate.Start,
	})
	if err != nil {
		return nil, err
	}
	return booking.FindConflicts(asBookings(existing), candidate, blocks), nil
}

// partyHasConflict reports whether the party is already engaged in another
// blocking appointment that overlaps the given one.
func (s *BookingService) partyHasConflict(ctx context.Context, party Party, appointment Appointment) (bool, error) {
	others, err := s.appointments.ListAppointmentsForParty(ctx, party)
	if err != nil {
		return false, err
	}
	for _, other := range others {
		if other.ID == appointment.ID {
			continue
		}
		if !other.Status.BlocksRequest() {
			continue
		}
		if interval.Overlaps(other.Start, other.End, appointment.Start, appointment.End) {
			return true, nil
		}
	}
	return false, nil
}

func (s *BookingService) invalidateSlots(professionalID string) {
	if s.invalidator != nil {
		s.invalidator.InvalidateSlots(professionalID)
	}
}

func (s *BookingService) notify(ctx context.Context, event TransitionEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.AppointmentTransitioned(ctx, event); err != nil {
		serviceLogger(ctx, s.logger, "booking", "notify", "appointment_id", event.Appointment.ID).
			WarnContext(ctx, "transition notification failed", "error", err, "to", string(event.To))
	}
}

func asBooking(a Appointment) booking.Booking {
	return booking.Booking{
		ID:             a.ID,
		ProfessionalID: a.ProfessionalID,
		Start:          a.Start,
		End:            a.End,
		Status:         a.Status,
	}
}

func asBookings(appointments []Appointment) []booking.Booking {
	out := make([]booking.Booking, 0, len(appointments))
	for _, a := range appointments {
		out = append(out, asBooking(a))
	}
	return out
}

func appendNote(existing, note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return existing
	}
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
