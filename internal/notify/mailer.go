// Package notify delivers appointment lifecycle notifications over SMTP.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/example/practice-scheduler/internal/application"
	"github.com/example/practice-scheduler/internal/booking"
)

// SMTPConfig holds the mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether enough configuration is present to send mail.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.Port > 0 && c.From != ""
}

// dialer abstracts gomail.Dialer so tests can capture outgoing messages.
type dialer interface {
	DialAndSend(messages ...*gomail.Message) error
}

// Mailer implements application.Notifier by emailing the professional about
// every appointment transition. Delivery failures are reported to the caller;
// the booking service logs and continues, it never rolls back a transition
// because mail is down.
type Mailer struct {
	config SMTPConfig
	dialer dialer
	logger *slog.Logger
}

// NewMailer builds a Mailer from SMTP settings.
func NewMailer(config SMTPConfig, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
		logger: logger,
	}
}

// AppointmentTransitioned sends a short plain-text message describing the
// transition.
func (m *Mailer) AppointmentTransitioned(ctx context.Context, event application.TransitionEvent) error {
	if m == nil {
		return fmt.Errorf("Mailer is nil")
	}
	if !m.config.Enabled() {
		return nil
	}

	message := gomail.NewMessage()
	message.SetHeader("From", m.config.From)
	message.SetHeader("To", m.config.From)
	message.SetHeader("Subject", subjectFor(event))
	message.SetBody("text/plain", bodyFor(event))

	if err := m.dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("notify: failed to send transition mail: %w", err)
	}

	m.logger.InfoContext(ctx, "transition mail sent",
		"appointment_id", event.Appointment.ID,
		"to_status", string(event.To),
	)
	return nil
}

func subjectFor(event application.TransitionEvent) string {
	switch event.To {
	case booking.StatusRequested:
		return fmt.Sprintf("New appointment request: %s", event.Appointment.Title)
	case booking.StatusApproved:
		return fmt.Sprintf("Appointment approved: %s", event.Appointment.Title)
	case booking.StatusConfirmed:
		return fmt.Sprintf("Appointment confirmed: %s", event.Appointment.Title)
	case booking.StatusCompleted:
		return fmt.Sprintf("Appointment completed: %s", event.Appointment.Title)
	case booking.StatusRejected:
		return fmt.Sprintf("Appointment rejected: %s", event.Appointment.Title)
	case booking.StatusCancelled:
		return fmt.Sprintf("Appointment cancelled: %s", event.Appointment.Title)
	}
	return fmt.Sprintf("Appointment update: %s", event.Appointment.Title)
}

func bodyFor(event application.TransitionEvent) string {
	body := fmt.Sprintf(
		"Appointment %q on %s moved from %s to %s.",
		event.Appointment.Title,
		event.Appointment.Start.Format(time.RFC1123),
		statusLabel(event.From),
		statusLabel(event.To),
	)
	if event.Reason != "" {
		body += fmt.Sprintf("\nReason: %s", event.Reason)
	}
	return body
}

func statusLabel(status booking.Status) string {
	if status == "" {
		return "(new)"
	}
	return string(status)
}

// NopNotifier discards every event. Used when SMTP is not configured.
type NopNotifier struct{}

// AppointmentTransitioned implements application.Notifier.
func (NopNotifier) AppointmentTransitioned(context.Context, application.TransitionEvent) error {
	return nil
}
