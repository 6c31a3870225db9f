package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/massaflow/practice-api/internal/analytics"
	"github.com/massaflow/practice-api/internal/delivery"
	"github.com/massaflow/practice-api/internal/model"
	"github.com/massaflow/practice-api/internal/repository"
	"github.com/massaflow/practice-api/internal/template"
	"github.com/massaflow/practice-api/pkg/logger"
	"github.com/massaflow/practice-api/pkg/metrics"
)

const (
	dateFormat = "02/01/2006"
	timeFormat = "15:04"
)

// Config tunes the evaluator and the orchestration cycle.
type Config struct {
	Windows Windows
	// ReminderSuppressionWindow suppresses a reminder when a reminder log
	// entry for the appointment exists within the window. Zero disables
	// the check and reproduces the original re-fire-every-cycle behavior.
	ReminderSuppressionWindow time.Duration
	DeliveryTimeout           time.Duration
	CycleTimeout              time.Duration
	LinkBaseURL               string
}

func (c Config) withDefaults() Config {
	if c.Windows == (Windows{}) {
		c.Windows = DefaultWindows()
	}
	if c.DeliveryTimeout == 0 {
		c.DeliveryTimeout = 10 * time.Second
	}
	if c.CycleTimeout == 0 {
		c.CycleTimeout = 2 * time.Minute
	}
	if c.LinkBaseURL == "" {
		c.LinkBaseURL = "https://app.massaflow.example"
	}
	return c
}

// Evaluator decides and fires routines for single appointments. Every
// failure short of a repository outage is a skip: the cycle must reach
// the remaining appointments.
type Evaluator struct {
	store     *repository.Store
	templates *template.Store
	sink      delivery.Sink
	analytics analytics.Sink
	logger    *logger.Logger
	metrics   *metrics.Metrics
	cfg       Config
}

func NewEvaluator(store *repository.Store, templates *template.Store, sink delivery.Sink, tracker analytics.Sink, log *logger.Logger, m *metrics.Metrics, cfg Config) *Evaluator {
	return &Evaluator{
		store:     store,
		templates: templates,
		sink:      sink,
		analytics: tracker,
		logger:    log.WithComponent("evaluator"),
		metrics:   m,
		cfg:       cfg.withDefaults(),
	}
}

// Evaluate classifies one appointment and fires the resulting routine.
// Returns the routine fired, or "" when nothing fired.
func (e *Evaluator) Evaluate(ctx context.Context, now time.Time, appt *model.Appointment) model.RoutineID {
	user, err := e.store.Users.Get(ctx, appt.UserID)
	if err != nil {
		e.skip(appt, "", "missing_user", err)
		return ""
	}

	decision := Classify(now, appt, user, e.cfg.Windows)
	if decision == DecisionNone {
		return ""
	}
	routine := decision.Routine()

	client, err := e.store.Clients.Get(ctx, appt.ClientID)
	if err != nil {
		e.skip(appt, routine, "missing_client", err)
		return ""
	}

	if decision == DecisionReminder && e.reminderRecentlySent(ctx, now, appt.ID) {
		e.skip(appt, routine, "recently_sent", nil)
		return ""
	}

	tpl, err := e.templates.Resolve(user.PracticeType, routine)
	if err != nil {
		e.skip(appt, routine, "missing_template", err)
		return ""
	}

	// Flag-guarded routines set their flag before sending: the CAS patch
	// is what makes a concurrent duplicate fire impossible.
	if !e.markFired(ctx, appt, decision, routine) {
		return ""
	}

	body, degraded := template.Render(tpl.DefaultMessage, e.variables(appt, user, client))
	if degraded {
		e.logger.Warn("rendered message has unresolved placeholders",
			"appointment_id", appt.ID.String(), "routine", string(routine))
	}

	msg := delivery.Message{
		Recipient: client.Address(user.PreferredChannel),
		Subject:   tpl.Subject,
		Body:      body,
		Channel:   user.PreferredChannel,
	}

	sendCtx, cancel := context.WithTimeout(ctx, e.cfg.DeliveryTimeout)
	outcome := e.sink.Send(sendCtx, msg)
	cancel()

	e.record(ctx, now, appt, user, client, routine, msg, outcome, degraded)
	return routine
}

// reminderRecentlySent checks the communication log for a reminder within
// the suppression window. Disabled when the window is zero.
func (e *Evaluator) reminderRecentlySent(ctx context.Context, now time.Time, apptID uuid.UUID) bool {
	if e.cfg.ReminderSuppressionWindow == 0 {
		return false
	}
	last, err := e.store.CommunicationLogs.LastForAppointment(ctx, apptID, model.RoutineReminder1h)
	if err != nil {
		return false
	}
	return now.Sub(last.SentAt) < e.cfg.ReminderSuppressionWindow
}

// markFired sets the routine's de-duplication flag. A conflict means a
// concurrent cycle got there first; that is a silent skip, not an error.
func (e *Evaluator) markFired(ctx context.Context, appt *model.Appointment, decision RoutineDecision, routine model.RoutineID) bool {
	flag := true
	var patch *model.AppointmentPatch
	switch decision {
	case DecisionConfirmation:
		patch = &model.AppointmentPatch{Confirmed: &flag}
	case DecisionFollowUp:
		patch = &model.AppointmentPatch{FollowUpSent: &flag}
	default:
		return true // reminders carry no flag
	}

	updated, err := e.store.Appointments.Patch(ctx, appt.ID, patch)
	if err != nil {
		e.skip(appt, routine, "flag_conflict", err)
		return false
	}
	*appt = *updated
	return true
}

func (e *Evaluator) variables(appt *model.Appointment, user *model.User, client *model.Client) map[string]string {
	vars := map[string]string{
		"ClientName":    client.Name,
		"Date":          appt.StartTime.Format(dateFormat),
		"Time":          appt.StartTime.Format(timeFormat),
		"Service":       appt.ServiceName,
		"Therapist":     user.Name,
		"PracticeName":  user.Name,
		"PracticePhone": user.Phone,
		"FeedbackLink":  fmt.Sprintf("%s/feedback?appt=%s", e.cfg.LinkBaseURL, appt.ID),
		"OffersLink":    fmt.Sprintf("%s/offers?client=%s", e.cfg.LinkBaseURL, client.ID),
	}
	if user.Phone == "" {
		vars["PracticePhone"] = "N/A"
	}
	return vars
}

// record appends the communication log entry regardless of the delivery
// outcome and emits the engagement event.
func (e *Evaluator) record(ctx context.Context, now time.Time, appt *model.Appointment, user *model.User, client *model.Client, routine model.RoutineID, msg delivery.Message, outcome delivery.Outcome, degraded bool) {
	entry := &model.CommunicationLog{
		ID:            uuid.New(),
		UserID:        user.ID,
		ClientID:      client.ID,
		AppointmentID: appt.ID,
		Routine:       routine,
		Channel:       msg.Channel,
		Recipient:     msg.Recipient,
		Preview:       msg.Body,
		Status:        model.DeliveryStatusSuccess,
		Degraded:      degraded,
		SentAt:        now,
	}
	if !outcome.Success {
		entry.Status = model.DeliveryStatusFailed
		if outcome.Err != nil {
			entry.Error = outcome.Err.Error()
		}
		e.metrics.DeliveryFailed.Inc()
		e.logger.Warn("delivery failed",
			"appointment_id", appt.ID.String(), "routine", string(routine), "error", entry.Error)
	}

	if err := e.store.CommunicationLogs.Append(ctx, entry); err != nil {
		e.logger.Error(err, "failed to append communication log",
			"appointment_id", appt.ID.String(), "routine", string(routine))
	}

	e.metrics.RoutinesFired.WithLabelValues(string(routine)).Inc()
	e.analytics.Track("communication_sent", map[string]interface{}{
		"routine":  string(routine),
		"channel":  string(msg.Channel),
		"success":  outcome.Success,
		"degraded": degraded,
	}, user.ID.String())
}

func (e *Evaluator) skip(appt *model.Appointment, routine model.RoutineID, reason string, err error) {
	label := string(routine)
	if label == "" {
		label = "unknown"
	}
	e.metrics.RoutineSkips.WithLabelValues(label, reason).Inc()
	if err != nil {
		e.logger.Warn("skipped appointment",
			"appointment_id", appt.ID.String(), "routine", label, "reason", reason, "error", err.Error())
	} else {
		e.logger.Debug("skipped appointment",
			"appointment_id", appt.ID.String(), "routine", label, "reason", reason)
	}
}
