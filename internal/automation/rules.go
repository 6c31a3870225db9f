// Package automation is the rule-evaluation scheduler: it scans
// appointments against time windows, fires communication routines exactly
// once, and runs the periodic orchestration cycle.
package automation

import (
	"time"

	"github.com/massaflow/practice-api/internal/model"
)

// RoutineDecision is the outcome of classifying one appointment against
// the routine time windows at a given instant.
type RoutineDecision int

const (
	DecisionNone RoutineDecision = iota
	DecisionConfirmation
	DecisionReminder
	DecisionFollowUp
)

// Routine maps the decision to the routine it fires.
func (d RoutineDecision) Routine() model.RoutineID {
	switch d {
	case DecisionConfirmation:
		return model.RoutineConfirm24h
	case DecisionReminder:
		return model.RoutineReminder1h
	case DecisionFollowUp:
		return model.RoutineFollowUp24h
	}
	return ""
}

// Windows holds the routine time windows. All bounds are exclusive.
type Windows struct {
	ConfirmAheadMin time.Duration // start must be later than now+ConfirmAheadMin
	ConfirmAheadMax time.Duration // and earlier than now+ConfirmAheadMax
	ReminderAhead   time.Duration // start between now and now+ReminderAhead
	FollowUpBackMin time.Duration // end between now-FollowUpBackMax and now-FollowUpBackMin
	FollowUpBackMax time.Duration
}

// DefaultWindows returns the production windows: confirmations 24-48h
// ahead, reminders within 2h, follow-ups for sessions ended 23-25h ago.
func DefaultWindows() Windows {
	return Windows{
		ConfirmAheadMin: 24 * time.Hour,
		ConfirmAheadMax: 48 * time.Hour,
		ReminderAhead:   2 * time.Hour,
		FollowUpBackMin: 23 * time.Hour,
		FollowUpBackMax: 25 * time.Hour,
	}
}

// Classify decides which routine, if any, must fire for the appointment
// at instant now. It is pure: the clock is injected and no state is read.
// The de-duplication flags (confirmed, follow_up_sent) are part of the
// decision; the reminder routine has no flag of its own and relies on the
// communication log, checked by the evaluator.
func Classify(now time.Time, appt *model.Appointment, user *model.User, w Windows) RoutineDecision {
	switch appt.Status {
	case model.AppointmentStatusScheduled:
		if !appt.Confirmed &&
			user.RoutineActive(model.RoutineConfirm24h) &&
			appt.StartTime.After(now.Add(w.ConfirmAheadMin)) &&
			appt.StartTime.Before(now.Add(w.ConfirmAheadMax)) {
			return DecisionConfirmation
		}
		if user.RoutineActive(model.RoutineReminder1h) &&
			appt.StartTime.After(now) &&
			appt.StartTime.Before(now.Add(w.ReminderAhead)) {
			return DecisionReminder
		}

	case model.AppointmentStatusAttended:
		if !appt.FollowUpSent &&
			user.RoutineActive(model.RoutineFollowUp24h) &&
			appt.EndTime.After(now.Add(-w.FollowUpBackMax)) &&
			appt.EndTime.Before(now.Add(-w.FollowUpBackMin)) {
			return DecisionFollowUp
		}
	}
	return DecisionNone
}
