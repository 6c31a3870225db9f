package automation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/massaflow/practice-api/internal/model"
)

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func testUser(routines ...model.RoutineID) *model.User {
	return &model.User{
		ID:                uuid.New(),
		Name:              "Ana Silva",
		PracticeType:      model.PracticeTypeIndependent,
		ActivatedRoutines: routines,
	}
}

func scheduledAppt(start time.Time) *model.Appointment {
	return &model.Appointment{
		ID:        uuid.New(),
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    model.AppointmentStatusScheduled,
	}
}

func TestClassifyConfirmationWindow(t *testing.T) {
	user := testUser(model.RoutineConfirm24h)
	w := DefaultWindows()

	tests := []struct {
		name  string
		start time.Time
		want  RoutineDecision
	}{
		{"inside window", testNow.Add(30 * time.Hour), DecisionConfirmation},
		{"just inside lower bound", testNow.Add(24*time.Hour + time.Minute), DecisionConfirmation},
		{"exactly 24h ahead is excluded", testNow.Add(24 * time.Hour), DecisionNone},
		{"exactly 48h ahead is excluded", testNow.Add(48 * time.Hour), DecisionNone},
		{"just inside upper bound", testNow.Add(48*time.Hour - time.Minute), DecisionConfirmation},
		{"too far out", testNow.Add(72 * time.Hour), DecisionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appt := scheduledAppt(tt.start)
			assert.Equal(t, tt.want, Classify(testNow, appt, user, w))
		})
	}
}

func TestClassifyConfirmationSkipsConfirmed(t *testing.T) {
	user := testUser(model.RoutineConfirm24h)
	appt := scheduledAppt(testNow.Add(30 * time.Hour))
	appt.Confirmed = true

	assert.Equal(t, DecisionNone, Classify(testNow, appt, user, DefaultWindows()))
}

func TestClassifyRequiresActivatedRoutine(t *testing.T) {
	appt := scheduledAppt(testNow.Add(30 * time.Hour))

	assert.Equal(t, DecisionNone, Classify(testNow, appt, testUser(), DefaultWindows()))
	assert.Equal(t, DecisionNone, Classify(testNow, appt, testUser(model.RoutineReminder1h), DefaultWindows()))
}

func TestClassifyReminderWindow(t *testing.T) {
	user := testUser(model.RoutineReminder1h)
	w := DefaultWindows()

	tests := []struct {
		name  string
		start time.Time
		want  RoutineDecision
	}{
		{"one hour ahead", testNow.Add(time.Hour), DecisionReminder},
		{"already started", testNow.Add(-time.Minute), DecisionNone},
		{"exactly now is excluded", testNow, DecisionNone},
		{"exactly 2h ahead is excluded", testNow.Add(2 * time.Hour), DecisionNone},
		{"just under 2h ahead", testNow.Add(2*time.Hour - time.Minute), DecisionReminder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appt := scheduledAppt(tt.start)
			assert.Equal(t, tt.want, Classify(testNow, appt, user, w))
		})
	}
}

func TestClassifyConfirmationTakesPriorityOverReminder(t *testing.T) {
	// A window overlap can only happen with non-default windows.
	user := testUser(model.RoutineConfirm24h, model.RoutineReminder1h)
	w := Windows{
		ConfirmAheadMin: time.Hour,
		ConfirmAheadMax: 4 * time.Hour,
		ReminderAhead:   3 * time.Hour,
		FollowUpBackMin: 23 * time.Hour,
		FollowUpBackMax: 25 * time.Hour,
	}
	appt := scheduledAppt(testNow.Add(2 * time.Hour))

	assert.Equal(t, DecisionConfirmation, Classify(testNow, appt, user, w))
}

func TestClassifyFollowUpWindow(t *testing.T) {
	user := testUser(model.RoutineFollowUp24h)
	w := DefaultWindows()

	tests := []struct {
		name string
		end  time.Time
		want RoutineDecision
	}{
		{"ended 24h ago", testNow.Add(-24 * time.Hour), DecisionFollowUp},
		{"exactly 23h ago is excluded", testNow.Add(-23 * time.Hour), DecisionNone},
		{"exactly 25h ago is excluded", testNow.Add(-25 * time.Hour), DecisionNone},
		{"ended an hour ago", testNow.Add(-time.Hour), DecisionNone},
		{"ended days ago", testNow.Add(-72 * time.Hour), DecisionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appt := &model.Appointment{
				ID:        uuid.New(),
				StartTime: tt.end.Add(-time.Hour),
				EndTime:   tt.end,
				Status:    model.AppointmentStatusAttended,
			}
			assert.Equal(t, tt.want, Classify(testNow, appt, user, w))
		})
	}
}

func TestClassifyFollowUpRequiresAttendedWithoutFlag(t *testing.T) {
	user := testUser(model.RoutineFollowUp24h)
	w := DefaultWindows()

	appt := &model.Appointment{
		ID:           uuid.New(),
		StartTime:    testNow.Add(-25 * time.Hour),
		EndTime:      testNow.Add(-24 * time.Hour),
		Status:       model.AppointmentStatusAttended,
		FollowUpSent: true,
	}
	assert.Equal(t, DecisionNone, Classify(testNow, appt, user, w))

	for _, status := range []model.AppointmentStatus{
		model.AppointmentStatusNoShow,
		model.AppointmentStatusCancelledByClient,
		model.AppointmentStatusScheduled,
	} {
		appt := &model.Appointment{
			ID:        uuid.New(),
			StartTime: testNow.Add(-25 * time.Hour),
			EndTime:   testNow.Add(-24 * time.Hour),
			Status:    status,
		}
		assert.Equal(t, DecisionNone, Classify(testNow, appt, user, w), "status %s", status)
	}
}
