package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func statusPtr(s AppointmentStatus) *AppointmentStatus { return &s }
func boolPtr(b bool) *bool                             { return &b }

func TestValidateTransitionScheduled(t *testing.T) {
	appt := &Appointment{ID: uuid.New(), Status: AppointmentStatusScheduled}

	assert.NoError(t, appt.ValidateTransition(&AppointmentPatch{Status: statusPtr(AppointmentStatusAttended)}))
	assert.NoError(t, appt.ValidateTransition(&AppointmentPatch{Status: statusPtr(AppointmentStatusNoShow)}))
	assert.NoError(t, appt.ValidateTransition(&AppointmentPatch{Status: statusPtr(AppointmentStatusCancelledByClient)}))
	assert.NoError(t, appt.ValidateTransition(&AppointmentPatch{Confirmed: boolPtr(true)}))
}

func TestValidateTransitionTerminalImmutable(t *testing.T) {
	for _, status := range []AppointmentStatus{
		AppointmentStatusAttended,
		AppointmentStatusNoShow,
		AppointmentStatusCancelledByClient,
	} {
		appt := &Appointment{ID: uuid.New(), Status: status}

		assert.Error(t, appt.ValidateTransition(&AppointmentPatch{Status: statusPtr(AppointmentStatusScheduled)}), "from %s", status)
		assert.Error(t, appt.ValidateTransition(&AppointmentPatch{Confirmed: boolPtr(true)}), "confirm while %s", status)
		// Same-status patches stay legal.
		assert.NoError(t, appt.ValidateTransition(&AppointmentPatch{Status: statusPtr(status)}))
	}
}

func TestValidateTransitionFollowUpFlagOnTerminal(t *testing.T) {
	appt := &Appointment{ID: uuid.New(), Status: AppointmentStatusAttended}

	assert.NoError(t, appt.ValidateTransition(&AppointmentPatch{FollowUpSent: boolPtr(true)}))
}

func TestTerminal(t *testing.T) {
	assert.False(t, AppointmentStatusScheduled.Terminal())
	assert.True(t, AppointmentStatusAttended.Terminal())
	assert.True(t, AppointmentStatusNoShow.Terminal())
	assert.True(t, AppointmentStatusCancelledByClient.Terminal())
}

func TestValidTaskTransition(t *testing.T) {
	assert.True(t, ValidTaskTransition(TaskStatusNew, TaskStatusRead))
	assert.True(t, ValidTaskTransition(TaskStatusNew, TaskStatusArchived))
	assert.True(t, ValidTaskTransition(TaskStatusRead, TaskStatusArchived))
	assert.True(t, ValidTaskTransition(TaskStatusRead, TaskStatusRead))
	assert.False(t, ValidTaskTransition(TaskStatusRead, TaskStatusNew))
	assert.False(t, ValidTaskTransition(TaskStatusArchived, TaskStatusRead))
	assert.False(t, ValidTaskTransition(TaskStatusArchived, TaskStatusNew))
}
