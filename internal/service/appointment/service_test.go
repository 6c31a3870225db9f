package appointment

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/massaflow/practice-api/internal/analytics"
	"github.com/massaflow/practice-api/internal/intelligence"
	"github.com/massaflow/practice-api/internal/model"
	"github.com/massaflow/practice-api/internal/repository"
	"github.com/massaflow/practice-api/internal/repository/memory"
	"github.com/massaflow/practice-api/pkg/logger"
	"github.com/massaflow/practice-api/pkg/metrics"
)

var bookNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newService(t *testing.T) (*Service, *repository.Store) {
	t.Helper()
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	store := memory.NewStore().Repositories()
	m := metrics.NewWith(prometheus.NewRegistry(), "appt_test")
	intel := intelligence.NewService(store, fixedClock{bookNow}, intelligence.Config{}, log, analytics.NopSink{}, m)
	return NewService(store, intel, fixedClock{bookNow}, analytics.NopSink{}, log), store
}

func seedUserAndClient(t *testing.T, store *repository.Store) (*model.User, *model.Client) {
	t.Helper()
	ctx := context.Background()
	user := &model.User{ID: uuid.New(), Name: "Ana Silva"}
	require.NoError(t, store.Users.Create(ctx, user))
	client := &model.Client{ID: uuid.New(), UserID: user.ID, Name: "Bruno Costa"}
	require.NoError(t, store.Clients.Create(ctx, client))
	return user, client
}

func TestCreateAppointment(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)
	user, client := seedUserAndClient(t, store)

	appt, err := svc.CreateAppointment(ctx, &model.CreateAppointmentRequest{
		UserID:      user.ID.String(),
		ClientID:    client.ID.String(),
		ServiceName: "Deep Tissue Massage",
		StartTime:   bookNow.Add(30 * time.Hour),
		EndTime:     bookNow.Add(31 * time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusScheduled, appt.Status)
	assert.False(t, appt.Confirmed)
	assert.False(t, appt.FollowUpSent)

	stored, err := store.Appointments.Get(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, appt.ID, stored.ID)
}

func TestCreateAppointmentRejectsForeignClient(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)
	user, _ := seedUserAndClient(t, store)
	_, otherClient := seedUserAndClient(t, store)

	_, err := svc.CreateAppointment(ctx, &model.CreateAppointmentRequest{
		UserID:      user.ID.String(),
		ClientID:    otherClient.ID.String(),
		ServiceName: "Deep Tissue Massage",
		StartTime:   bookNow.Add(30 * time.Hour),
		EndTime:     bookNow.Add(31 * time.Hour),
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateAppointmentRejectsInvertedTimes(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)
	user, client := seedUserAndClient(t, store)

	_, err := svc.CreateAppointment(ctx, &model.CreateAppointmentRequest{
		UserID:      user.ID.String(),
		ClientID:    client.ID.String(),
		ServiceName: "Deep Tissue Massage",
		StartTime:   bookNow.Add(31 * time.Hour),
		EndTime:     bookNow.Add(30 * time.Hour),
	})
	assert.Error(t, err)
}

func TestCreateAppointmentSurfacesRiskTask(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)
	user, client := seedUserAndClient(t, store)

	for i := 0; i < 2; i++ {
		start := bookNow.Add(-time.Duration(i+1) * 24 * time.Hour)
		require.NoError(t, store.Appointments.Create(ctx, &model.Appointment{
			ID:        uuid.New(),
			UserID:    user.ID,
			ClientID:  client.ID,
			StartTime: start,
			EndTime:   start.Add(time.Hour),
			Status:    model.AppointmentStatusCancelledByClient,
		}))
	}
	start := bookNow.Add(-72 * time.Hour)
	require.NoError(t, store.Appointments.Create(ctx, &model.Appointment{
		ID:        uuid.New(),
		UserID:    user.ID,
		ClientID:  client.ID,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    model.AppointmentStatusAttended,
	}))

	_, err := svc.CreateAppointment(ctx, &model.CreateAppointmentRequest{
		UserID:      user.ID.String(),
		ClientID:    client.ID.String(),
		ServiceName: "Deep Tissue Massage",
		StartTime:   bookNow.Add(30 * time.Hour),
		EndTime:     bookNow.Add(31 * time.Hour),
	})
	require.NoError(t, err)

	tasks, err := store.Tasks.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, model.TaskTypeNoShowRisk, tasks[0].Type)
}

func TestUpdateStatusLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)
	user, client := seedUserAndClient(t, store)

	appt, err := svc.CreateAppointment(ctx, &model.CreateAppointmentRequest{
		UserID:      user.ID.String(),
		ClientID:    client.ID.String(),
		ServiceName: "Deep Tissue Massage",
		StartTime:   bookNow.Add(30 * time.Hour),
		EndTime:     bookNow.Add(31 * time.Hour),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, appt.ID, model.AppointmentStatusAttended)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusAttended, updated.Status)

	// Terminal appointments are immutable.
	_, err = svc.UpdateStatus(ctx, appt.ID, model.AppointmentStatusNoShow)
	assert.Error(t, err)

	stored, err := store.Appointments.Get(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusAttended, stored.Status)
}
