package intelligence

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
	"github.com/massaflow/practice-api/internal/model"
	"github.com/massaflow/practice-api/internal/repository"
	"github.com/massaflow/practice-api/internal/repository/memory"
	"github.com/massaflow/practice-api/pkg/logger"
	"github.com/massaflow/practice-api/pkg/metrics"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestService(t *testing.T, cfg Config) (*Service, *repository.Store) {
	t.Helper()
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	store := memory.NewStore().Repositories()
	m := metrics.NewWith(prometheus.NewRegistry(), "intel_test")
	return NewService(store, fixedClock{scoreNow}, cfg, log, analytics.NopSink{}, m), store
}

func seedUserWithHistory(t *testing.T, store *repository.Store, attended, noShow int) (*model.User, *model.Client) {
	t.Helper()
	ctx := context.Background()

	user := &model.User{ID: uuid.New(), Name: "Ana Silva", PracticeType: model.PracticeTypeIndependent}
	require.NoError(t, store.Users.Create(ctx, user))

	client := &model.Client{ID: uuid.New(), UserID: user.ID, Name: "Bruno Costa"}
	require.NoError(t, store.Clients.Create(ctx, client))

	day := 1
	add := func(status model.AppointmentStatus) {
		start := scoreNow.Add(-time.Duration(day) * 24 * time.Hour)
		day++
		require.NoError(t, store.Appointments.Create(ctx, &model.Appointment{
			ID:        uuid.New(),
			UserID:    user.ID,
			ClientID:  client.ID,
			StartTime: start,
			EndTime:   start.Add(time.Hour),
			Status:    status,
		}))
	}
	for i := 0; i < attended; i++ {
		add(model.AppointmentStatusAttended)
	}
	for i := 0; i < noShow; i++ {
		add(model.AppointmentStatusNoShow)
	}
	return user, client
}

func TestCheckMetricsGeneratesLowAttendanceAlert(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, Config{})
	user, _ := seedUserWithHistory(t, store, 2, 3) // 40% over 5 relevant

	require.NoError(t, svc.CheckMetricsAndGenerateAlerts(ctx, user.ID))

	tasks, err := store.Tasks.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, model.TaskTypeLowAttendanceRate, tasks[0].Type)
	assert.Equal(t, model.TaskStatusNew, tasks[0].Status)
	assert.Contains(t, tasks[0].Message, "40%")
	assert.Contains(t, tasks[0].Message, "5 relevant")
}

func TestCheckMetricsReemitsWithoutDedupe(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, Config{})
	user, _ := seedUserWithHistory(t, store, 2, 3)

	require.NoError(t, svc.CheckMetricsAndGenerateAlerts(ctx, user.ID))
	require.NoError(t, svc.CheckMetricsAndGenerateAlerts(ctx, user.ID))

	tasks, err := store.Tasks.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestCheckMetricsDedupeSuppressesOpenDuplicate(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, Config{DedupeTasks: true})
	user, _ := seedUserWithHistory(t, store, 2, 3)

	require.NoError(t, svc.CheckMetricsAndGenerateAlerts(ctx, user.ID))
	require.NoError(t, svc.CheckMetricsAndGenerateAlerts(ctx, user.ID))

	tasks, err := store.Tasks.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	// Archiving reopens the signal.
	require.NoError(t, store.Tasks.UpdateStatus(ctx, tasks[0].ID, model.TaskStatusArchived))
	require.NoError(t, svc.CheckMetricsAndGenerateAlerts(ctx, user.ID))
	tasks, err = store.Tasks.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestCheckMetricsSkipsSmallSample(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, Config{})
	user, _ := seedUserWithHistory(t, store, 1, 3) // 25% but only 4 relevant

	require.NoError(t, svc.CheckMetricsAndGenerateAlerts(ctx, user.ID))

	tasks, err := store.Tasks.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCheckMetricsSkipsHealthyRate(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, Config{})
	user, _ := seedUserWithHistory(t, store, 4, 2) // ~67%

	require.NoError(t, svc.CheckMetricsAndGenerateAlerts(ctx, user.ID))

	tasks, err := store.Tasks.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestEvaluateBookingRiskCreatesTask(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, Config{})

	user := &model.User{ID: uuid.New(), Name: "Ana Silva"}
	require.NoError(t, store.Users.Create(ctx, user))
	client := &model.Client{ID: uuid.New(), UserID: user.ID, Name: "Flaky Fernando"}
	require.NoError(t, store.Clients.Create(ctx, client))

	for i, status := range []model.AppointmentStatus{
		model.AppointmentStatusCancelledByClient,
		model.AppointmentStatusCancelledByClient,
		model.AppointmentStatusAttended,
	} {
		start := scoreNow.Add(-time.Duration(i+1) * 24 * time.Hour)
		require.NoError(t, store.Appointments.Create(ctx, &model.Appointment{
			ID:        uuid.New(),
			UserID:    user.ID,
			ClientID:  client.ID,
			StartTime: start,
			EndTime:   start.Add(time.Hour),
			Status:    status,
		}))
	}

	booking := &model.Appointment{UserID: user.ID, ClientID: client.ID}
	require.NoError(t, svc.EvaluateBookingRisk(ctx, booking))

	tasks, err := store.Tasks.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, model.TaskTypeNoShowRisk, tasks[0].Type)
	assert.Equal(t, client.ID.String(), tasks[0].RelatedEntityID)
	require.NotNil(t, tasks[0].ClientID)
	assert.Equal(t, client.ID, *tasks[0].ClientID)
	assert.Contains(t, tasks[0].Message, "Flaky Fernando")
}

func TestEvaluateBookingRiskQuietForSafeClient(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, Config{})
	user, client := seedUserWithHistory(t, store, 5, 0)

	booking := &model.Appointment{UserID: user.ID, ClientID: client.ID}
	require.NoError(t, svc.EvaluateBookingRisk(ctx, booking))

	tasks, err := store.Tasks.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
