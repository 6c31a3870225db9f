package automation

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/massaflow/practice-api/internal/analytics"
	"github.com/massaflow/practice-api/internal/delivery"
	"github.com/massaflow/practice-api/internal/model"
	"github.com/massaflow/practice-api/internal/repository"
	"github.com/massaflow/practice-api/internal/repository/memory"
	"github.com/massaflow/practice-api/internal/template"
	"github.com/massaflow/practice-api/pkg/logger"
	"github.com/massaflow/practice-api/pkg/metrics"
)

// captureSink records every message instead of delivering it.
type captureSink struct {
	mu       sync.Mutex
	messages []delivery.Message
	fail     bool
}

func (s *captureSink) Send(_ context.Context, msg delivery.Message) delivery.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	if s.fail {
		return delivery.Outcome{Err: errors.New("smtp unavailable")}
	}
	return delivery.Outcome{Success: true}
}

func (s *captureSink) sent() []delivery.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]delivery.Message(nil), s.messages...)
}

type fixture struct {
	store *repository.Store
	sink  *captureSink
	eval  *Evaluator
	user  *model.User
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()

	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	store := memory.NewStore().Repositories()
	sink := &captureSink{}
	m := metrics.NewWith(prometheus.NewRegistry(), "test")
	templates := template.NewStore("", log)

	user := &model.User{
		ID:           uuid.New(),
		Name:         "Ana Silva",
		Phone:        "+351910000000",
		PracticeType: model.PracticeTypeIndependent,
		ActivatedRoutines: []model.RoutineID{
			model.RoutineConfirm24h, model.RoutineReminder1h, model.RoutineFollowUp24h,
		},
		PreferredChannel: model.ChannelEmail,
		CreatedAt:        testNow,
	}
	require.NoError(t, store.Users.Create(context.Background(), user))

	return &fixture{
		store: store,
		sink:  sink,
		eval:  NewEvaluator(store, templates, sink, analytics.NopSink{}, log, m, cfg),
		user:  user,
	}
}

func (f *fixture) addClient(t *testing.T, name, email string) *model.Client {
	t.Helper()
	client := &model.Client{
		ID:        uuid.New(),
		UserID:    f.user.ID,
		Name:      name,
		Email:     email,
		CreatedAt: testNow,
	}
	require.NoError(t, f.store.Clients.Create(context.Background(), client))
	return client
}

func (f *fixture) addAppointment(t *testing.T, client *model.Client, start time.Time, status model.AppointmentStatus) *model.Appointment {
	t.Helper()
	appt := &model.Appointment{
		ID:          uuid.New(),
		UserID:      f.user.ID,
		ClientID:    client.ID,
		ServiceName: "Deep Tissue Massage",
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		Status:      status,
	}
	require.NoError(t, f.store.Appointments.Create(context.Background(), appt))
	return appt
}

func TestEvaluateConfirmationFiresOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	client := f.addClient(t, "Bruno Costa", "bruno@example.com")
	appt := f.addAppointment(t, client, testNow.Add(30*time.Hour), model.AppointmentStatusScheduled)

	fired := f.eval.Evaluate(ctx, testNow, appt)
	assert.Equal(t, model.RoutineConfirm24h, fired)

	sent := f.sink.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "bruno@example.com", sent[0].Recipient)
	assert.Contains(t, sent[0].Body, "Bruno Costa")
	assert.NotContains(t, sent[0].Body, "[")

	stored, err := f.store.Appointments.Get(ctx, appt.ID)
	require.NoError(t, err)
	assert.True(t, stored.Confirmed)

	logs, err := f.store.CommunicationLogs.List(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.RoutineConfirm24h, logs[0].Routine)
	assert.Equal(t, model.DeliveryStatusSuccess, logs[0].Status)
	assert.False(t, logs[0].Degraded)

	// The flag set by the first pass keeps the second pass silent.
	fired = f.eval.Evaluate(ctx, testNow, stored)
	assert.Equal(t, model.RoutineID(""), fired)
	assert.Len(t, f.sink.sent(), 1)
}

func TestEvaluateReminderRefiresWithoutSuppression(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	client := f.addClient(t, "Carla Dias", "carla@example.com")
	appt := f.addAppointment(t, client, testNow.Add(time.Hour), model.AppointmentStatusScheduled)

	assert.Equal(t, model.RoutineReminder1h, f.eval.Evaluate(ctx, testNow, appt))
	assert.Equal(t, model.RoutineReminder1h, f.eval.Evaluate(ctx, testNow.Add(5*time.Minute), appt))
	assert.Len(t, f.sink.sent(), 2)
}

func TestEvaluateReminderSuppressionWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{ReminderSuppressionWindow: 2 * time.Hour})
	client := f.addClient(t, "Carla Dias", "carla@example.com")
	appt := f.addAppointment(t, client, testNow.Add(time.Hour), model.AppointmentStatusScheduled)

	assert.Equal(t, model.RoutineReminder1h, f.eval.Evaluate(ctx, testNow, appt))
	assert.Equal(t, model.RoutineID(""), f.eval.Evaluate(ctx, testNow.Add(5*time.Minute), appt))
	assert.Len(t, f.sink.sent(), 1)
}

func TestEvaluateFollowUpSetsFlag(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	client := f.addClient(t, "Diego Luz", "diego@example.com")
	appt := f.addAppointment(t, client, testNow.Add(-25*time.Hour), model.AppointmentStatusAttended)

	assert.Equal(t, model.RoutineFollowUp24h, f.eval.Evaluate(ctx, testNow, appt))

	stored, err := f.store.Appointments.Get(ctx, appt.ID)
	require.NoError(t, err)
	assert.True(t, stored.FollowUpSent)

	sent := f.sink.sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Body, "/feedback?appt=")
}

func TestEvaluateDeliveryFailureStillRecorded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	f.sink.fail = true
	client := f.addClient(t, "Elsa Mota", "elsa@example.com")
	appt := f.addAppointment(t, client, testNow.Add(30*time.Hour), model.AppointmentStatusScheduled)

	assert.Equal(t, model.RoutineConfirm24h, f.eval.Evaluate(ctx, testNow, appt))

	logs, err := f.store.CommunicationLogs.List(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.DeliveryStatusFailed, logs[0].Status)
	assert.Contains(t, logs[0].Error, "smtp unavailable")

	// The flag stays set even when delivery failed; retrying is an
	// operator decision, not an automatic loop.
	stored, err := f.store.Appointments.Get(ctx, appt.ID)
	require.NoError(t, err)
	assert.True(t, stored.Confirmed)
}

func TestEvaluateMissingClientSkips(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	appt := &model.Appointment{
		ID:        uuid.New(),
		UserID:    f.user.ID,
		ClientID:  uuid.New(),
		StartTime: testNow.Add(30 * time.Hour),
		EndTime:   testNow.Add(31 * time.Hour),
		Status:    model.AppointmentStatusScheduled,
	}
	require.NoError(t, f.store.Appointments.Create(ctx, appt))

	assert.Equal(t, model.RoutineID(""), f.eval.Evaluate(ctx, testNow, appt))
	assert.Empty(t, f.sink.sent())

	// The flag must survive the skip so the routine can fire later.
	stored, err := f.store.Appointments.Get(ctx, appt.ID)
	require.NoError(t, err)
	assert.False(t, stored.Confirmed)
}
