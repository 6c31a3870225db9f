package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/massaflow/practice-api/internal/model"
)

// Seed populates the store with a small demo data set: one practice per
// practice type, a handful of clients, and appointments positioned inside
// each automation window relative to now. Dev mode only.
func Seed(ctx context.Context, s *Store, now time.Time) error {
	repos := s.Repositories()

	independent := &model.User{
		ID:           uuid.New(),
		Name:         "Maria Masso",
		PracticeType: model.PracticeTypeIndependent,
		ActivatedRoutines: []model.RoutineID{
			model.RoutineConfirm24h, model.RoutineReminder1h, model.RoutineFollowUp24h,
		},
		Tools:            map[string]model.ToolConnection{"calendar": {Connected: true, ExternalID: "primary"}},
		PreferredChannel: model.ChannelEmail,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	clinic := &model.User{
		ID:           uuid.New(),
		Name:         "Wellness Clinic",
		PracticeType: model.PracticeTypeClinic,
		ActivatedRoutines: []model.RoutineID{
			model.RoutineConfirm24h, model.RoutineReminder1h,
		},
		Tools:            map[string]model.ToolConnection{"calendar": {Connected: true, ExternalID: "clinic@example.com"}},
		PreferredChannel: model.ChannelEmail,
		CreatedAt:        now.Add(time.Second),
		UpdatedAt:        now,
	}
	spa := &model.User{
		ID:           uuid.New(),
		Name:         "Oasis Spa",
		PracticeType: model.PracticeTypeSpa,
		ActivatedRoutines: []model.RoutineID{
			model.RoutineConfirm24h, model.RoutineReminder1h, model.RoutineFollowUp24h,
		},
		PreferredChannel: model.ChannelEmail,
		CreatedAt:        now.Add(2 * time.Second),
		UpdatedAt:        now,
	}
	for _, u := range []*model.User{independent, clinic, spa} {
		if err := repos.Users.Create(ctx, u); err != nil {
			return err
		}
	}

	clients := []*model.Client{
		{ID: uuid.New(), UserID: independent.ID, Name: "Joao Silva", Email: "joao.silva@example.com", Phone: "5511999998888", CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), UserID: independent.ID, Name: "Ana Pereira", Email: "ana.pereira@example.com", Phone: "5511999997777", CreatedAt: now.Add(time.Second), UpdatedAt: now},
		{ID: uuid.New(), UserID: clinic.ID, Name: "Carlos Souza", Email: "carlos.souza@example.com", Phone: "5521988887777", CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), UserID: spa.ID, Name: "Sofia Loren", Email: "sofia.loren@example.com", Phone: "5531977776666", CreatedAt: now, UpdatedAt: now},
	}
	for _, c := range clients {
		if err := repos.Clients.Create(ctx, c); err != nil {
			return err
		}
	}

	tomorrow := now.Add(30 * time.Hour)
	inOneHour := now.Add(time.Hour)
	yesterday := now.Add(-24 * time.Hour)

	appts := []*model.Appointment{
		{ID: uuid.New(), UserID: independent.ID, ClientID: clients[0].ID, ServiceName: "Relaxing Massage",
			StartTime: tomorrow, EndTime: tomorrow.Add(time.Hour), Status: model.AppointmentStatusScheduled},
		{ID: uuid.New(), UserID: independent.ID, ClientID: clients[1].ID, ServiceName: "Hot Stone Therapy",
			StartTime: inOneHour, EndTime: inOneHour.Add(90 * time.Minute), Status: model.AppointmentStatusScheduled, Confirmed: true},
		{ID: uuid.New(), UserID: independent.ID, ClientID: clients[0].ID, ServiceName: "Sports Massage",
			StartTime: yesterday, EndTime: yesterday.Add(time.Hour), Status: model.AppointmentStatusAttended, Confirmed: true},
		{ID: uuid.New(), UserID: clinic.ID, ClientID: clients[2].ID, ServiceName: "Skin Cleansing",
			StartTime: tomorrow, EndTime: tomorrow.Add(75 * time.Minute), Status: model.AppointmentStatusScheduled},
		{ID: uuid.New(), UserID: clinic.ID, ClientID: clients[2].ID, ServiceName: "Lymphatic Drainage",
			StartTime: inOneHour, EndTime: inOneHour.Add(50 * time.Minute), Status: model.AppointmentStatusScheduled, Confirmed: true},
		{ID: uuid.New(), UserID: spa.ID, ClientID: clients[3].ID, ServiceName: "Full Day Spa",
			StartTime: tomorrow, EndTime: tomorrow.Add(4 * time.Hour), Status: model.AppointmentStatusScheduled},
		{ID: uuid.New(), UserID: spa.ID, ClientID: clients[3].ID, ServiceName: "Swedish Massage",
			StartTime: yesterday, EndTime: yesterday.Add(time.Hour), Status: model.AppointmentStatusAttended, Confirmed: true},
	}
	for _, a := range appts {
		a.CreatedAt = now
		a.UpdatedAt = now
		if err := repos.Appointments.Create(ctx, a); err != nil {
			return err
		}
	}
	return nil
}
