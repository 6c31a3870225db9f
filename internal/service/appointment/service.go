package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/massaflow/practice-api/internal/analytics"
	"github.com/massaflow/practice-api/internal/intelligence"
	"github.com/massaflow/practice-api/internal/model"
	"github.com/massaflow/practice-api/internal/repository"
	"github.com/massaflow/practice-api/pkg/errors"
	"github.com/massaflow/practice-api/pkg/logger"
)

type Service struct {
	store     *repository.Store
	intel     *intelligence.Service
	clock     repository.Clock
	analytics analytics.Sink
	logger    *logger.Logger
}

func NewService(store *repository.Store, intel *intelligence.Service, clock repository.Clock, sink analytics.Sink, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		intel:     intel,
		clock:     clock,
		analytics: sink,
		logger:    log.WithComponent("appointment"),
	}
}

// CreateAppointment books an appointment and immediately re-runs the risk
// computation for the client: a booking is the moment a newly high-risk
// client should surface a task.
func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("invalid client id: %w", err)
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, fmt.Errorf("appointment end must be after start")
	}
	if _, err := s.store.Users.Get(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	client, err := s.store.Clients.Get(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve client: %w", err)
	}
	if client.UserID != userID {
		return nil, repository.ErrNotFound
	}

	now := s.clock.Now()
	appt := &model.Appointment{
		ID:          uuid.New(),
		UserID:      userID,
		ClientID:    clientID,
		ServiceName: req.ServiceName,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      model.AppointmentStatusScheduled,
		BaseRevenue: req.BaseRevenue,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Appointments.Create(ctx, appt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.analytics.Track("appointment_created", map[string]interface{}{
		"service": appt.ServiceName,
	}, userID.String())

	if err := s.intel.EvaluateBookingRisk(ctx, appt); err != nil {
		// risk evaluation is advisory; the booking stands
		s.logger.Error(err, "post-booking risk evaluation failed", "appointment_id", appt.ID.String())
	}

	return appt, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.store.Appointments.Get(ctx, id)
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return s.store.Appointments.List(ctx, filters)
}

// UpdateStatus applies a lifecycle transition. Terminal appointments are
// immutable; the repository enforces this a second time under its lock.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	appt, err := s.store.Appointments.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := &model.AppointmentPatch{Status: &status}
	if err := appt.ValidateTransition(patch); err != nil {
		return nil, errors.BadRequest(err.Error(), err)
	}

	updated, err := s.store.Appointments.Patch(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}
	return updated, nil
}
