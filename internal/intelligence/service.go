package intelligence

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/massaflow/practice-api/internal/analytics"
	"github.com/massaflow/practice-api/internal/model"
	"github.com/massaflow/practice-api/internal/repository"
	"github.com/massaflow/practice-api/pkg/logger"
	"github.com/massaflow/practice-api/pkg/metrics"
)

const (
	DefaultLowAttendanceThreshold            = 0.6
	DefaultMinAppointmentsForAttendanceAlert = 5
)

// Config tunes the intelligence engine. Zero values fall back to the
// documented defaults; DedupeTasks defaults to off, matching the original
// behavior of re-emitting a task on every check.
type Config struct {
	Risk                              RiskConfig
	LowAttendanceThreshold            float64
	MinAppointmentsForAttendanceAlert int
	DedupeTasks                       bool
}

func (c Config) withDefaults() Config {
	c.Risk = c.Risk.withDefaults()
	if c.LowAttendanceThreshold == 0 {
		c.LowAttendanceThreshold = DefaultLowAttendanceThreshold
	}
	if c.MinAppointmentsForAttendanceAlert == 0 {
		c.MinAppointmentsForAttendanceAlert = DefaultMinAppointmentsForAttendanceAlert
	}
	return c
}

type Service struct {
	store     *repository.Store
	clock     repository.Clock
	cfg       Config
	logger    *logger.Logger
	analytics analytics.Sink
	metrics   *metrics.Metrics
}

func NewService(store *repository.Store, clock repository.Clock, cfg Config, log *logger.Logger, sink analytics.Sink, m *metrics.Metrics) *Service {
	return &Service{
		store:     store,
		clock:     clock,
		cfg:       cfg.withDefaults(),
		logger:    log.WithComponent("intelligence"),
		analytics: sink,
		metrics:   m,
	}
}

// HighRiskClients scores every client of the user and returns those with a
// high cancellation risk.
func (s *Service) HighRiskClients(ctx context.Context, userID uuid.UUID) ([]*model.ClientRisk, error) {
	clients, err := s.store.Clients.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	appointments, err := s.store.Appointments.List(ctx, &model.AppointmentFilters{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	highRisk := IdentifyHighRiskClients(clients, appointments, s.cfg.Risk)
	s.logger.Debug("high cancellation risk identification completed",
		"user_id", userID.String(), "clients", len(clients), "high_risk", len(highRisk))
	return highRisk, nil
}

// ClientHealth computes the health score of one client of the user.
func (s *Service) ClientHealth(ctx context.Context, userID, clientID uuid.UUID) (*model.ClientHealth, error) {
	client, err := s.store.Clients.Get(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if client.UserID != userID {
		return nil, repository.ErrNotFound
	}

	appointments, err := s.store.Appointments.List(ctx, &model.AppointmentFilters{UserID: userID, ClientID: clientID})
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	return ScoreClientHealth(client, appointments, s.clock.Now()), nil
}

// Dashboard aggregates the user's dashboard metrics.
func (s *Service) Dashboard(ctx context.Context, userID uuid.UUID) (*model.DashboardMetrics, error) {
	appointments, err := s.store.Appointments.List(ctx, &model.AppointmentFilters{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	logs, err := s.store.CommunicationLogs.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list communication logs: %w", err)
	}
	return DashboardMetrics(appointments, logs), nil
}
