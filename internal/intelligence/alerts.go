package intelligence

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/massaflow/practice-api/internal/model"
)

// relatedEntityID for attendance alerts; one generic key per user rather
// than per appointment.
const attendanceMetricEntity = "dashboard_metric_attendance"

// CheckMetricsAndGenerateAlerts inspects the user's aggregate metrics and
// emits alert tasks for the ones below threshold. Without DedupeTasks a
// repeated check with unchanged metrics re-emits the task every time,
// matching the original behavior.
func (s *Service) CheckMetricsAndGenerateAlerts(ctx context.Context, userID uuid.UUID) error {
	appointments, err := s.store.Appointments.List(ctx, &model.AppointmentFilters{UserID: userID})
	if err != nil {
		return fmt.Errorf("failed to list appointments: %w", err)
	}

	relevant := RelevantAppointments(appointments)
	if relevant < s.cfg.MinAppointmentsForAttendanceAlert {
		return nil
	}

	rate := AttendanceRate(appointments)
	if rate >= s.cfg.LowAttendanceThreshold {
		return nil
	}

	message := fmt.Sprintf(
		"Attention: your attendance rate is at %.0f%% over your last %d relevant appointments. Consider reviewing your confirmation routines or how you communicate with clients.",
		rate*100, relevant,
	)
	task := &model.TherapistTask{
		UserID:          userID,
		Type:            model.TaskTypeLowAttendanceRate,
		Message:         message,
		RelatedEntityID: attendanceMetricEntity,
	}
	return s.createTask(ctx, task)
}

// EvaluateBookingRisk re-runs the risk computation for the booked client.
// Called after every appointment creation so a client crossing the risk
// threshold surfaces a task immediately.
func (s *Service) EvaluateBookingRisk(ctx context.Context, appt *model.Appointment) error {
	client, err := s.store.Clients.Get(ctx, appt.ClientID)
	if err != nil {
		return fmt.Errorf("failed to get client: %w", err)
	}

	appointments, err := s.store.Appointments.List(ctx, &model.AppointmentFilters{UserID: appt.UserID, ClientID: appt.ClientID})
	if err != nil {
		return fmt.Errorf("failed to list appointments: %w", err)
	}

	risk, ok := ScoreClientRisk(client, appointments, s.cfg.Risk)
	if !ok {
		return nil
	}

	message := fmt.Sprintf(
		"High no-show risk: %s cancelled %.0f%% of their last %d appointments. A personal confirmation call may help.",
		client.Name, risk.CancellationRate*100, risk.RelevantTotal,
	)
	clientID := client.ID
	task := &model.TherapistTask{
		UserID:          appt.UserID,
		Type:            model.TaskTypeNoShowRisk,
		Message:         message,
		RelatedEntityID: client.ID.String(),
		ClientID:        &clientID,
	}
	return s.createTask(ctx, task)
}

func (s *Service) createTask(ctx context.Context, task *model.TherapistTask) error {
	if s.cfg.DedupeTasks {
		exists, err := s.store.Tasks.ExistsOpen(ctx, task.UserID, task.Type, task.RelatedEntityID)
		if err != nil {
			return fmt.Errorf("failed to check open tasks: %w", err)
		}
		if exists {
			s.logger.Debug("suppressed duplicate task",
				"user_id", task.UserID.String(), "type", string(task.Type))
			return nil
		}
	}

	now := s.clock.Now()
	task.ID = uuid.New()
	task.Status = model.TaskStatusNew
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := s.store.Tasks.Create(ctx, task); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	s.metrics.TasksCreated.WithLabelValues(string(task.Type)).Inc()
	s.analytics.Track("task_created", map[string]interface{}{
		"type":              string(task.Type),
		"related_entity_id": task.RelatedEntityID,
	}, task.UserID.String())

	s.logger.Info("therapist task created",
		"user_id", task.UserID.String(), "type", string(task.Type))
	return nil
}
