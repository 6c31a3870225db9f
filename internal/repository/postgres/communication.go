package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/massaflow/practice-api/internal/model"
	"github.com/massaflow/practice-api/internal/repository"
)

type communicationLogRepository struct {
	db *sqlx.DB
}

func NewCommunicationLogRepository(db *sqlx.DB) repository.CommunicationLogRepository {
	return &communicationLogRepository{db: db}
}

const communicationColumns = `
	id, user_id, client_id, appointment_id, routine, channel,
	recipient, preview, status, error, degraded, sent_at
`

func (r *communicationLogRepository) Append(ctx context.Context, entry *model.CommunicationLog) error {
	query := `
		INSERT INTO communication_logs (` + communicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.ClientID,
		entry.AppointmentID,
		entry.Routine,
		entry.Channel,
		entry.Recipient,
		entry.Preview,
		entry.Status,
		entry.Error,
		entry.Degraded,
		entry.SentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append communication log: %w", err)
	}
	return nil
}

func (r *communicationLogRepository) List(ctx context.Context, userID uuid.UUID) ([]*model.CommunicationLog, error) {
	query := `
		SELECT ` + communicationColumns + `
		FROM communication_logs
		WHERE user_id = $1
		ORDER BY sent_at
	`
	var entries []*model.CommunicationLog
	if err := r.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list communication logs: %w", err)
	}
	return entries, nil
}

func (r *communicationLogRepository) LastForAppointment(ctx context.Context, appointmentID uuid.UUID, routine model.RoutineID) (*model.CommunicationLog, error) {
	query := `
		SELECT ` + communicationColumns + `
		FROM communication_logs
		WHERE appointment_id = $1 AND routine = $2
		ORDER BY sent_at DESC
		LIMIT 1
	`
	var entry model.CommunicationLog
	if err := r.db.GetContext(ctx, &entry, query, appointmentID, routine); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get last communication log: %w", err)
	}
	return &entry, nil
}
