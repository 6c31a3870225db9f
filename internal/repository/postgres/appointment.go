package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/massaflow/practice-api/internal/model"
	"github.com/massaflow/practice-api/internal/repository"
)

type appointmentRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

const appointmentColumns = `
	id, user_id, client_id, service_name, start_time, end_time,
	status, confirmed, follow_up_sent, base_revenue, created_at, updated_at
`

func (r *appointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	query := `
		INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		appt.ID,
		appt.UserID,
		appt.ClientID,
		appt.ServiceName,
		appt.StartTime,
		appt.EndTime,
		appt.Status,
		appt.Confirmed,
		appt.FollowUpSent,
		appt.BaseRevenue,
		appt.CreatedAt,
		appt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	var appt model.Appointment
	if err := r.db.GetContext(ctx, &appt, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appt, nil
}

// Patch applies the mutation with compare-and-swap guards so that two
// concurrent cycles cannot both flip the same flag: setting confirmed
// requires status=scheduled and confirmed=false in the same statement,
// setting follow_up_sent requires it still unset.
func (r *appointmentRepository) Patch(ctx context.Context, id uuid.UUID, patch *model.AppointmentPatch) (*model.Appointment, error) {
	sets := []string{"updated_at = NOW()"}
	guards := []string{"id = $1"}
	args := []interface{}{id}

	if patch.Status != nil {
		args = append(args, *patch.Status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
		// terminal statuses are immutable
		guards = append(guards, "status = 'scheduled'")
	}
	if patch.Confirmed != nil {
		args = append(args, *patch.Confirmed)
		sets = append(sets, fmt.Sprintf("confirmed = $%d", len(args)))
		if *patch.Confirmed {
			guards = append(guards, "status = 'scheduled'", "confirmed = FALSE")
		}
	}
	if patch.FollowUpSent != nil {
		args = append(args, *patch.FollowUpSent)
		sets = append(sets, fmt.Sprintf("follow_up_sent = $%d", len(args)))
		if *patch.FollowUpSent {
			guards = append(guards, "follow_up_sent = FALSE")
		}
	}

	query := `UPDATE appointments SET ` + strings.Join(sets, ", ") +
		` WHERE ` + strings.Join(guards, " AND ") +
		` RETURNING ` + appointmentColumns

	var appt model.Appointment
	if err := r.db.GetContext(ctx, &appt, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// distinguish a missing row from a lost CAS race
			if _, getErr := r.Get(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("failed to patch appointment: %w", err)
	}
	return &appt, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	var args []interface{}

	if filters != nil {
		if filters.UserID != uuid.Nil {
			args = append(args, filters.UserID)
			query += fmt.Sprintf(" AND user_id = $%d", len(args))
		}
		if filters.ClientID != uuid.Nil {
			args = append(args, filters.ClientID)
			query += fmt.Sprintf(" AND client_id = $%d", len(args))
		}
		if filters.Status != "" {
			args = append(args, filters.Status)
			query += fmt.Sprintf(" AND status = $%d", len(args))
		}
	}
	query += " ORDER BY start_time"

	var appts []*model.Appointment
	if err := r.db.SelectContext(ctx, &appts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appts, nil
}
