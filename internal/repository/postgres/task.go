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

type taskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `
	id, user_id, type, message, status, related_entity_id,
	client_id, appointment_id, created_at, updated_at
`

func (r *taskRepository) Create(ctx context.Context, task *model.TherapistTask) error {
	query := `
		INSERT INTO therapist_tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.UserID,
		task.Type,
		task.Message,
		task.Status,
		task.RelatedEntityID,
		task.ClientID,
		task.AppointmentID,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *taskRepository) Get(ctx context.Context, id uuid.UUID) (*model.TherapistTask, error) {
	query := `SELECT ` + taskColumns + ` FROM therapist_tasks WHERE id = $1`
	var task model.TherapistTask
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &task, nil
}

func (r *taskRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.TaskStatus) error {
	query := `UPDATE therapist_tasks SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *taskRepository) List(ctx context.Context, userID uuid.UUID) ([]*model.TherapistTask, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM therapist_tasks
		WHERE user_id = $1
		ORDER BY created_at
	`
	var tasks []*model.TherapistTask
	if err := r.db.SelectContext(ctx, &tasks, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (r *taskRepository) ExistsOpen(ctx context.Context, userID uuid.UUID, taskType model.TaskType, relatedEntityID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM therapist_tasks
			WHERE user_id = $1 AND type = $2 AND related_entity_id = $3
			  AND status != 'archived'
		)
	`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, taskType, relatedEntityID); err != nil {
		return false, fmt.Errorf("failed to check open tasks: %w", err)
	}
	return exists, nil
}
