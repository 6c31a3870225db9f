package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/massaflow/practice-api/internal/model"
	"github.com/massaflow/practice-api/internal/repository"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// userRow flattens the JSON columns for scanning.
type userRow struct {
	ID               uuid.UUID      `db:"id"`
	Name             string         `db:"name"`
	Phone            sql.NullString `db:"phone"`
	PracticeType     string         `db:"practice_type"`
	Routines         pq.StringArray `db:"activated_routines"`
	Tools            []byte         `db:"tools"`
	PreferredChannel string         `db:"preferred_channel"`
	CreatedAt        sql.NullTime   `db:"created_at"`
	UpdatedAt        sql.NullTime   `db:"updated_at"`
}

func (row *userRow) toModel() (*model.User, error) {
	u := &model.User{
		ID:               row.ID,
		Name:             row.Name,
		Phone:            row.Phone.String,
		PracticeType:     model.PracticeType(row.PracticeType),
		PreferredChannel: model.CommunicationChannel(row.PreferredChannel),
		CreatedAt:        row.CreatedAt.Time,
		UpdatedAt:        row.UpdatedAt.Time,
	}
	for _, r := range row.Routines {
		u.ActivatedRoutines = append(u.ActivatedRoutines, model.RoutineID(r))
	}
	if len(row.Tools) > 0 {
		if err := json.Unmarshal(row.Tools, &u.Tools); err != nil {
			return nil, fmt.Errorf("failed to decode tools: %w", err)
		}
	}
	return u, nil
}

func routineStrings(routines []model.RoutineID) pq.StringArray {
	out := make(pq.StringArray, 0, len(routines))
	for _, r := range routines {
		out = append(out, string(r))
	}
	return out
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	tools, err := json.Marshal(user.Tools)
	if err != nil {
		return fmt.Errorf("failed to encode tools: %w", err)
	}
	query := `
		INSERT INTO users (
			id, name, phone, practice_type, activated_routines,
			tools, preferred_channel, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Phone,
		user.PracticeType,
		routineStrings(user.ActivatedRoutines),
		tools,
		user.PreferredChannel,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		SELECT id, name, phone, practice_type, activated_routines,
			   tools, preferred_channel, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return row.toModel()
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	tools, err := json.Marshal(user.Tools)
	if err != nil {
		return fmt.Errorf("failed to encode tools: %w", err)
	}
	query := `
		UPDATE users
		SET name = $1, phone = $2, practice_type = $3, activated_routines = $4,
			tools = $5, preferred_channel = $6, updated_at = NOW()
		WHERE id = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		user.Name,
		user.Phone,
		user.PracticeType,
		routineStrings(user.ActivatedRoutines),
		tools,
		user.PreferredChannel,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
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

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	query := `
		SELECT id, name, phone, practice_type, activated_routines,
			   tools, preferred_channel, created_at, updated_at
		FROM users
		ORDER BY created_at
	`
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]*model.User, 0, len(rows))
	for i := range rows {
		u, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}
