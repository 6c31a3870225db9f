package postgres

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/massaflow/practice-api/internal/config"
	"github.com/massaflow/practice-api/internal/repository"
)

func NewDB(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// NewStore wires all postgres repositories into the repository bundle.
func NewStore(db *sqlx.DB) *repository.Store {
	return &repository.Store{
		Users:             NewUserRepository(db),
		Clients:           NewClientRepository(db),
		Appointments:      NewAppointmentRepository(db),
		CommunicationLogs: NewCommunicationLogRepository(db),
		Tasks:             NewTaskRepository(db),
	}
}
