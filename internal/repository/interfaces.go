package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/massaflow/practice-api/internal/model"
)

// ErrNotFound is returned by all repositories when a lookup misses.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned by guarded patches when a concurrent writer
// already applied the same mutation.
var ErrConflict = errors.New("already mutated by a concurrent writer")

// All repository interfaces in one file. The orchestrator and the
// intelligence engine depend only on these; storage is an adapter.
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		List(ctx context.Context) ([]*model.User, error)
	}

	ClientRepository interface {
		Create(ctx context.Context, client *model.Client) error
		Get(ctx context.Context, id uuid.UUID) (*model.Client, error)
		UpdateContact(ctx context.Context, id uuid.UUID, email, phone *string) error
		List(ctx context.Context, userID uuid.UUID) ([]*model.Client, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		// Patch applies the given mutations atomically. Implementations
		// must guarantee that two concurrent cycles setting the same flag
		// cannot both observe it unset (compare-and-swap semantics).
		Patch(ctx context.Context, id uuid.UUID, patch *model.AppointmentPatch) (*model.Appointment, error)
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
	}

	CommunicationLogRepository interface {
		Append(ctx context.Context, entry *model.CommunicationLog) error
		List(ctx context.Context, userID uuid.UUID) ([]*model.CommunicationLog, error)
		// LastForAppointment returns the most recent entry for the given
		// appointment and routine, or ErrNotFound. Used for log-based
		// reminder suppression.
		LastForAppointment(ctx context.Context, appointmentID uuid.UUID, routine model.RoutineID) (*model.CommunicationLog, error)
	}

	TaskRepository interface {
		Create(ctx context.Context, task *model.TherapistTask) error
		Get(ctx context.Context, id uuid.UUID) (*model.TherapistTask, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.TaskStatus) error
		List(ctx context.Context, userID uuid.UUID) ([]*model.TherapistTask, error)
		// ExistsOpen reports whether a non-archived task with the same
		// idempotency key already exists. Used by the optional task
		// de-duplication guard.
		ExistsOpen(ctx context.Context, userID uuid.UUID, taskType model.TaskType, relatedEntityID string) (bool, error)
	}
)

// Store bundles every repository behind one handle so wiring stays in one
// place in main.
type Store struct {
	Users             UserRepository
	Clients           ClientRepository
	Appointments      AppointmentRepository
	CommunicationLogs CommunicationLogRepository
	Tasks             TaskRepository
}

// Clock abstracts time so the evaluator and scoring engine never read the
// system clock directly.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
