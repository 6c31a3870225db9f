package task

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/massaflow/practice-api/internal/model"
	"github.com/massaflow/practice-api/internal/repository"
	"github.com/massaflow/practice-api/pkg/errors"
)

type Service struct {
	store *repository.Store
}

func NewService(store *repository.Store) *Service {
	return &Service{store: store}
}

func (s *Service) ListTasks(ctx context.Context, userID uuid.UUID) ([]*model.TherapistTask, error) {
	return s.store.Tasks.List(ctx, userID)
}

// UpdateStatus advances a task along new → read → archived. Moving
// backwards is rejected.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.TaskStatus) (*model.TherapistTask, error) {
	t, err := s.store.Tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !model.ValidTaskTransition(t.Status, status) {
		return nil, errors.BadRequest(
			fmt.Sprintf("task cannot move from %s to %s", t.Status, status), nil)
	}
	if err := s.store.Tasks.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.store.Tasks.Get(ctx, id)
}
