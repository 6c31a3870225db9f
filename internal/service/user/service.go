package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/massaflow/practice-api/internal/model"
	"github.com/massaflow/practice-api/internal/repository"
)

type Service struct {
	store *repository.Store
	clock repository.Clock
}

func NewService(store *repository.Store, clock repository.Clock) *Service {
	return &Service{store: store, clock: clock}
}

// CreateUser onboards a practice with no routines activated; activation is
// a separate, explicit user action.
func (s *Service) CreateUser(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	now := s.clock.Now()
	channel := model.CommunicationChannel(req.PreferredChannel)
	if channel == "" {
		channel = model.ChannelEmail
	}

	user := &model.User{
		ID:               uuid.New(),
		Name:             req.Name,
		Phone:            req.Phone,
		PracticeType:     req.PracticeType,
		PreferredChannel: channel,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.store.Users.Get(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.store.Users.List(ctx)
}

// UpdateRoutines replaces the activated routine set.
func (s *Service) UpdateRoutines(ctx context.Context, id uuid.UUID, routines []model.RoutineID) (*model.User, error) {
	user, err := s.store.Users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	user.ActivatedRoutines = routines
	user.UpdatedAt = s.clock.Now()
	if err := s.store.Users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user routines: %w", err)
	}
	return user, nil
}
