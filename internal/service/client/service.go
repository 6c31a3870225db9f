package client

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

func (s *Service) CreateClient(ctx context.Context, req *model.CreateClientRequest) (*model.Client, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	if _, err := s.store.Users.Get(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	now := s.clock.Now()
	client := &model.Client{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Clients.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

func (s *Service) GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	return s.store.Clients.Get(ctx, id)
}

func (s *Service) ListClients(ctx context.Context, userID uuid.UUID) ([]*model.Client, error) {
	return s.store.Clients.List(ctx, userID)
}

// UpdateContact mutates the only mutable part of a client.
func (s *Service) UpdateContact(ctx context.Context, id uuid.UUID, req *model.UpdateClientContactRequest) (*model.Client, error) {
	if err := s.store.Clients.UpdateContact(ctx, id, req.Email, req.Phone); err != nil {
		return nil, err
	}
	return s.store.Clients.Get(ctx, id)
}
