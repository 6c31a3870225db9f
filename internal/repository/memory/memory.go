// Package memory provides in-memory implementations of the repository
// interfaces. It backs tests and dev mode; production deployments use the
// postgres package.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/massaflow/practice-api/internal/model"
	"github.com/massaflow/practice-api/internal/repository"
)

// Store holds every collection behind one RWMutex. Reads during a cycle
// take a snapshot; mutations lock briefly per entity.
type Store struct {
	mu           sync.RWMutex
	users        map[uuid.UUID]*model.User
	clients      map[uuid.UUID]*model.Client
	appointments map[uuid.UUID]*model.Appointment
	logs         []*model.CommunicationLog
	tasks        map[uuid.UUID]*model.TherapistTask
}

func NewStore() *Store {
	return &Store{
		users:        make(map[uuid.UUID]*model.User),
		clients:      make(map[uuid.UUID]*model.Client),
		appointments: make(map[uuid.UUID]*model.Appointment),
		tasks:        make(map[uuid.UUID]*model.TherapistTask),
	}
}

// Repositories returns the store wrapped as the repository bundle.
func (s *Store) Repositories() *repository.Store {
	return &repository.Store{
		Users:             &userRepo{s},
		Clients:           &clientRepo{s},
		Appointments:      &appointmentRepo{s},
		CommunicationLogs: &communicationLogRepo{s},
		Tasks:             &taskRepo{s},
	}
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *userRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) Update(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *userRepo) List(_ context.Context) ([]*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type clientRepo struct{ s *Store }

func (r *clientRepo) Create(_ context.Context, client *model.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *client
	r.s.clients[client.ID] = &cp
	return nil
}

func (r *clientRepo) Get(_ context.Context, id uuid.UUID) (*model.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.clients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *clientRepo) UpdateContact(_ context.Context, id uuid.UUID, email, phone *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[id]
	if !ok {
		return repository.ErrNotFound
	}
	if email != nil {
		c.Email = *email
	}
	if phone != nil {
		c.Phone = *phone
	}
	c.UpdatedAt = time.Now()
	return nil
}

func (r *clientRepo) List(_ context.Context, userID uuid.UUID) ([]*model.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*model.Client
	for _, c := range r.s.clients {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type appointmentRepo struct{ s *Store }

func (r *appointmentRepo) Create(_ context.Context, appt *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *appt
	r.s.appointments[appt.ID] = &cp
	return nil
}

func (r *appointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// Patch applies the mutation under the write lock, re-validating the
// lifecycle against the stored row so a stale snapshot cannot double-fire.
func (r *appointmentRepo) Patch(_ context.Context, id uuid.UUID, patch *model.AppointmentPatch) (*model.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if err := a.ValidateTransition(patch); err != nil {
		return nil, err
	}
	// flag CAS: a set flag means a concurrent cycle won the race
	if patch.Confirmed != nil && *patch.Confirmed && a.Confirmed {
		return nil, repository.ErrConflict
	}
	if patch.FollowUpSent != nil && *patch.FollowUpSent && a.FollowUpSent {
		return nil, repository.ErrConflict
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	if patch.Confirmed != nil {
		a.Confirmed = *patch.Confirmed
	}
	if patch.FollowUpSent != nil {
		a.FollowUpSent = *patch.FollowUpSent
	}
	a.UpdatedAt = time.Now()
	cp := *a
	return &cp, nil
}

func (r *appointmentRepo) List(_ context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*model.Appointment
	for _, a := range r.s.appointments {
		if filters != nil {
			if filters.UserID != uuid.Nil && a.UserID != filters.UserID {
				continue
			}
			if filters.ClientID != uuid.Nil && a.ClientID != filters.ClientID {
				continue
			}
			if filters.Status != "" && a.Status != filters.Status {
				continue
			}
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

type communicationLogRepo struct{ s *Store }

func (r *communicationLogRepo) Append(_ context.Context, entry *model.CommunicationLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *entry
	r.s.logs = append(r.s.logs, &cp)
	return nil
}

func (r *communicationLogRepo) List(_ context.Context, userID uuid.UUID) ([]*model.CommunicationLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*model.CommunicationLog
	for _, l := range r.s.logs {
		if l.UserID == userID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *communicationLogRepo) LastForAppointment(_ context.Context, appointmentID uuid.UUID, routine model.RoutineID) (*model.CommunicationLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := len(r.s.logs) - 1; i >= 0; i-- {
		l := r.s.logs[i]
		if l.AppointmentID == appointmentID && l.Routine == routine {
			cp := *l
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

type taskRepo struct{ s *Store }

func (r *taskRepo) Create(_ context.Context, task *model.TherapistTask) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *task
	r.s.tasks[task.ID] = &cp
	return nil
}

func (r *taskRepo) Get(_ context.Context, id uuid.UUID) (*model.TherapistTask, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *taskRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.TaskStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	return nil
}

func (r *taskRepo) List(_ context.Context, userID uuid.UUID) ([]*model.TherapistTask, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*model.TherapistTask
	for _, t := range r.s.tasks {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *taskRepo) ExistsOpen(_ context.Context, userID uuid.UUID, taskType model.TaskType, relatedEntityID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, t := range r.s.tasks {
		if t.UserID == userID && t.Type == taskType && t.RelatedEntityID == relatedEntityID && t.Status != model.TaskStatusArchived {
			return true, nil
		}
	}
	return false, nil
}
