package model

import (
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypeNoShowRisk        TaskType = "no_show_risk_alert"
	TaskTypeLowAttendanceRate TaskType = "low_attendance_rate_alert"
)

type TaskStatus string

const (
	TaskStatusNew      TaskStatus = "new"
	TaskStatusRead     TaskStatus = "read"
	TaskStatusArchived TaskStatus = "archived"
)

// TherapistTask is a proactive to-do surfaced to the practice by the
// intelligence engine. Status is only ever advanced by the consuming user.
type TherapistTask struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	UserID          uuid.UUID  `json:"user_id" db:"user_id"`
	Type            TaskType   `json:"type" db:"type"`
	Message         string     `json:"message" db:"message"`
	Status          TaskStatus `json:"status" db:"status"`
	RelatedEntityID string     `json:"related_entity_id,omitempty" db:"related_entity_id"`
	ClientID        *uuid.UUID `json:"client_id,omitempty" db:"client_id"`
	AppointmentID   *uuid.UUID `json:"appointment_id,omitempty" db:"appointment_id"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

type UpdateTaskStatusRequest struct {
	Status TaskStatus `json:"status" validate:"required,oneof=new read archived"`
}

// ValidTaskTransition enforces new → read → archived, allowing same-status
// updates as no-ops.
func ValidTaskTransition(from, to TaskStatus) bool {
	switch from {
	case TaskStatusNew:
		return to == TaskStatusNew || to == TaskStatusRead || to == TaskStatusArchived
	case TaskStatusRead:
		return to == TaskStatusRead || to == TaskStatusArchived
	case TaskStatusArchived:
		return to == TaskStatusArchived
	}
	return false
}
