package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled         AppointmentStatus = "scheduled"
	AppointmentStatusAttended          AppointmentStatus = "attended"
	AppointmentStatusNoShow            AppointmentStatus = "no_show"
	AppointmentStatusCancelledByClient AppointmentStatus = "cancelled_by_client"
)

// Terminal reports whether the status ends the appointment lifecycle.
// Terminal appointments are immutable apart from the follow-up flag.
func (s AppointmentStatus) Terminal() bool {
	switch s {
	case AppointmentStatusAttended, AppointmentStatusNoShow, AppointmentStatusCancelledByClient:
		return true
	}
	return false
}

type Appointment struct {
	ID           uuid.UUID         `json:"id" db:"id"`
	UserID       uuid.UUID         `json:"user_id" db:"user_id"`
	ClientID     uuid.UUID         `json:"client_id" db:"client_id"`
	ServiceName  string            `json:"service_name" db:"service_name"`
	StartTime    time.Time         `json:"start_time" db:"start_time"`
	EndTime      time.Time         `json:"end_time" db:"end_time"`
	Status       AppointmentStatus `json:"status" db:"status"`
	Confirmed    bool              `json:"confirmed" db:"confirmed"`
	FollowUpSent bool              `json:"follow_up_sent" db:"follow_up_sent"`
	BaseRevenue  *float64          `json:"base_revenue,omitempty" db:"base_revenue"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at" db:"updated_at"`
}

// AppointmentPatch carries the only mutations the automation cycle and the
// status API are allowed to apply. Nil fields are left untouched.
type AppointmentPatch struct {
	Status       *AppointmentStatus `json:"status,omitempty"`
	Confirmed    *bool              `json:"confirmed,omitempty"`
	FollowUpSent *bool              `json:"follow_up_sent,omitempty"`
}

// ValidateTransition enforces the appointment lifecycle: scheduled is the
// only non-terminal status, confirmed can only flip while scheduled.
func (a *Appointment) ValidateTransition(patch *AppointmentPatch) error {
	if a.Status.Terminal() {
		if patch.Status != nil && *patch.Status != a.Status {
			return fmt.Errorf("appointment %s is %s and cannot transition to %s", a.ID, a.Status, *patch.Status)
		}
		if patch.Confirmed != nil && *patch.Confirmed != a.Confirmed {
			return fmt.Errorf("appointment %s is %s and its confirmation cannot change", a.ID, a.Status)
		}
	}
	if patch.Confirmed != nil && *patch.Confirmed && a.Status != AppointmentStatusScheduled {
		return fmt.Errorf("appointment %s cannot be confirmed while %s", a.ID, a.Status)
	}
	return nil
}

type CreateAppointmentRequest struct {
	UserID      string    `json:"user_id" validate:"required,uuid"`
	ClientID    string    `json:"client_id" validate:"required,uuid"`
	ServiceName string    `json:"service_name" validate:"required,max=200"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	BaseRevenue *float64  `json:"base_revenue" validate:"omitempty,gte=0"`
}

type UpdateAppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status" validate:"required,oneof=scheduled attended no_show cancelled_by_client"`
}

type AppointmentFilters struct {
	UserID   uuid.UUID
	ClientID uuid.UUID
	Status   AppointmentStatus
}
