package model

import (
	"time"

	"github.com/google/uuid"
)

type PracticeType string

const (
	PracticeTypeIndependent PracticeType = "independent"
	PracticeTypeClinic      PracticeType = "clinic"
	PracticeTypeSpa         PracticeType = "spa"
)

// RoutineID identifies an automation routine a practice can activate.
type RoutineID string

const (
	RoutineConfirm24h  RoutineID = "confirm_24h"
	RoutineReminder1h  RoutineID = "reminder_1h"
	RoutineFollowUp24h RoutineID = "follow_up_24h"
)

type CommunicationChannel string

const (
	ChannelEmail CommunicationChannel = "email"
	ChannelSMS   CommunicationChannel = "sms"
	ChannelPush  CommunicationChannel = "push"
)

// ToolConnection describes an external tool linked during onboarding
// (calendar, messaging, etc.).
type ToolConnection struct {
	Connected  bool   `json:"connected" db:"connected"`
	ExternalID string `json:"external_id,omitempty" db:"external_id"`
}

// User is a practice (independent therapist, clinic or spa) that owns
// clients and appointments. Multi-tenant isolation is by user ID.
type User struct {
	ID                uuid.UUID                 `json:"id" db:"id"`
	Name              string                    `json:"name" db:"name"`
	Phone             string                    `json:"phone,omitempty" db:"phone"`
	PracticeType      PracticeType              `json:"practice_type" db:"practice_type"`
	ActivatedRoutines []RoutineID               `json:"activated_routines" db:"activated_routines"`
	Tools             map[string]ToolConnection `json:"tools,omitempty" db:"tools"`
	PreferredChannel  CommunicationChannel      `json:"preferred_channel" db:"preferred_channel"`
	CreatedAt         time.Time                 `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at" db:"updated_at"`
}

// RoutineActive reports whether the practice has activated the given routine.
func (u *User) RoutineActive(id RoutineID) bool {
	for _, r := range u.ActivatedRoutines {
		if r == id {
			return true
		}
	}
	return false
}

type CreateUserRequest struct {
	Name             string       `json:"name" validate:"required,max=200"`
	Phone            string       `json:"phone" validate:"max=30"`
	PracticeType     PracticeType `json:"practice_type" validate:"required,oneof=independent clinic spa"`
	PreferredChannel string       `json:"preferred_channel" validate:"omitempty,oneof=email sms push"`
}

type UpdateUserRoutinesRequest struct {
	ActivatedRoutines []RoutineID `json:"activated_routines" validate:"required,dive,oneof=confirm_24h reminder_1h follow_up_24h"`
}
