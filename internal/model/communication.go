package model

import (
	"time"

	"github.com/google/uuid"
)

type DeliveryStatus string

const (
	DeliveryStatusSuccess DeliveryStatus = "success"
	DeliveryStatusFailed  DeliveryStatus = "failed"
)

// CommunicationLog is the append-only audit trail of attempted sends. It is
// also the de-duplication source of truth for routines without their own
// idempotency flag (reminders).
type CommunicationLog struct {
	ID            uuid.UUID            `json:"id" db:"id"`
	UserID        uuid.UUID            `json:"user_id" db:"user_id"`
	ClientID      uuid.UUID            `json:"client_id" db:"client_id"`
	AppointmentID uuid.UUID            `json:"appointment_id" db:"appointment_id"`
	Routine       RoutineID            `json:"routine" db:"routine"`
	Channel       CommunicationChannel `json:"channel" db:"channel"`
	Recipient     string               `json:"recipient" db:"recipient"`
	Preview       string               `json:"preview" db:"preview"`
	Status        DeliveryStatus       `json:"status" db:"status"`
	Error         string               `json:"error,omitempty" db:"error"`
	Degraded      bool                 `json:"degraded" db:"degraded"`
	SentAt        time.Time            `json:"sent_at" db:"sent_at"`
}
