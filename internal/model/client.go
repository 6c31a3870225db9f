package model

import (
	"time"

	"github.com/google/uuid"
)

// Client is a person receiving services from a practice. Contact fields
// are the only mutable part once created.
type Client struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email,omitempty" db:"email"`
	Phone     string    `json:"phone,omitempty" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Address returns the contact address for the given channel, falling back
// to email when the channel-specific address is missing.
func (c *Client) Address(channel CommunicationChannel) string {
	switch channel {
	case ChannelSMS, ChannelPush:
		if c.Phone != "" {
			return c.Phone
		}
	}
	return c.Email
}

type CreateClientRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Name   string `json:"name" validate:"required,max=200"`
	Email  string `json:"email" validate:"omitempty,email"`
	Phone  string `json:"phone" validate:"max=30"`
}

type UpdateClientContactRequest struct {
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone" validate:"omitempty,max=30"`
}
