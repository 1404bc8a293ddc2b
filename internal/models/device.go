package models

import "time"

// PushDevice is a GCM registration owned by a user.
type PushDevice struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	RegistrationID string    `db:"registration_id" json:"registration_id"`
	DeviceID       *string   `db:"device_id" json:"device_id,omitempty"`
	Name           string    `db:"name" json:"name"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
