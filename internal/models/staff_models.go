package models

import "time"

// StaffProfile is the display profile attached to a staff account by email.
type StaffProfile struct {
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	PhotoURL  *string   `json:"photo_url,omitempty" db:"photo_url"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
