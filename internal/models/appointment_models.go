package models

import (
	"encoding/json"
	"time"
)

// AppointmentStatus defines the type for appointment statuses
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusFinished  AppointmentStatus = "finished"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// IsValidAppointmentStatus checks if the provided status string is a valid AppointmentStatus.
func IsValidAppointmentStatus(status string) bool {
	switch AppointmentStatus(status) {
	case AppointmentStatusPending,
		AppointmentStatusFinished,
		AppointmentStatusCancelled:
		return true
	default:
		return false
	}
}

// IsFinal reports whether no further status change is allowed.
func (s AppointmentStatus) IsFinal() bool {
	return s == AppointmentStatusFinished || s == AppointmentStatusCancelled
}

// Appointment is a booked service for a client with a staff member.
// Date carries the calendar day; Time carries the time of day on the zero date.
type Appointment struct {
	ID         int64             `json:"id" db:"id"`
	ClientID   int64             `json:"client_id" db:"client_id"`
	ClientName string            `json:"client_name"` // joined from clients
	Service    string            `json:"service" db:"service"`
	Staff      string            `json:"staff" db:"staff"` // staff account email
	Date       time.Time         `json:"-" db:"date"`
	Time       time.Time         `json:"-" db:"time"`
	Status     AppointmentStatus `json:"status" db:"status"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
}

// DateString renders the calendar day as YYYY-MM-DD.
func (a Appointment) DateString() string {
	return a.Date.Format("2006-01-02")
}

// TimeString renders the time of day as zero-padded 24-hour HH:MM.
func (a Appointment) TimeString() string {
	return a.Time.Format("15:04")
}

// MarshalJSON renders date and time in their wire formats.
func (a Appointment) MarshalJSON() ([]byte, error) {
	type alias Appointment
	return json.Marshal(struct {
		alias
		Date string `json:"date"`
		Time string `json:"time"`
	}{alias(a), a.DateString(), a.TimeString()})
}

// AppointmentFilters defines the available filters for querying appointments.
type AppointmentFilters struct {
	DateFrom *time.Time `form:"-"`
	DateTo   *time.Time `form:"-"`
	Staff    *string    `form:"staff"`
	Status   *string    `form:"status"`
	ClientID *int64     `form:"client_id"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
}
