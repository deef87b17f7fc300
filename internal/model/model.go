// Package model defines the core domain types for the reservation booking system.
package model

import (
	"strings"
	"time"
)

// Status is the lifecycle tag of a reservation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// DefaultStatus is assigned to new reservations by the server.
const DefaultStatus = StatusConfirmed

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus normalises user input into a Status.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}

// Organization owns zero or more resources.
type Organization struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Resource is a bookable unit (table, room) owned by one organization.
type Resource struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	Name           string    `json:"name"`
	Type           *string   `json:"type"`
	Capacity       *int      `json:"capacity"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Reservation is a time-boxed booking of one resource.
type Reservation struct {
	ID             int64     `json:"id"`
	ResourceID     int64     `json:"resource_id"`
	UserID         *int64    `json:"user_id"`
	StartTime      LocalTime `json:"start_time"`
	EndTime        LocalTime `json:"end_time"`
	Status         Status    `json:"status"`
	Notes          *string   `json:"notes"`
	GuestLastName  string    `json:"guest_last_name"`
	GuestFirstName *string   `json:"guest_first_name"`
	GuestContact   *string   `json:"guest_contact"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// InZone reinterprets the reservation's wall-clock timestamps in loc.
func (r Reservation) InZone(loc *time.Location) Reservation {
	r.StartTime = r.StartTime.In(loc)
	r.EndTime = r.EndTime.In(loc)
	return r
}

// Overlaps reports whether r and o share any instant. Touching intervals do not overlap.
func (r Reservation) Overlaps(o Reservation) bool {
	return r.StartTime.Before(o.EndTime.Time) && r.EndTime.After(o.StartTime.Time)
}

// CreateOrganizationRequest is the payload for creating an organization.
type CreateOrganizationRequest struct {
	Name string `json:"name"`
}

// UpdateOrganizationRequest is the payload for PATCH /organizations/{id}.
type UpdateOrganizationRequest struct {
	Name *string `json:"name"`
}

// CreateResourceRequest is the payload for creating a resource.
type CreateResourceRequest struct {
	OrganizationID int64   `json:"organization_id"`
	Name           string  `json:"name"`
	Type           *string `json:"type,omitempty"`
	Capacity       *int    `json:"capacity,omitempty"`
}

// UpdateResourceRequest is the payload for PATCH /resources/{id}.
type UpdateResourceRequest struct {
	Name     *string `json:"name,omitempty"`
	Type     *string `json:"type,omitempty"`
	Capacity *int    `json:"capacity,omitempty"`
}

// CreateReservationRequest is the payload for booking a resource.
type CreateReservationRequest struct {
	ResourceID     int64     `json:"resource_id"`
	UserID         *int64    `json:"user_id,omitempty"`
	StartTime      LocalTime `json:"start_time"`
	EndTime        LocalTime `json:"end_time"`
	GuestLastName  string    `json:"guest_last_name"`
	GuestFirstName *string   `json:"guest_first_name,omitempty"`
	GuestContact   *string   `json:"guest_contact,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
}

// UpdateReservationRequest is the payload for PATCH /reservations/{id}.
// Nil fields are left untouched.
type UpdateReservationRequest struct {
	StartTime      *LocalTime `json:"start_time,omitempty"`
	EndTime        *LocalTime `json:"end_time,omitempty"`
	Status         *Status    `json:"status,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	GuestLastName  *string    `json:"guest_last_name,omitempty"`
	GuestFirstName *string    `json:"guest_first_name,omitempty"`
	GuestContact   *string    `json:"guest_contact,omitempty"`
}

// ReservationFilter narrows a reservation listing. Zero values mean "no filter".
type ReservationFilter struct {
	ResourceID    int64
	UserID        int64
	GuestLastName string
	Status        Status
	// Start keeps reservations ending after it, End keeps those starting before it.
	Start time.Time
	End   time.Time
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
