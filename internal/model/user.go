package model

import "time"

// Role is the staff role the backend assigns at login.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleBarman  Role = "barman"
	RoleServeur Role = "serveur"
)

// User is the staff record returned by /login. Created and owned server-side;
// the client only caches it for session continuity.
type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Role           Role      `json:"role"`
	OrganisationID string    `json:"organisationId"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
}

// LoginRequest carries staff credentials plus the terminal's device id.
type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
	DeviceID string `json:"device_id,omitempty"`
}

// LoginResponse is the payload of a successful POST /login.
type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}
