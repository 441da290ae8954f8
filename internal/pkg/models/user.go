package models

import "time"

// User roles
const (
	RoleCitizen   = "CITIZEN"
	RoleResponder = "RESPONDER"
	RoleAdmin     = "ADMIN"
)

// Location classes used to resolve the default search radius
const (
	LocationClassUrban     = "URBAN"
	LocationClassSemiUrban = "SEMI_URBAN"
	LocationClassRural     = "RURAL"
)

// User represents a citizen, responder or admin account. Responders carry
// presence fields (position, availability) mutated by location updates and
// by accepting an emergency.
type User struct {
	ID            string     `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	Phone         string     `json:"phone" db:"phone"`
	Email         string     `json:"email,omitempty" db:"email"`
	FCMToken      string     `json:"-" db:"fcm_token"`
	Role          string     `json:"role" db:"role"`
	Verified      bool       `json:"verified" db:"verified"`
	Available     bool       `json:"available" db:"available"`
	Latitude      *float64   `json:"latitude,omitempty" db:"latitude"`
	Longitude     *float64   `json:"longitude,omitempty" db:"longitude"`
	Geohash       string     `json:"-" db:"geohash"`
	LocationClass string     `json:"location_class" db:"location_class"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// HasPosition reports whether the user carries a known location
func (u *User) HasPosition() bool {
	return u.Latitude != nil && u.Longitude != nil
}

// AvailabilityRequest is the body of the responder availability endpoint
type AvailabilityRequest struct {
	Available bool     `json:"available"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}
