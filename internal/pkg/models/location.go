package models

import "time"

// Location represents a geographical location with latitude and longitude
type Location struct {
	Latitude  float64   `json:"latitude" db:"latitude"`
	Longitude float64   `json:"longitude" db:"longitude"`
	Address   string    `json:"address,omitempty" db:"address"`
	Timestamp time.Time `json:"timestamp,omitempty" db:"timestamp"`
}

// NearbyResponder represents a matched responder with its distance from the
// emergency origin
type NearbyResponder struct {
	ID         string  `json:"id"`
	DistanceKm float64 `json:"distance_km"`
}
