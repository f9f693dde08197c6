package models

import "time"

// FireAlert is pushed to subscribers after every accepted status update
type FireAlert struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	EventID   *uint     `json:"eventId"`
}

// FireLocation is pushed to subscribers after a location is attached to a
// fire event
type FireLocation struct {
	ID        uint      `json:"id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Address   *string   `json:"address"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}
