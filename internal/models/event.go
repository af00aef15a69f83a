// Package models contains domain types for the Ground Time Visualizer.
package models

import "time"

// EventKind distinguishes scheduled movements.
type EventKind string

const (
	EventKindArrival   EventKind = "arrival"
	EventKindDeparture EventKind = "departure"
)

// Event represents a single scheduled movement from a schedule file.
// Timestamps are naive local times; the backend never converts zones.
type Event struct {
	Kind       EventKind `json:"kind"`
	AircraftID string    `json:"aircraftId"`
	Station    string    `json:"station"`
	Timestamp  time.Time `json:"timestamp"`
	Carrier    string    `json:"carrier,omitempty"`
}
