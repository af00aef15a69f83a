package models

import "time"

// Turnaround is one reconstructed ground stay: a matched arrival and the
// next unused departure of the same aircraft at the same station.
// Immutable once produced by the matcher; Depart is always after Arrive.
type Turnaround struct {
	Station    string    `json:"station"`
	AircraftID string    `json:"aircraftId"`
	Carrier    string    `json:"carrier,omitempty"`
	Arrive     time.Time `json:"arrive"`
	Depart     time.Time `json:"depart"`
}

// SegmentKind classifies how a turnaround shows up on one calendar day.
type SegmentKind string

const (
	SegmentSameDay            SegmentKind = "same_day"
	SegmentOvernightArrival   SegmentKind = "overnight_arrival"
	SegmentOvernightDeparture SegmentKind = "overnight_departure"
)

// DaySegment is the clipped portion of a turnaround visible on one
// calendar day. WindowStart/WindowEnd always lie within that day's
// [midnight, midnight+24h] bounds.
type DaySegment struct {
	Kind        SegmentKind `json:"kind"`
	WindowStart time.Time   `json:"windowStart"`
	WindowEnd   time.Time   `json:"windowEnd"`
	Turnaround  *Turnaround `json:"turnaround"`
}
