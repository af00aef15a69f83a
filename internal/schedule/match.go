// Package schedule reconstructs aircraft ground stays from scheduled
// arrival/departure events and slices them into per-day display segments.
package schedule

import (
	"sort"
	"time"

	"github.com/groundtime-visualizer/backend/internal/models"
)

// groundKey identifies the pool a departure can be claimed from.
type groundKey struct {
	AircraftID string
	Station    string
}

// DepartureIndex holds the not-yet-claimed departures of a schedule,
// grouped by aircraft and station and ordered by time. Claiming a
// departure removes it, so each departure is consumed at most once.
type DepartureIndex struct {
	pools map[groundKey][]models.Event
}

// NewDepartureIndex builds an index from the given events. Non-departure
// events are ignored, so the full event list can be passed directly.
func NewDepartureIndex(events []models.Event) *DepartureIndex {
	pools := make(map[groundKey][]models.Event)
	for _, ev := range events {
		if ev.Kind != models.EventKindDeparture {
			continue
		}
		k := groundKey{AircraftID: ev.AircraftID, Station: ev.Station}
		pools[k] = append(pools[k], ev)
	}
	for k := range pools {
		pool := pools[k]
		sort.SliceStable(pool, func(i, j int) bool {
			return pool[i].Timestamp.Before(pool[j].Timestamp)
		})
	}
	return &DepartureIndex{pools: pools}
}

// Len reports how many departures remain unclaimed.
func (idx *DepartureIndex) Len() int {
	n := 0
	for _, pool := range idx.pools {
		n += len(pool)
	}
	return n
}

// Claim removes and returns the earliest unclaimed departure of the given
// aircraft at the given station strictly after t. The second return is
// false when no eligible departure remains.
func (idx *DepartureIndex) Claim(aircraftID, station string, t time.Time) (models.Event, bool) {
	k := groundKey{AircraftID: aircraftID, Station: station}
	pool := idx.pools[k]
	for i, dep := range pool {
		if dep.Timestamp.After(t) {
			idx.pools[k] = append(pool[:i:i], pool[i+1:]...)
			return dep, true
		}
	}
	return models.Event{}, false
}

// Match pairs each arrival with the earliest still-unclaimed departure of
// the same aircraft at the same station that is strictly later than the
// arrival. Arrivals are processed in input order; an arrival with no
// eligible departure is skipped (an open stay at the end of the data
// window, not an error). The index is consumed as departures are claimed.
func Match(arrivals []models.Event, idx *DepartureIndex) []models.Turnaround {
	matched := make([]models.Turnaround, 0, len(arrivals))
	for _, arr := range arrivals {
		if arr.Kind != models.EventKindArrival {
			continue
		}
		dep, ok := idx.Claim(arr.AircraftID, arr.Station, arr.Timestamp)
		if !ok {
			continue
		}
		matched = append(matched, models.Turnaround{
			Station:    arr.Station,
			AircraftID: arr.AircraftID,
			Carrier:    arr.Carrier,
			Arrive:     arr.Timestamp,
			Depart:     dep.Timestamp,
		})
	}
	return matched
}

// MatchEvents is the single-shot form of Match: it splits the event list
// into arrivals and a departure index and runs the matching pass.
func MatchEvents(events []models.Event) []models.Turnaround {
	arrivals := make([]models.Event, 0, len(events))
	for _, ev := range events {
		if ev.Kind == models.EventKindArrival {
			arrivals = append(arrivals, ev)
		}
	}
	return Match(arrivals, NewDepartureIndex(events))
}
