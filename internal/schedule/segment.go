package schedule

import (
	"time"

	"github.com/groundtime-visualizer/backend/internal/models"
)

// StartOfDay returns midnight at the start of t's calendar day, in t's
// own location. All day arithmetic here is naive-local: timestamps are
// never converted between zones.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// sameDay reports whether a and b fall on the same calendar day.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// SegmentForDay computes the portion of a turnaround visible on the
// calendar day containing `day`, if any:
//
//   - arrive and depart both on the day: a same-day stay, window
//     [arrive, depart).
//   - arrive on the day, depart later: an overnight arrival, clipped at
//     the following midnight. The rest shows up on the departure day.
//   - depart on the day, arrive earlier: an overnight departure, starting
//     at the day's midnight.
//
// Days strictly between the arrival day and the departure day of a stay
// longer than 24h yield no segment; only the two boundary days are ever
// represented. That matches the ground-time chart this feeds, which draws
// one bar per boundary day.
func SegmentForDay(t models.Turnaround, day time.Time) (models.DaySegment, bool) {
	arriveToday := sameDay(t.Arrive, day)
	departToday := sameDay(t.Depart, day)

	switch {
	case arriveToday && departToday:
		return models.DaySegment{
			Kind:        models.SegmentSameDay,
			WindowStart: t.Arrive,
			WindowEnd:   t.Depart,
			Turnaround:  &t,
		}, true
	case arriveToday:
		return models.DaySegment{
			Kind:        models.SegmentOvernightArrival,
			WindowStart: t.Arrive,
			WindowEnd:   StartOfDay(t.Arrive).AddDate(0, 0, 1),
			Turnaround:  &t,
		}, true
	case departToday:
		return models.DaySegment{
			Kind:        models.SegmentOvernightDeparture,
			WindowStart: StartOfDay(t.Depart),
			WindowEnd:   t.Depart,
			Turnaround:  &t,
		}, true
	}
	return models.DaySegment{}, false
}

// SegmentsForDay collects the segments of all turnarounds visible on one
// calendar day, in the order the turnarounds were matched.
func SegmentsForDay(turnarounds []models.Turnaround, day time.Time) []models.DaySegment {
	segments := make([]models.DaySegment, 0)
	for _, t := range turnarounds {
		if seg, ok := SegmentForDay(t, day); ok {
			segments = append(segments, seg)
		}
	}
	return segments
}

// SegmentsForRange maps each day in [from, to] (inclusive, by calendar
// day) to its segments. Days with no visible turnaround get an empty
// slice so the caller can render an empty chart for them.
func SegmentsForRange(turnarounds []models.Turnaround, from, to time.Time) map[string][]models.DaySegment {
	byDay := make(map[string][]models.DaySegment)
	for day := StartOfDay(from); !day.After(StartOfDay(to)); day = day.AddDate(0, 0, 1) {
		byDay[day.Format("2006-01-02")] = SegmentsForDay(turnarounds, day)
	}
	return byDay
}

// DateRange returns the first arrival day and last departure day of the
// matched set. ok is false for an empty set.
func DateRange(turnarounds []models.Turnaround) (from, to time.Time, ok bool) {
	for i, t := range turnarounds {
		if i == 0 || t.Arrive.Before(from) {
			from = t.Arrive
		}
		if i == 0 || t.Depart.After(to) {
			to = t.Depart
		}
	}
	if len(turnarounds) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return StartOfDay(from), StartOfDay(to), true
}
