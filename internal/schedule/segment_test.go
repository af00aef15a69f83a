package schedule

import (
	"testing"
	"time"

	"github.com/groundtime-visualizer/backend/internal/models"
)

func turnaround(arrive, depart time.Time) models.Turnaround {
	return models.Turnaround{
		Station:    "ORD",
		AircraftID: "N123",
		Arrive:     arrive,
		Depart:     depart,
	}
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.Local)
}

func TestSegmentForDay_SameDay(t *testing.T) {
	ta := turnaround(at(1, 8, 0), at(1, 11, 30))

	seg, ok := SegmentForDay(ta, day(1))
	if !ok {
		t.Fatal("expected a segment for the stay's own day")
	}
	if seg.Kind != models.SegmentSameDay {
		t.Errorf("expected same_day, got %s", seg.Kind)
	}
	if !seg.WindowStart.Equal(at(1, 8, 0)) || !seg.WindowEnd.Equal(at(1, 11, 30)) {
		t.Errorf("expected window [08:00, 11:30), got [%v, %v)", seg.WindowStart, seg.WindowEnd)
	}

	if _, ok := SegmentForDay(ta, day(2)); ok {
		t.Error("expected no segment on a day the stay does not touch")
	}
}

func TestSegmentForDay_OvernightSplit(t *testing.T) {
	ta := turnaround(at(1, 23, 10), at(2, 1, 45))

	seg, ok := SegmentForDay(ta, day(1))
	if !ok {
		t.Fatal("expected a segment on the arrival day")
	}
	if seg.Kind != models.SegmentOvernightArrival {
		t.Errorf("expected overnight_arrival, got %s", seg.Kind)
	}
	if !seg.WindowStart.Equal(at(1, 23, 10)) || !seg.WindowEnd.Equal(day(2)) {
		t.Errorf("expected window [23:10, midnight), got [%v, %v)", seg.WindowStart, seg.WindowEnd)
	}

	seg, ok = SegmentForDay(ta, day(2))
	if !ok {
		t.Fatal("expected a segment on the departure day")
	}
	if seg.Kind != models.SegmentOvernightDeparture {
		t.Errorf("expected overnight_departure, got %s", seg.Kind)
	}
	if !seg.WindowStart.Equal(day(2)) || !seg.WindowEnd.Equal(at(2, 1, 45)) {
		t.Errorf("expected window [midnight, 01:45), got [%v, %v)", seg.WindowStart, seg.WindowEnd)
	}

	for _, d := range []time.Time{day(3), time.Date(2024, 2, 29, 0, 0, 0, 0, time.Local)} {
		if _, ok := SegmentForDay(ta, d); ok {
			t.Errorf("expected no segment for %v", d)
		}
	}
}

// A stay longer than 24 hours is only visible on its arrival day and its
// departure day. Interior days get nothing; the chart shows a gap. Known
// limitation, kept on purpose.
func TestSegmentForDay_MultiDayInteriorGap(t *testing.T) {
	ta := turnaround(at(1, 18, 0), at(4, 6, 0))

	if seg, ok := SegmentForDay(ta, day(1)); !ok || seg.Kind != models.SegmentOvernightArrival {
		t.Errorf("arrival day: expected overnight_arrival, got %v ok=%v", seg.Kind, ok)
	}
	if seg, ok := SegmentForDay(ta, day(4)); !ok || seg.Kind != models.SegmentOvernightDeparture {
		t.Errorf("departure day: expected overnight_departure, got %v ok=%v", seg.Kind, ok)
	}
	for d := 2; d <= 3; d++ {
		if _, ok := SegmentForDay(ta, day(d)); ok {
			t.Errorf("interior day %d: expected no segment", d)
		}
	}
}

func TestSegmentForDay_WindowWithinDayBounds(t *testing.T) {
	tests := []struct {
		name string
		ta   models.Turnaround
		day  time.Time
	}{
		{"same day", turnaround(at(1, 8, 0), at(1, 11, 30)), day(1)},
		{"overnight arrival", turnaround(at(1, 23, 10), at(2, 1, 45)), day(1)},
		{"overnight departure", turnaround(at(1, 23, 10), at(2, 1, 45)), day(2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg, ok := SegmentForDay(tt.ta, tt.day)
			if !ok {
				t.Fatal("expected a segment")
			}
			dayStart := StartOfDay(tt.day)
			dayEnd := dayStart.AddDate(0, 0, 1)
			if seg.WindowStart.Before(dayStart) || seg.WindowEnd.After(dayEnd) {
				t.Errorf("window [%v, %v) escapes day bounds [%v, %v]",
					seg.WindowStart, seg.WindowEnd, dayStart, dayEnd)
			}
			if !seg.WindowStart.Before(seg.WindowEnd) {
				t.Errorf("window start %v not before end %v", seg.WindowStart, seg.WindowEnd)
			}
		})
	}
}

func TestSegmentForDay_BackReference(t *testing.T) {
	ta := turnaround(at(1, 8, 0), at(1, 11, 30))
	seg, ok := SegmentForDay(ta, day(1))
	if !ok {
		t.Fatal("expected a segment")
	}
	if seg.Turnaround == nil {
		t.Fatal("segment carries no turnaround back-reference")
	}
	if seg.Turnaround.AircraftID != "N123" || seg.Turnaround.Station != "ORD" {
		t.Errorf("back-reference does not match source turnaround: %+v", seg.Turnaround)
	}
}

func TestSegmentsForDay_OrderFollowsMatchOrder(t *testing.T) {
	turnarounds := []models.Turnaround{
		turnaround(at(1, 9, 0), at(1, 10, 0)),
		turnaround(at(1, 7, 0), at(1, 8, 0)),
		turnaround(at(2, 7, 0), at(2, 8, 0)), // different day, filtered out
	}

	segments := SegmentsForDay(turnarounds, day(1))

	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if !segments[0].WindowStart.Equal(at(1, 9, 0)) {
		t.Error("segments not in matched turnaround order")
	}
}

func TestSegmentsForRange(t *testing.T) {
	turnarounds := []models.Turnaround{
		turnaround(at(1, 23, 10), at(2, 1, 45)),
	}

	byDay := SegmentsForRange(turnarounds, day(1), day(3))

	if len(byDay) != 3 {
		t.Fatalf("expected entries for 3 days, got %d", len(byDay))
	}
	if got := len(byDay["2024-03-01"]); got != 1 {
		t.Errorf("2024-03-01: expected 1 segment, got %d", got)
	}
	if got := len(byDay["2024-03-02"]); got != 1 {
		t.Errorf("2024-03-02: expected 1 segment, got %d", got)
	}
	if got := len(byDay["2024-03-03"]); got != 0 {
		t.Errorf("2024-03-03: expected empty day, got %d segments", got)
	}
}

func TestDateRange(t *testing.T) {
	if _, _, ok := DateRange(nil); ok {
		t.Error("expected ok=false for empty matched set")
	}

	from, to, ok := DateRange([]models.Turnaround{
		turnaround(at(2, 9, 0), at(2, 10, 0)),
		turnaround(at(1, 23, 10), at(3, 1, 45)),
	})
	if !ok {
		t.Fatal("expected ok=true")
	}
	if !from.Equal(day(1)) || !to.Equal(day(3)) {
		t.Errorf("expected range [2024-03-01, 2024-03-03], got [%v, %v]", from, to)
	}
}
