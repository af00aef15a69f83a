package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/groundtime-visualizer/backend/internal/models"
)

const scheduleHeader = "SKD_TYPE,INFORM_AC,STATION,ARRIVE_DATE_TIME_LOCAL,DEPART_DATE_TIME_LOCAL,CARRIER\n"

func createScheduleFile(t *testing.T, content string) string {
	t.Helper()
	filePath := filepath.Join(t.TempDir(), "schedule.csv")
	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return filePath
}

func TestScheduleCSVParser_CanParse(t *testing.T) {
	p := NewScheduleCSVParser()

	t.Run("schedule header", func(t *testing.T) {
		filePath := createScheduleFile(t, scheduleHeader)
		ok, err := p.CanParse(filePath)
		if err != nil {
			t.Fatalf("CanParse failed: %v", err)
		}
		if !ok {
			t.Error("expected CanParse to accept a schedule header")
		}
	})

	t.Run("unrelated csv", func(t *testing.T) {
		filePath := createScheduleFile(t, "timestamp,device,signal,value\n1,2,3,4\n")
		ok, err := p.CanParse(filePath)
		if err != nil {
			t.Fatalf("CanParse failed: %v", err)
		}
		if ok {
			t.Error("expected CanParse to reject an unrelated header")
		}
	})
}

func TestScheduleCSVParser_Parse(t *testing.T) {
	content := scheduleHeader +
		"ARRIVAL,N123,ORD,2024-03-01 08:00,,UA\n" +
		"Departure,N123,ORD,,2024-03-01 10:15,UA\n" +
		"arrival,N456,DFW,2024-03-01 23:10,,AA\n"

	p := NewScheduleCSVParser()
	events, parseErrors, err := p.Parse(createScheduleFile(t, content))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(parseErrors) != 0 {
		t.Fatalf("expected no row errors, got %v", parseErrors)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	if events[0].Kind != models.EventKindArrival {
		t.Errorf("row 1: expected arrival, got %s", events[0].Kind)
	}
	want := time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local)
	if !events[0].Timestamp.Equal(want) {
		t.Errorf("row 1: expected %v, got %v", want, events[0].Timestamp)
	}

	// SKD_TYPE is matched case-insensitively.
	if events[1].Kind != models.EventKindDeparture {
		t.Errorf("row 2: expected departure, got %s", events[1].Kind)
	}
	if events[2].Kind != models.EventKindArrival {
		t.Errorf("row 3: expected arrival, got %s", events[2].Kind)
	}

	// Departures take their timestamp from the depart column.
	want = time.Date(2024, 3, 1, 10, 15, 0, 0, time.Local)
	if !events[1].Timestamp.Equal(want) {
		t.Errorf("row 2: expected %v, got %v", want, events[1].Timestamp)
	}

	if events[0].Carrier != "UA" || events[2].Carrier != "AA" {
		t.Error("carrier column not carried through")
	}
}

func TestScheduleCSVParser_RejectsBadRows(t *testing.T) {
	tests := []struct {
		name   string
		row    string
		reason string
	}{
		{"bad timestamp", "ARRIVAL,N123,ORD,not-a-time,,UA", "timestamp"},
		{"empty timestamp", "ARRIVAL,N123,ORD,,,UA", "timestamp"},
		{"unknown kind", "CANCELLED,N123,ORD,2024-03-01 08:00,,UA", "SKD_TYPE"},
		{"missing aircraft", "ARRIVAL,,ORD,2024-03-01 08:00,,UA", "INFORM_AC"},
		{"missing station", "ARRIVAL,N123,,2024-03-01 08:00,,UA", "STATION"},
	}

	p := NewScheduleCSVParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := scheduleHeader +
				tt.row + "\n" +
				"ARRIVAL,N999,SEA,2024-03-01 09:00,,DL\n"

			events, parseErrors, err := p.ParseReader(strings.NewReader(content))
			if err != nil {
				t.Fatalf("ParseReader failed: %v", err)
			}
			if len(events) != 1 {
				t.Fatalf("expected the good row to survive, got %d events", len(events))
			}
			if len(parseErrors) != 1 {
				t.Fatalf("expected 1 row error, got %d", len(parseErrors))
			}
			if parseErrors[0].Line != 2 {
				t.Errorf("expected error on line 2, got %d", parseErrors[0].Line)
			}
			if !strings.Contains(parseErrors[0].Reason, tt.reason) {
				t.Errorf("expected reason mentioning %q, got %q", tt.reason, parseErrors[0].Reason)
			}
		})
	}
}

func TestParseLocalTime_Layouts(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2024-03-01 08:00", time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local)},
		{"2024-03-01 08:00:30", time.Date(2024, 3, 1, 8, 0, 30, 0, time.Local)},
		{"2024-03-01T08:00:00", time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local)},
		{"3/1/2024 08:00", time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local)},
	}
	for _, tt := range tests {
		got, err := ParseLocalTime(tt.raw)
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.raw, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("%q: expected %v, got %v", tt.raw, tt.want, got)
		}
	}

	if _, err := ParseLocalTime("yesterday"); err == nil {
		t.Error("expected an error for a free-form timestamp")
	}
}
