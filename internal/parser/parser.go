// Package parser ingests flight schedule files into events and stores
// parsed events for querying.
package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/groundtime-visualizer/backend/internal/models"
)

// Schedule timestamps are naive local date-times with no zone marker.
// Layouts are tried in order; the first match wins.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"1/2/2006 15:04",
	"01/02/2006 15:04:05",
}

// ParseLocalTime parses a schedule timestamp in the local frame.
func ParseLocalTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ParseEventKind maps a raw SKD_TYPE value to an EventKind. The
// comparison is case-insensitive; anything else is rejected.
func ParseEventKind(raw string) (models.EventKind, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ARRIVAL":
		return models.EventKindArrival, nil
	case "DEPARTURE":
		return models.EventKindDeparture, nil
	}
	return "", fmt.Errorf("unrecognized SKD_TYPE %q", raw)
}
