package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/groundtime-visualizer/backend/internal/models"
	"github.com/jszwec/csvutil"
)

// scheduleRow mirrors one line of the schedule export. Column names come
// from the operations system that produces the file.
type scheduleRow struct {
	SkdType     string `csv:"SKD_TYPE"`
	Aircraft    string `csv:"INFORM_AC"`
	Station     string `csv:"STATION"`
	ArriveLocal string `csv:"ARRIVE_DATE_TIME_LOCAL"`
	DepartLocal string `csv:"DEPART_DATE_TIME_LOCAL"`
	Carrier     string `csv:"CARRIER"`
}

// ScheduleCSVParser reads schedule CSV exports into events. Rows that
// fail to parse are collected as ParseErrors and skipped, so malformed
// rows never reach the matcher.
type ScheduleCSVParser struct{}

func NewScheduleCSVParser() *ScheduleCSVParser {
	return &ScheduleCSVParser{}
}

func (p *ScheduleCSVParser) Name() string {
	return "schedule_csv"
}

// CanParse checks the header line for the schedule export columns.
func (p *ScheduleCSVParser) CanParse(filePath string) (bool, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return false, nil
	}

	seen := make(map[string]bool, len(header))
	for _, col := range header {
		seen[strings.ToUpper(strings.TrimSpace(col))] = true
	}
	return seen["SKD_TYPE"] && seen["STATION"] && seen["INFORM_AC"], nil
}

// Parse reads the whole file and returns clean events plus per-row errors.
func (p *ScheduleCSVParser) Parse(filePath string) ([]models.Event, []models.ParseError, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return p.ParseReader(f)
}

// ParseReader is Parse over an arbitrary reader. Used directly by tests
// and by the upload handlers, which already hold the file contents.
func (p *ScheduleCSVParser) ParseReader(r io.Reader) ([]models.Event, []models.ParseError, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	dec, err := csvutil.NewDecoder(csvReader)
	if err != nil {
		return nil, nil, fmt.Errorf("reading schedule header: %w", err)
	}

	events := make([]models.Event, 0)
	parseErrors := make([]models.ParseError, 0)
	line := 1 // header is line 1

	for {
		line++
		var row scheduleRow
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			parseErrors = append(parseErrors, models.ParseError{
				Line:   line,
				Reason: fmt.Sprintf("malformed row: %v", err),
			})
			continue
		}

		ev, rowErr := eventFromRow(row)
		if rowErr != nil {
			parseErrors = append(parseErrors, models.ParseError{
				Line:    line,
				Content: strings.Join(dec.Record(), ","),
				Reason:  rowErr.Error(),
			})
			continue
		}
		events = append(events, ev)
	}

	return events, parseErrors, nil
}

// eventFromRow validates one row into an Event. Arrivals take their
// timestamp from the arrive column, departures from the depart column.
func eventFromRow(row scheduleRow) (models.Event, error) {
	kind, err := ParseEventKind(row.SkdType)
	if err != nil {
		return models.Event{}, err
	}

	aircraft := strings.TrimSpace(row.Aircraft)
	station := strings.TrimSpace(row.Station)
	if aircraft == "" {
		return models.Event{}, fmt.Errorf("missing INFORM_AC")
	}
	if station == "" {
		return models.Event{}, fmt.Errorf("missing STATION")
	}

	raw := row.ArriveLocal
	if kind == models.EventKindDeparture {
		raw = row.DepartLocal
	}
	ts, err := ParseLocalTime(raw)
	if err != nil {
		return models.Event{}, err
	}

	return models.Event{
		Kind:       kind,
		AircraftID: aircraft,
		Station:    station,
		Timestamp:  ts,
		Carrier:    strings.TrimSpace(row.Carrier),
	}, nil
}
