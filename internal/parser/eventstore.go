package parser

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/groundtime-visualizer/backend/internal/models"
	"github.com/marcboeker/go-duckdb"
)

// EventStore keeps a session's parsed events in a temporary DuckDB file
// so the events endpoint can page and filter without holding extra copies
// in process memory. Timestamps are stored as local epoch seconds; they
// are reconstructed in the same frame on the way out.
type EventStore struct {
	db         *sql.DB
	dbPath     string
	eventCount int
}

// EventFilter narrows an Events query. Zero values mean "no filter";
// Limit <= 0 means no page limit.
type EventFilter struct {
	Kind       models.EventKind
	AircraftID string
	Station    string
	Day        *time.Time
	Limit      int
	Offset     int
}

// NewEventStore creates a DuckDB-backed store under tempDir.
func NewEventStore(tempDir, sessionID string) (*EventStore, error) {
	dbPath := filepath.Join(tempDir, fmt.Sprintf("session_%s.duckdb", sessionID))

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA memory_limit='256MB'",
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	_, err = db.Exec(`
		CREATE TABLE events (
			id        INTEGER PRIMARY KEY,
			kind      VARCHAR NOT NULL,
			aircraft  VARCHAR NOT NULL,
			station   VARCHAR NOT NULL,
			ts        BIGINT NOT NULL,
			carrier   VARCHAR
		)
	`)
	if err != nil {
		db.Close()
		os.Remove(dbPath)
		return nil, fmt.Errorf("creating events table: %w", err)
	}

	return &EventStore{db: db, dbPath: dbPath}, nil
}

// InsertEvents appends events in one transaction, preserving input order.
func (s *EventStore) InsertEvents(events []models.Event) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning insert transaction: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO events (id, kind, aircraft, station, ts, carrier) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, ev := range events {
		carrier := sql.NullString{String: ev.Carrier, Valid: ev.Carrier != ""}
		if _, err := stmt.Exec(s.eventCount+i, string(ev.Kind), ev.AircraftID, ev.Station, ev.Timestamp.Unix(), carrier); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting event %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing events: %w", err)
	}
	s.eventCount += len(events)
	return nil
}

// Count returns the number of stored events.
func (s *EventStore) Count() int {
	return s.eventCount
}

// Events returns stored events matching the filter, in insert order.
func (s *EventStore) Events(f EventFilter) ([]models.Event, error) {
	var where []string
	var args []interface{}

	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(f.Kind))
	}
	if f.AircraftID != "" {
		where = append(where, "aircraft = ?")
		args = append(args, f.AircraftID)
	}
	if f.Station != "" {
		where = append(where, "station = ?")
		args = append(args, f.Station)
	}
	if f.Day != nil {
		dayStart := time.Date(f.Day.Year(), f.Day.Month(), f.Day.Day(), 0, 0, 0, 0, f.Day.Location())
		where = append(where, "ts >= ? AND ts < ?")
		args = append(args, dayStart.Unix(), dayStart.AddDate(0, 0, 1).Unix())
	}

	query := "SELECT kind, aircraft, station, ts, carrier FROM events"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	} else if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", f.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		var (
			kind, aircraft, station string
			ts                      int64
			carrier                 sql.NullString
		)
		if err := rows.Scan(&kind, &aircraft, &station, &ts, &carrier); err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		events = append(events, models.Event{
			Kind:       models.EventKind(kind),
			AircraftID: aircraft,
			Station:    station,
			Timestamp:  time.Unix(ts, 0),
			Carrier:    carrier.String,
		})
	}
	return events, rows.Err()
}

// Close releases the database and deletes the backing file.
func (s *EventStore) Close() error {
	err := s.db.Close()
	if rmErr := os.Remove(s.dbPath); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = rmErr
	}
	return err
}
