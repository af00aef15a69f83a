// Package session tracks schedule sessions from upload through matching.
package session

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/groundtime-visualizer/backend/internal/models"
	"github.com/groundtime-visualizer/backend/internal/parser"
	"github.com/groundtime-visualizer/backend/internal/schedule"
)

// MaxSessions limits concurrent sessions to prevent memory exhaustion.
const MaxSessions = 20

// SessionMaxAge is how long to keep completed sessions before cleanup.
const SessionMaxAge = 30 * time.Minute

// Manager handles active schedule sessions.
type Manager struct {
	sessions map[string]*State
	mu       sync.RWMutex
	parser   *parser.ScheduleCSVParser
	tempDir  string
}

// State holds a session's parsed events, matched turnarounds and the
// DuckDB-backed event store used by the events endpoint.
type State struct {
	Session      *models.ScheduleSession
	Events       []models.Event
	Turnarounds  []models.Turnaround
	EventStore   *parser.EventStore
	LastAccessed time.Time
}

// NewManager creates a session manager. The temp directory defaults to
// ./data/temp and can be overridden with SCHEDULE_TEMP_DIR.
func NewManager() *Manager {
	tempDir := os.Getenv("SCHEDULE_TEMP_DIR")
	if tempDir == "" {
		tempDir = "./data/temp"
	}
	os.MkdirAll(tempDir, 0755)
	return NewManagerWithTempDir(tempDir)
}

// NewManagerWithTempDir creates a session manager with a specific temp directory.
func NewManagerWithTempDir(tempDir string) *Manager {
	return &Manager{
		sessions: make(map[string]*State),
		parser:   parser.NewScheduleCSVParser(),
		tempDir:  tempDir,
	}
}

// StartSession begins parsing and matching a schedule file in the
// background and returns the pending session immediately.
func (m *Manager) StartSession(fileID, filePath string) (*models.ScheduleSession, error) {
	m.cleanupOldSessionsIfNeeded()

	sessionID := uuid.New().String()

	sess := models.NewScheduleSession(sessionID, fileID)
	sess.Status = models.SessionStatusParsing

	state := &State{
		Session:      sess,
		LastAccessed: time.Now(),
	}

	m.mu.Lock()
	m.sessions[sessionID] = state
	m.mu.Unlock()

	go m.runMatch(sessionID, filePath)

	return sess, nil
}

func (m *Manager) runMatch(sessionID, filePath string) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("[Schedule %s] PANIC recovered: %v\n", sessionID[:8], r)
			m.failSession(sessionID, fmt.Sprintf("matching panicked: %v", r))
		}
	}()

	start := time.Now()

	if ok, err := m.parser.CanParse(filePath); err != nil {
		m.failSession(sessionID, fmt.Sprintf("reading schedule file: %v", err))
		return
	} else if !ok {
		m.failSession(sessionID, "file is not a schedule export (missing SKD_TYPE/STATION/INFORM_AC columns)")
		return
	}

	events, parseErrors, err := m.parser.Parse(filePath)
	if err != nil {
		m.failSession(sessionID, fmt.Sprintf("parsing schedule: %v", err))
		return
	}

	m.updateSession(sessionID, func(s *State) {
		s.Session.Progress = 50
		s.Session.Status = models.SessionStatusMatching
		s.Session.Errors = parseErrors
		s.Session.EventCount = len(events)
		for _, ev := range events {
			if ev.Kind == models.EventKindArrival {
				s.Session.ArrivalCount++
			} else {
				s.Session.DepartureCount++
			}
		}
		s.Events = events
	})

	turnarounds := schedule.MatchEvents(events)

	// The event store is query-side convenience; losing it degrades the
	// events endpoint but not the matched result.
	store, storeErr := parser.NewEventStore(m.tempDir, sessionID)
	if storeErr == nil {
		if err := store.InsertEvents(events); err != nil {
			fmt.Printf("[Schedule %s] event store insert failed: %v\n", sessionID[:8], err)
			store.Close()
			store = nil
		}
	} else {
		fmt.Printf("[Schedule %s] event store unavailable: %v\n", sessionID[:8], storeErr)
		store = nil
	}

	m.updateSession(sessionID, func(s *State) {
		s.Turnarounds = turnarounds
		s.EventStore = store
		s.Session.TurnaroundCount = len(turnarounds)
		s.Session.Progress = 100
		s.Session.Status = models.SessionStatusComplete
		s.Session.ProcessingTimeMs = time.Since(start).Milliseconds()
	})
}

func (m *Manager) updateSession(sessionID string, fn func(*State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state, ok := m.sessions[sessionID]; ok {
		fn(state)
	}
}

func (m *Manager) failSession(sessionID, reason string) {
	m.updateSession(sessionID, func(s *State) {
		s.Session.Status = models.SessionStatusError
		s.Session.Errors = append(s.Session.Errors, models.ParseError{Reason: reason})
	})
}

// Get returns the state for a session ID and refreshes its last-access
// time. The second return is false for unknown sessions.
func (m *Manager) Get(sessionID string) (*State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.sessions[sessionID]
	if ok {
		state.LastAccessed = time.Now()
	}
	return state, ok
}

// Snapshot returns a copy of the session metadata, safe to read while
// the background match is still running.
func (m *Manager) Snapshot(sessionID string) (models.ScheduleSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.sessions[sessionID]
	if !ok {
		return models.ScheduleSession{}, false
	}
	state.LastAccessed = time.Now()
	return *state.Session, true
}

// KeepAlive refreshes a session's last-access time.
func (m *Manager) KeepAlive(sessionID string) bool {
	_, ok := m.Get(sessionID)
	return ok
}

// Remove deletes a session and releases its event store.
func (m *Manager) Remove(sessionID string) {
	m.mu.Lock()
	state, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if ok && state.EventStore != nil {
		state.EventStore.Close()
	}
}

// CleanupOldSessions removes sessions not accessed within maxAge.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	var expired []*State
	for id, state := range m.sessions {
		if state.LastAccessed.Before(cutoff) {
			expired = append(expired, state)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, state := range expired {
		if state.EventStore != nil {
			state.EventStore.Close()
		}
	}
}

// cleanupOldSessionsIfNeeded evicts the oldest sessions when at the limit.
func (m *Manager) cleanupOldSessionsIfNeeded() {
	m.mu.Lock()
	if len(m.sessions) < MaxSessions {
		m.mu.Unlock()
		return
	}

	var oldestID string
	var oldest time.Time
	for id, state := range m.sessions {
		if oldestID == "" || state.LastAccessed.Before(oldest) {
			oldestID = id
			oldest = state.LastAccessed
		}
	}
	state := m.sessions[oldestID]
	delete(m.sessions, oldestID)
	m.mu.Unlock()

	if state != nil && state.EventStore != nil {
		state.EventStore.Close()
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
