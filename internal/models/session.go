package models

// SessionStatus represents the status of a schedule session.
type SessionStatus string

const (
	SessionStatusPending  SessionStatus = "pending"
	SessionStatusParsing  SessionStatus = "parsing"
	SessionStatusMatching SessionStatus = "matching"
	SessionStatusComplete SessionStatus = "complete"
	SessionStatusError    SessionStatus = "error"
)

// ScheduleSession tracks one uploaded schedule from parse through match.
type ScheduleSession struct {
	ID               string        `json:"id"`
	FileID           string        `json:"fileId"`
	Status           SessionStatus `json:"status"`
	Progress         float64       `json:"progress"` // 0-100
	EventCount       int           `json:"eventCount,omitempty"`
	ArrivalCount     int           `json:"arrivalCount,omitempty"`
	DepartureCount   int           `json:"departureCount,omitempty"`
	TurnaroundCount  int           `json:"turnaroundCount,omitempty"`
	ProcessingTimeMs int64         `json:"processingTimeMs,omitempty"`
	Errors           []ParseError  `json:"errors,omitempty"`
}

// ParseError represents a schedule row rejected during ingestion.
type ParseError struct {
	Line    int    `json:"line"`
	Content string `json:"content"`
	Reason  string `json:"reason"`
}

// NewScheduleSession creates a new ScheduleSession in pending status.
func NewScheduleSession(id, fileID string) *ScheduleSession {
	return &ScheduleSession{
		ID:       id,
		FileID:   fileID,
		Status:   SessionStatusPending,
		Progress: 0,
		Errors:   make([]ParseError, 0),
	}
}
