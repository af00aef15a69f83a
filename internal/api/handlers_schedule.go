// handlers_schedule.go - Schedule session and turnaround query handlers
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/groundtime-visualizer/backend/internal/models"
	"github.com/groundtime-visualizer/backend/internal/parser"
	"github.com/groundtime-visualizer/backend/internal/schedule"
	"github.com/groundtime-visualizer/backend/internal/session"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

const dayFormat = "2006-01-02"

type startScheduleRequest struct {
	FileID string `json:"fileId"`
}

// HandleStartSchedule starts parsing and matching an uploaded schedule.
func (h *Handler) HandleStartSchedule(c echo.Context) error {
	var req startScheduleRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.FileID == "" {
		return NewValidationError("fileId")
	}

	filePath, err := h.store.GetFilePath(req.FileID)
	if err != nil {
		return NewNotFoundError("file", req.FileID)
	}

	sess, err := h.sessions.StartSession(req.FileID, filePath)
	if err != nil {
		return NewInternalError("failed to start schedule session", err)
	}

	return c.JSON(http.StatusAccepted, sess)
}

// HandleScheduleStatus returns the session's parse/match progress.
func (h *Handler) HandleScheduleStatus(c echo.Context) error {
	sess, ok := h.sessions.Snapshot(c.Param("sessionId"))
	if !ok {
		return NewNotFoundError("session", c.Param("sessionId"))
	}
	return c.JSON(http.StatusOK, sess)
}

// HandleSessionKeepAlive refreshes the session's cleanup timer.
func (h *Handler) HandleSessionKeepAlive(c echo.Context) error {
	if !h.sessions.KeepAlive(c.Param("sessionId")) {
		return NewNotFoundError("session", c.Param("sessionId"))
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleTurnarounds returns the matched ground stays of a completed
// session, optionally filtered by station and aircraft.
func (h *Handler) HandleTurnarounds(c echo.Context) error {
	state, err := h.completedSession(c)
	if err != nil {
		return err
	}

	station := c.QueryParam("station")
	aircraft := c.QueryParam("aircraft")

	turnarounds := make([]models.Turnaround, 0, len(state.Turnarounds))
	for _, t := range state.Turnarounds {
		if station != "" && t.Station != station {
			continue
		}
		if aircraft != "" && t.AircraftID != aircraft {
			continue
		}
		turnarounds = append(turnarounds, t)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"turnarounds": turnarounds,
		"total":       len(state.Turnarounds),
	})
}

// HandleDateRange returns the first arrival day and last departure day of
// the matched set, for the frontend's date picker.
func (h *Handler) HandleDateRange(c echo.Context) error {
	state, err := h.completedSession(c)
	if err != nil {
		return err
	}

	from, to, ok := schedule.DateRange(state.Turnarounds)
	if !ok {
		return c.JSON(http.StatusOK, map[string]interface{}{"empty": true})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"empty": false,
		"from":  from.Format(dayFormat),
		"to":    to.Format(dayFormat),
	})
}

// HandleDaySegments returns the display segments for one calendar day.
func (h *Handler) HandleDaySegments(c echo.Context) error {
	state, day, err := h.sessionAndDay(c)
	if err != nil {
		return err
	}

	segments := schedule.SegmentsForDay(state.Turnarounds, day)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"day":      day.Format(dayFormat),
		"segments": segments,
	})
}

// HandleDaySegmentsMsgpack is HandleDaySegments with a msgpack body, for
// frontends loading many days at once.
func (h *Handler) HandleDaySegmentsMsgpack(c echo.Context) error {
	state, day, err := h.sessionAndDay(c)
	if err != nil {
		return err
	}

	segments := schedule.SegmentsForDay(state.Turnarounds, day)
	payload, err := msgpack.Marshal(segments)
	if err != nil {
		return NewInternalError("failed to encode segments", err)
	}
	return c.Blob(http.StatusOK, "application/x-msgpack", payload)
}

// HandleRangeSegments returns segments for every day in [from, to].
func (h *Handler) HandleRangeSegments(c echo.Context) error {
	state, err := h.completedSession(c)
	if err != nil {
		return err
	}

	from, err := time.ParseInLocation(dayFormat, c.QueryParam("from"), time.Local)
	if err != nil {
		return NewValidationError("from")
	}
	to, err := time.ParseInLocation(dayFormat, c.QueryParam("to"), time.Local)
	if err != nil {
		return NewValidationError("to")
	}
	if to.Before(from) {
		return NewBadRequestError("to is before from", nil)
	}

	return c.JSON(http.StatusOK, schedule.SegmentsForRange(state.Turnarounds, from, to))
}

// HandleEvents pages through the session's raw events.
func (h *Handler) HandleEvents(c echo.Context) error {
	state, err := h.completedSession(c)
	if err != nil {
		return err
	}
	if state.EventStore == nil {
		return NewServiceUnavailableError("event store unavailable for this session")
	}

	filter := parser.EventFilter{
		AircraftID: c.QueryParam("aircraft"),
		Station:    c.QueryParam("station"),
		Limit:      100,
	}

	switch c.QueryParam("kind") {
	case "":
	case string(models.EventKindArrival):
		filter.Kind = models.EventKindArrival
	case string(models.EventKindDeparture):
		filter.Kind = models.EventKindDeparture
	default:
		return NewValidationError("kind")
	}

	if v := c.QueryParam("day"); v != "" {
		day, err := time.ParseInLocation(dayFormat, v, time.Local)
		if err != nil {
			return NewValidationError("day")
		}
		filter.Day = &day
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 10000 {
			return NewValidationError("limit")
		}
		filter.Limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return NewValidationError("offset")
		}
		filter.Offset = n
	}

	events, err := state.EventStore.Events(filter)
	if err != nil {
		return NewInternalError("failed to query events", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"events": events,
		"total":  state.EventStore.Count(),
	})
}

// session resolves the :sessionId path parameter.
func (h *Handler) session(c echo.Context) (*session.State, error) {
	id := c.Param("sessionId")
	state, ok := h.sessions.Get(id)
	if !ok {
		return nil, NewNotFoundError("session", id)
	}
	return state, nil
}

// completedSession resolves the session and requires matching to be done.
// Turnarounds and the event store are written before the status flips to
// complete, so they are safe to read once the snapshot says so.
func (h *Handler) completedSession(c echo.Context) (*session.State, error) {
	snap, ok := h.sessions.Snapshot(c.Param("sessionId"))
	if !ok {
		return nil, NewNotFoundError("session", c.Param("sessionId"))
	}
	switch snap.Status {
	case models.SessionStatusComplete:
		return h.session(c)
	case models.SessionStatusError:
		return nil, NewConflictError("session failed; check its status for errors")
	default:
		return nil, NewConflictError("session is still processing")
	}
}

// sessionAndDay additionally parses the :date path parameter.
func (h *Handler) sessionAndDay(c echo.Context) (*session.State, time.Time, error) {
	state, err := h.completedSession(c)
	if err != nil {
		return nil, time.Time{}, err
	}
	day, err := time.ParseInLocation(dayFormat, c.Param("date"), time.Local)
	if err != nil {
		return nil, time.Time{}, NewValidationError("date")
	}
	return state, day, nil
}
