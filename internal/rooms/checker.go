package rooms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/teemow/freerooms/internal/calendar"
	"github.com/teemow/freerooms/internal/instrumentation"
	"github.com/teemow/freerooms/internal/logging"
)

// DefaultTimeZone is the zone events are requested in and all-day events are read in
const DefaultTimeZone = "Europe/Kiev"

// CalendarService is the subset of the Calendar API a check needs
type CalendarService interface {
	ListCalendars(ctx context.Context) ([]calendar.CalendarInfo, error)
	NextEvent(ctx context.Context, calendarID string, q calendar.EventQuery) (*calendar.EventSummary, error)
}

// CheckerConfig holds the dependencies and settings of a Checker
type CheckerConfig struct {
	// Service fetches calendars and events (required)
	Service CalendarService

	// Marker selects room calendars by display name; empty keeps every
	// calendar. Callers normally pass DefaultMarker.
	Marker string

	// TimeZone is an IANA zone name (default: DefaultTimeZone)
	TimeZone string

	// Now returns the current instant (default: time.Now)
	Now func() time.Time

	// Metrics records check outcomes (optional)
	Metrics *instrumentation.Metrics

	// Logger defaults to slog.Default()
	Logger *slog.Logger
}

// Checker determines which room calendars are free at the moment
type Checker struct {
	service  CalendarService
	marker   string
	timeZone string
	location *time.Location
	now      func() time.Time
	metrics  *instrumentation.Metrics
	logger   *slog.Logger
}

// NewChecker creates a Checker from the given configuration
func NewChecker(cfg CheckerConfig) (*Checker, error) {
	if cfg.Service == nil {
		return nil, fmt.Errorf("calendar service cannot be nil")
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = DefaultTimeZone
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &instrumentation.Metrics{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", cfg.TimeZone, err)
	}

	return &Checker{
		service:  cfg.Service,
		marker:   cfg.Marker,
		timeZone: cfg.TimeZone,
		location: loc,
		now:      cfg.Now,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}, nil
}

// Result is the outcome of one check
type Result struct {
	RunID     string
	CheckedAt time.Time
	Rooms     []RoomStatus
}

// Count returns the number of rooms with the given availability
func (r *Result) Count(a Availability) int {
	n := 0
	for _, room := range r.Rooms {
		if room.Availability == a {
			n++
		}
	}
	return n
}

// Err joins the errors of all rooms that could not be checked
func (r *Result) Err() error {
	var errs []error
	for _, room := range r.Rooms {
		if room.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", room.Room, room.Err))
		}
	}
	return errors.Join(errs...)
}

// Check lists the calendars, keeps the room calendars, and judges each room by
// its next event. Rooms are checked one after another. A room that cannot be
// checked is reported with Error availability and does not stop the others;
// only failing to list calendars aborts the check.
func (c *Checker) Check(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID:     uuid.NewString(),
		CheckedAt: c.now(),
	}

	logger := logging.WithRunID(c.logger, result.RunID)
	ctx, span := instrumentation.StartSpan(ctx, "freerooms.check",
		instrumentation.NewSpanAttributeBuilder().WithRunID(result.RunID).Build()...)
	defer span.End()
	if traceID := instrumentation.GetTraceID(ctx); traceID != "" {
		logger = logger.With(slog.String(logging.KeyTraceID, traceID))
	}
	roomLogger := logging.WithOperation(logger, "check_room")

	calendars, err := c.service.ListCalendars(ctx)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		c.metrics.RecordCheckRun(ctx, instrumentation.StatusError, time.Since(start))
		return nil, err
	}

	candidates := FilterByMarker(calendars, c.marker)
	logger.Debug("filtered calendars",
		slog.Int("total", len(calendars)),
		slog.Int("rooms", len(candidates)),
		slog.String("marker", c.marker))

	for _, cal := range candidates {
		if err := ctx.Err(); err != nil {
			instrumentation.SetSpanError(span, err)
			c.metrics.RecordCheckRun(ctx, instrumentation.StatusError, time.Since(start))
			return nil, err
		}

		status := c.checkRoom(ctx, cal, result.CheckedAt)
		result.Rooms = append(result.Rooms, status)

		c.metrics.RecordRoomStatus(ctx, string(status.Availability))
		if status.Err != nil {
			roomLogger.Error("room check failed",
				logging.Room(status.Room),
				logging.Calendar(status.CalendarID),
				logging.Err(status.Err))
			continue
		}
		roomLogger.Debug("room evaluated",
			logging.Room(status.Room),
			logging.Availability(string(status.Availability)),
			slog.Time("until", status.Until))
	}

	c.metrics.SetFreeRooms(ctx, result.Count(Free))

	runStatus := instrumentation.StatusSuccess
	if err := result.Err(); err != nil {
		runStatus = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	c.metrics.RecordCheckRun(ctx, runStatus, time.Since(start))

	logger.Info("check complete",
		logging.Operation("check"),
		logging.Status(runStatus),
		slog.Int("rooms", len(result.Rooms)),
		slog.Int("free", result.Count(Free)),
		slog.Int("busy", result.Count(Busy)),
		slog.Int("unknown", result.Count(Unknown)),
		slog.Int("failed", result.Count(Error)),
		logging.Duration(time.Since(start)))

	return result, nil
}

// checkRoom fetches the next event of one room calendar and evaluates it
func (c *Checker) checkRoom(ctx context.Context, cal calendar.CalendarInfo, now time.Time) RoomStatus {
	ctx, span := instrumentation.StartSpan(ctx, "freerooms.check_room",
		instrumentation.NewSpanAttributeBuilder().WithCalendar(cal.ID).WithRoom(cal.Summary).Build()...)
	defer span.End()

	status := RoomStatus{
		CalendarID: cal.ID,
		Room:       cal.Summary,
	}

	event, err := c.service.NextEvent(ctx, cal.ID, calendar.EventQuery{
		TimeMin:  now.UTC(),
		TimeZone: c.timeZone,
	})
	switch {
	case err != nil:
		status.Availability = Error
		status.Err = err
	case event == nil:
		status.Availability = Unknown
	default:
		status.Availability, status.Until, status.Err = Evaluate(*event, now, c.location)
	}

	instrumentation.AddSpanEvent(span, "room.evaluated",
		instrumentation.NewSpanAttributeBuilder().WithAvailability(string(status.Availability)).Build()...)
	if status.Err != nil {
		instrumentation.SetSpanError(span, status.Err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}

	return status
}
