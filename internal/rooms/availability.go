package rooms

import (
	"errors"
	"fmt"
	"time"

	"github.com/teemow/freerooms/internal/calendar"
)

// Availability is the verdict reached for a room
type Availability string

const (
	// Free means no event is in progress
	Free Availability = "free"

	// Busy means an event is in progress
	Busy Availability = "busy"

	// Unknown means the calendar has no upcoming events to judge by
	Unknown Availability = "unknown"

	// Error means the room's events could not be fetched or understood
	Error Availability = "error"
)

// ErrNoEventTime is returned when an event boundary carries neither a
// timestamp nor a date.
var ErrNoEventTime = errors.New("event time is missing")

// dateLayout is the layout of all-day event dates
const dateLayout = "2006-01-02"

// RoomStatus is the outcome of checking one room calendar
type RoomStatus struct {
	CalendarID   string
	Room         string
	Availability Availability

	// Until is when the verdict changes: the event start for a free room,
	// the event end for a busy one. Zero for unknown and error.
	Until time.Time

	// Err is set for rooms with Error availability
	Err error
}

// ParseEventTime converts an event boundary into an instant.
// Timestamps keep the offset they were sent with. All-day dates start at
// midnight in loc.
func ParseEventTime(t calendar.EventTime, loc *time.Location) (time.Time, error) {
	if t.IsZero() {
		return time.Time{}, ErrNoEventTime
	}

	if !t.AllDay() {
		parsed, err := time.Parse(time.RFC3339Nano, t.DateTime)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid event timestamp %q: %w", t.DateTime, err)
		}
		return parsed, nil
	}

	if loc == nil {
		loc = time.UTC
	}
	parsed, err := time.ParseInLocation(dateLayout, t.Date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid event date %q: %w", t.Date, err)
	}
	return parsed, nil
}

// Evaluate decides whether the room is occupied at now by the given event.
// The room is busy iff start <= now < end; it is free otherwise, including
// after the event has ended.
func Evaluate(event calendar.EventSummary, now time.Time, loc *time.Location) (Availability, time.Time, error) {
	start, err := ParseEventTime(event.Start, loc)
	if err != nil {
		return Error, time.Time{}, fmt.Errorf("event %s start: %w", event.ID, err)
	}
	end, err := ParseEventTime(event.End, loc)
	if err != nil {
		return Error, time.Time{}, fmt.Errorf("event %s end: %w", event.ID, err)
	}

	if !now.Before(start) && now.Before(end) {
		return Busy, end, nil
	}
	return Free, start, nil
}
