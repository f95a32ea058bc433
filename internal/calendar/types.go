package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// CalendarInfo represents information about a calendar
type CalendarInfo struct {
	ID          string
	Summary     string // display name, e.g. "БЦ Риальто - Room A"
	Description string
	TimeZone    string
	Primary     bool
	AccessRole  string // "owner", "writer", "reader", "freeBusyReader"
}

// EventTime is the start or end of an event exactly as the API returned it.
// Timed events carry DateTime (RFC 3339); all-day events carry Date only.
type EventTime struct {
	DateTime string
	Date     string
	TimeZone string
}

// AllDay reports whether the time is a bare date
func (t EventTime) AllDay() bool {
	return t.DateTime == "" && t.Date != ""
}

// IsZero reports whether the API sent no time at all
func (t EventTime) IsZero() bool {
	return t.DateTime == "" && t.Date == ""
}

// EventSummary represents the parts of an event needed to judge availability
type EventSummary struct {
	ID      string
	Summary string
	Status  string
	Start   EventTime
	End     EventTime
}

// AllDay reports whether the event spans whole days
func (e EventSummary) AllDay() bool {
	return e.Start.AllDay()
}

// EventQuery holds the constraints for fetching upcoming events
type EventQuery struct {
	// TimeMin excludes events that end before it (required)
	TimeMin time.Time

	// TimeZone is the zone the API renders event times in (optional)
	TimeZone string
}

// toEventSummary converts a Google Calendar event to an EventSummary
func toEventSummary(event *calendar.Event) EventSummary {
	if event == nil {
		return EventSummary{}
	}

	return EventSummary{
		ID:      event.Id,
		Summary: event.Summary,
		Status:  event.Status,
		Start:   toEventTime(event.Start),
		End:     toEventTime(event.End),
	}
}

func toEventTime(t *calendar.EventDateTime) EventTime {
	if t == nil {
		return EventTime{}
	}
	return EventTime{
		DateTime: t.DateTime,
		Date:     t.Date,
		TimeZone: t.TimeZone,
	}
}

// toCalendarInfo converts a Google Calendar list entry to CalendarInfo
func toCalendarInfo(entry *calendar.CalendarListEntry) CalendarInfo {
	if entry == nil {
		return CalendarInfo{}
	}

	return CalendarInfo{
		ID:          entry.Id,
		Summary:     entry.Summary,
		Description: entry.Description,
		TimeZone:    entry.TimeZone,
		Primary:     entry.Primary,
		AccessRole:  entry.AccessRole,
	}
}
