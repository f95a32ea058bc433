package rooms

import (
	"strings"

	"github.com/teemow/freerooms/internal/calendar"
)

// DefaultMarker identifies the meeting-room calendars of the office
const DefaultMarker = "БЦ Риальто"

// IsRoom reports whether the calendar's display name contains marker.
// The match is case-sensitive and an empty marker matches everything.
func IsRoom(cal calendar.CalendarInfo, marker string) bool {
	return strings.Contains(cal.Summary, marker)
}

// FilterByMarker keeps the calendars whose display name contains marker,
// in their original order. An empty marker keeps them all.
func FilterByMarker(calendars []calendar.CalendarInfo, marker string) []calendar.CalendarInfo {
	filtered := make([]calendar.CalendarInfo, 0, len(calendars))
	for _, cal := range calendars {
		if IsRoom(cal, marker) {
			filtered = append(filtered, cal)
		}
	}
	return filtered
}
