package google

import (
	calendar "google.golang.org/api/calendar/v3"
)

// DefaultOAuthScopes are the Google OAuth scopes requested by freerooms.
// Room availability only needs to read calendar lists and events.
var DefaultOAuthScopes = []string{
	calendar.CalendarReadonlyScope,
}
