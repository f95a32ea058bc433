package rooms

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/teemow/freerooms/internal/calendar"
)

// fakeService serves canned calendars and events and records every query
type fakeService struct {
	calendars []calendar.CalendarInfo
	events    map[string]*calendar.EventSummary
	errs      map[string]error
	listErr   error

	queried []string
	queries []calendar.EventQuery
}

func (f *fakeService) ListCalendars(context.Context) ([]calendar.CalendarInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.calendars, nil
}

func (f *fakeService) NextEvent(_ context.Context, id string, q calendar.EventQuery) (*calendar.EventSummary, error) {
	f.queried = append(f.queried, id)
	f.queries = append(f.queries, q)
	if err := f.errs[id]; err != nil {
		return nil, err
	}
	return f.events[id], nil
}

var errForbidden = errors.New("googleapi: Error 403: forbidden")

func timedEvent(id, start, end string) *calendar.EventSummary {
	return &calendar.EventSummary{
		ID:    id,
		Start: calendar.EventTime{DateTime: start},
		End:   calendar.EventTime{DateTime: end},
	}
}

func fixedNow(value string) func() time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
