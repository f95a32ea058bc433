package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/freerooms/internal/google"
	"github.com/teemow/freerooms/internal/instrumentation"
)

// Client wraps the Google Calendar service
type Client struct {
	svc     *calendar.Service
	metrics *instrumentation.Metrics
}

// NewClient creates a new Calendar client.
// When ts is non-nil, requests are authenticated with it over HTTP/1.1.
// Additional options are passed to the service (e.g. option.WithEndpoint).
// metrics may be nil.
func NewClient(ctx context.Context, ts oauth2.TokenSource, metrics *instrumentation.Metrics, opts ...option.ClientOption) (*Client, error) {
	if ts != nil {
		opts = append([]option.ClientOption{option.WithHTTPClient(google.NewHTTPClient(ctx, ts))}, opts...)
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}

	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{
		svc:     svc,
		metrics: metrics,
	}, nil
}

// ListCalendars lists all calendars accessible to the user, following pagination
func (c *Client) ListCalendars(ctx context.Context) (calendars []CalendarInfo, err error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, instrumentation.OperationList)
	defer span.End()
	defer c.observe(ctx, instrumentation.OperationList, time.Now(), &err)

	err = c.svc.CalendarList.List().Pages(ctx, func(page *calendar.CalendarList) error {
		for _, entry := range page.Items {
			calendars = append(calendars, toCalendarInfo(entry))
		}
		return nil
	})
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	instrumentation.SetSpanSuccess(span)
	return calendars, nil
}

// NextEvent returns the soonest event of the calendar that has not ended by
// q.TimeMin, expanding recurring events into single instances.
// It returns nil and no error when the calendar has no upcoming events.
func (c *Client) NextEvent(ctx context.Context, calendarID string, q EventQuery) (_ *EventSummary, err error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, instrumentation.OperationGet,
		instrumentation.NewSpanAttributeBuilder().WithCalendar(calendarID).Build()...)
	defer span.End()
	defer c.observe(ctx, instrumentation.OperationGet, time.Now(), &err)

	call := c.svc.Events.List(calendarID).
		TimeMin(q.TimeMin.UTC().Format(time.RFC3339)).
		MaxResults(1).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)

	if q.TimeZone != "" {
		call = call.TimeZone(q.TimeZone)
	}

	events, err := call.Do()
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to list events of calendar %s: %w", calendarID, err)
	}

	instrumentation.SetSpanSuccess(span)
	if len(events.Items) == 0 {
		return nil, nil
	}

	event := toEventSummary(events.Items[0])
	return &event, nil
}

// observe records the outcome of one API operation
func (c *Client) observe(ctx context.Context, operation string, start time.Time, err *error) {
	status := instrumentation.StatusSuccess
	if *err != nil {
		status = instrumentation.StatusError
	}
	c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, operation, status, time.Since(start))
}
