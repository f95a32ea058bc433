// Package calendar provides a read-only client for the Google Calendar API.
//
// It lists the calendars visible to the user and fetches the next upcoming
// event of a calendar. Event times are returned as the API sent them; turning
// them into instants is left to the caller, which knows the zone all-day
// events should be read in.
//
// Example usage:
//
//	client, err := calendar.NewClient(ctx, tokenSource, metrics)
//	if err != nil {
//	    return err
//	}
//
//	calendars, err := client.ListCalendars(ctx)
//	if err != nil {
//	    return err
//	}
//
//	event, err := client.NextEvent(ctx, calendars[0].ID, calendar.EventQuery{
//	    TimeMin:  time.Now(),
//	    TimeZone: "Europe/Kiev",
//	})
package calendar
