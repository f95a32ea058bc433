// Package rooms decides which meeting rooms are free right now.
//
// A check lists the user's calendars, keeps those whose name contains the
// room marker, fetches the next event of each room calendar and compares it
// with the current time. A room is busy while an event is in progress and free
// otherwise. Rooms without upcoming events are reported as unknown; rooms that
// could not be checked are reported as errors without stopping the others.
//
//	checker, err := rooms.NewChecker(rooms.CheckerConfig{
//	    Service: client,
//	    Marker:  rooms.DefaultMarker,
//	})
//	if err != nil {
//	    return err
//	}
//
//	result, err := checker.Check(ctx)
//	if err != nil {
//	    return err
//	}
//	_ = rooms.NewReporter(os.Stdout, false).Report(result.Rooms)
package rooms
