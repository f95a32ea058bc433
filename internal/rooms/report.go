package rooms

import (
	"fmt"
	"io"
)

// TimestampLayout is how boundary times are printed, in the event's own offset
const TimestampLayout = "2006-01-02 15:04:05"

// Reporter prints one line per room worth mentioning
type Reporter struct {
	out      io.Writer
	showBusy bool
}

// NewReporter creates a Reporter writing to out. Busy rooms are only printed
// when showBusy is set.
func NewReporter(out io.Writer, showBusy bool) *Reporter {
	return &Reporter{out: out, showBusy: showBusy}
}

// Report writes the lines for the given rooms in order
func (r *Reporter) Report(rooms []RoomStatus) error {
	for _, room := range rooms {
		line, ok := r.Line(room)
		if !ok {
			continue
		}
		if _, err := fmt.Fprintln(r.out, line); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}

// Line formats a single room. It returns false for rooms that produce no line:
// busy rooms (unless enabled) and rooms that failed, which are only logged.
func (r *Reporter) Line(room RoomStatus) (string, bool) {
	switch room.Availability {
	case Free:
		return fmt.Sprintf("%s, is free till %s", room.Room, room.Until.Format(TimestampLayout)), true
	case Unknown:
		return fmt.Sprintf("%s, has no upcoming events", room.Room), true
	case Busy:
		if r.showBusy {
			return fmt.Sprintf("%s, is busy till %s", room.Room, room.Until.Format(TimestampLayout)), true
		}
	}
	return "", false
}
