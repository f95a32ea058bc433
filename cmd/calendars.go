package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/teemow/freerooms/internal/calendar"
	"github.com/teemow/freerooms/internal/rooms"
)

func newCalendarsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calendars",
		Short: "List your calendars and whether they are treated as rooms",
		Long: `Lists every calendar on your calendar list with its ID. The ROOM column
shows whether the calendar's name contains the room marker, which helps when
choosing a value for --marker.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCalendars(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func runCalendars(ctx context.Context, out io.Writer) error {
	client, err := newCalendarClient(ctx, nil)
	if err != nil {
		return err
	}

	calendars, err := client.ListCalendars(ctx)
	if err != nil {
		return err
	}

	return writeCalendarTable(out, calendars, globals.marker)
}

func writeCalendarTable(out io.Writer, calendars []calendar.CalendarInfo, marker string) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tID\tROOM")
	for _, cal := range calendars {
		room := "no"
		if rooms.IsRoom(cal, marker) {
			room = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", cal.Summary, cal.ID, room)
	}
	return tw.Flush()
}
