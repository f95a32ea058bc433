// Package cmd implements the command-line interface for freerooms.
//
// This package provides the following commands:
//   - check: Print the meeting rooms that are free right now
//   - calendars: List calendars and whether they match the room marker
//   - login: Run the Google OAuth consent flow and cache the token
//   - watch: Repeat the check on a cron schedule and expose metrics
//   - version: Display version information
//
// The check command is the default command when no subcommand is specified.
package cmd
