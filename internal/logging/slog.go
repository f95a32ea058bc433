package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation    = "operation"
	KeyService      = "service"
	KeyCalendar     = "calendar"
	KeyRoom         = "room"
	KeyAvailability = "availability"
	KeyRunID        = "run_id"
	KeyTraceID      = "trace_id"
	KeyDuration     = "duration"
	KeyStatus       = "status"
	KeyError        = "error"
)

// resourceCalendarSuffix marks calendars that belong to rooms and other
// bookable resources rather than people.
const resourceCalendarSuffix = "@resource.calendar.google.com"

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithService returns a logger with the service attribute set.
func WithService(logger *slog.Logger, service string) *slog.Logger {
	return logger.With(slog.String(KeyService, service))
}

// WithRunID returns a logger that tags every record with the check's run ID.
func WithRunID(logger *slog.Logger, runID string) *slog.Logger {
	return logger.With(slog.String(KeyRunID, runID))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Service returns a slog attribute for the service name.
func Service(svc string) slog.Attr {
	return slog.String(KeyService, svc)
}

// Room returns a slog attribute for the room (calendar display name).
func Room(name string) slog.Attr {
	return slog.String(KeyRoom, name)
}

// Availability returns a slog attribute for a room verdict.
func Availability(availability string) slog.Attr {
	return slog.String(KeyAvailability, availability)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Duration returns a slog attribute for an elapsed time.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration(KeyDuration, d)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
// This allows safely passing Err(maybeNilErr) without adding empty attributes.
//
// Usage:
//
//	logger.Info("operation", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		// Return an empty Group that slog will omit from output
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeCalendarID returns a loggable form of a calendar ID.
// Room and resource calendars are returned unchanged. Any other ID is usually a
// person's email address and is replaced by a short hash, which still allows
// correlating log entries.
func AnonymizeCalendarID(id string) string {
	if id == "" {
		return ""
	}
	if strings.HasSuffix(id, resourceCalendarSuffix) || !strings.Contains(id, "@") {
		return id
	}
	hash := sha256.Sum256([]byte(id))
	return "user:" + hex.EncodeToString(hash[:8])
}

// Calendar returns a slog attribute with the anonymized calendar ID.
//
// Usage:
//
//	logger.Debug("fetching next event", logging.Calendar(cal.ID))
func Calendar(id string) slog.Attr {
	return slog.String(KeyCalendar, AnonymizeCalendarID(id))
}

// SanitizeToken returns a masked version of a token for logging.
// It returns a length indicator without exposing any token content,
// as even partial token prefixes (like JWT headers) can aid attacks.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}
