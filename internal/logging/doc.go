// Package logging provides structured logging utilities for freerooms.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Logger construction for text or JSON output
//   - Calendar ID anonymization for personal calendars
//   - Consistent attribute naming across the codebase
//   - An adapter that routes scheduler messages into slog
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithRunID(slog.Default(), runID)
//	logger.Info("room evaluated",
//	    logging.Room(name),
//	    logging.Availability("free"))
//
// Sanitize sensitive data before logging:
//
//	logger.Debug("fetching next event",
//	    logging.Calendar(calendarID))
//
// # Security Considerations
//
//   - Personal calendar IDs (email addresses) are hashed; room calendars are not
//   - Tokens are never logged directly
package logging
