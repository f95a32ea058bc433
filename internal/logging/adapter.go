package logging

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// CronAdapter adapts an slog.Logger to the cron.Logger interface so that the
// scheduler's own messages end up in the structured log.
type CronAdapter struct {
	logger *slog.Logger
}

var _ cron.Logger = (*CronAdapter)(nil)

// NewCronAdapter creates a new CronAdapter wrapping the given slog.Logger.
// If logger is nil, slog.Default() is used.
func NewCronAdapter(logger *slog.Logger) *CronAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CronAdapter{logger: WithService(logger, "scheduler")}
}

// Info logs routine scheduler messages. The scheduler is chatty (it reports
// every wakeup), so these are emitted at debug level.
// Arguments should be provided as alternating key-value pairs: key1, value1, key2, value2, ...
func (a *CronAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Debug(msg, keysAndValues...)
}

// Error logs a scheduler error, such as a recovered panic in a job.
// Arguments should be provided as alternating key-value pairs: key1, value1, key2, value2, ...
func (a *CronAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]interface{}{Err(err)}, keysAndValues...)
	a.logger.Error(msg, args...)
}
