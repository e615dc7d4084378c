package jobs

import (
	"log/slog"
	"time"

	"linkpulse/internal/sessions"
)

// SessionSweepJob evicts expired visitor sessions from the in-memory
// tracker so it does not grow without bound.
type SessionSweepJob struct {
	tracker *sessions.Tracker
	logger  *slog.Logger
}

func NewSessionSweepJob(tracker *sessions.Tracker, logger *slog.Logger) *SessionSweepJob {
	return &SessionSweepJob{
		tracker: tracker,
		logger:  logger,
	}
}

func (j *SessionSweepJob) Run() error {
	removed := j.tracker.Sweep(time.Now().UTC())
	if removed > 0 {
		j.logger.Debug("Swept expired sessions",
			slog.Int("removed", removed),
			slog.Int("remaining", j.tracker.Len()))
	}
	return nil
}
