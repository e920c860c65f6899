package jobs

import (
	"fmt"

	"github.com/rs/zerolog"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	annonceExpiryJob *AnnonceExpiryJob
}

// NewJobManager creates a job manager with all required jobs.
func NewJobManager(expirer AnnonceExpirer, expirySchedule string, logger zerolog.Logger) *JobManager {
	return &JobManager{
		annonceExpiryJob: NewAnnonceExpiryJob(expirer, expirySchedule, logger),
	}
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if err := jm.annonceExpiryJob.Start(); err != nil {
		return fmt.Errorf("failed to start annonce expiry job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.annonceExpiryJob.Stop()
}
