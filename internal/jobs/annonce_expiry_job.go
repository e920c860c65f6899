package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/transportconnect/marketplace/internal/api/metrics"
)

const expiryRunTimeout = time.Minute

// AnnonceExpirer deactivates annonces whose departure date has passed.
type AnnonceExpirer interface {
	ExpireDeparted(ctx context.Context) (int64, error)
}

// AnnonceExpiryJob periodically takes departed annonces out of search results.
type AnnonceExpiryJob struct {
	expirer  AnnonceExpirer
	schedule string
	cron     *cron.Cron
	logger   zerolog.Logger
}

// NewAnnonceExpiryJob creates the job for the given cron schedule
// (standard five fields or a descriptor such as "@every 10m").
func NewAnnonceExpiryJob(expirer AnnonceExpirer, schedule string, logger zerolog.Logger) *AnnonceExpiryJob {
	return &AnnonceExpiryJob{
		expirer:  expirer,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With().Str("component", "annonce_expiry_job").Logger(),
	}
}

// Start registers the run and starts the scheduler.
func (j *AnnonceExpiryJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info().Str("schedule", j.schedule).Msg("annonce expiry job started")
	return nil
}

// Stop stops the scheduler and waits for a running pass to finish.
func (j *AnnonceExpiryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info().Msg("annonce expiry job stopped")
}

func (j *AnnonceExpiryJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), expiryRunTimeout)
	defer cancel()

	n, err := j.expirer.ExpireDeparted(ctx)
	if err != nil {
		j.logger.Error().Err(err).Msg("annonce expiry failed")
		return
	}
	metrics.AnnoncesExpiredTotal.Add(float64(n))
}
