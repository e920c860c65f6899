package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/transportconnect/marketplace/internal/api/metrics"
	"github.com/transportconnect/marketplace/internal/core/domain"
	"github.com/transportconnect/marketplace/internal/core/ports"
)

// DedupChecker abstracts the idempotency store (Redis).
type DedupChecker interface {
	IsDuplicate(ctx context.Context, demandeID string, lat, lng float64, ts time.Time) (bool, error)
	Mark(ctx context.Context, demandeID string, lat, lng float64, ts time.Time) error
}

type positionService struct {
	demandes ports.DemandeRepository
	events   ports.EventRepository
	dedup    DedupChecker
	log      zerolog.Logger
}

// NewPositionService returns a PositionService implementation.
func NewPositionService(
	demandes ports.DemandeRepository,
	events ports.EventRepository,
	dedup DedupChecker,
	log zerolog.Logger,
) ports.PositionService {
	return &positionService{
		demandes: demandes,
		events:   events,
		dedup:    dedup,
		log:      log,
	}
}

// Process validates, deduplicates, and persists a single position ping.
func (s *positionService) Process(ctx context.Context, in ports.PositionInput) error {
	start := time.Now()

	isDup, err := s.dedup.IsDuplicate(ctx, in.DemandeID, in.Lat, in.Lng, in.Timestamp)
	if err != nil {
		s.log.Warn().Err(err).Str("demande_id", in.DemandeID).Msg("dedup check failed, processing anyway")
	} else if isDup {
		metrics.PositionDedupTotal.WithLabelValues("hit").Inc()
		s.log.Debug().Str("demande_id", in.DemandeID).Msg("duplicate position skipped")
		return nil
	}
	metrics.PositionDedupTotal.WithLabelValues("miss").Inc()

	d, err := s.demandes.FindByID(ctx, in.DemandeID)
	if err != nil {
		metrics.PositionErrorsTotal.WithLabelValues("demande_not_found").Inc()
		return fmt.Errorf("process position: %w", err)
	}
	if d.ConducteurID != in.ConducteurID {
		metrics.PositionErrorsTotal.WithLabelValues("forbidden").Inc()
		return fmt.Errorf("process position: %w", domain.ErrForbidden)
	}
	switch d.Statut {
	case domain.StatusEnCours, domain.StatusEnlevee, domain.StatusEnTransit:
	default:
		metrics.PositionErrorsTotal.WithLabelValues("not_in_progress").Inc()
		return fmt.Errorf("process position: %w (statut %s)", domain.ErrPositionNotAllowed, d.Statut)
	}

	// Mark before writing so a retried ping is not applied twice.
	if markErr := s.dedup.Mark(ctx, in.DemandeID, in.Lat, in.Lng, in.Timestamp); markErr != nil {
		s.log.Warn().Err(markErr).Str("demande_id", in.DemandeID).Msg("failed to set dedup key")
	}

	pos := domain.Position{
		Lat:       in.Lat,
		Lng:       in.Lng,
		Adresse:   in.Adresse,
		MiseAJour: in.Timestamp.UTC(),
	}
	if err := s.events.UpdatePosition(ctx, in.DemandeID, pos); err != nil {
		metrics.PositionErrorsTotal.WithLabelValues("update_failed").Inc()
		return fmt.Errorf("process position: update: %w", err)
	}

	metrics.PositionsProcessedTotal.Inc()
	metrics.PositionProcessingDuration.Observe(time.Since(start).Seconds())
	s.log.Debug().
		Str("demande_id", in.DemandeID).
		Float64("lat", in.Lat).
		Float64("lng", in.Lng).
		Msg("position processed")

	return nil
}
