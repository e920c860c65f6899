package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/transportconnect/marketplace/internal/core/domain"
	"github.com/transportconnect/marketplace/internal/core/ports"
)

const annonceDeletedComment = "Annonce supprimée"

// demandeResponder is the slice of the workflow AnnonceService needs to close
// pending demandes before a delete.
type demandeResponder interface {
	Respond(ctx context.Context, id string, actor domain.Actor, action, comment string) (*domain.Demande, error)
}

type AnnonceService struct {
	annonces ports.AnnonceRepository
	demandes ports.DemandeRepository
	workflow demandeResponder
	logger   zerolog.Logger
	now      func() time.Time
}

func NewAnnonceService(
	annonces ports.AnnonceRepository,
	demandes ports.DemandeRepository,
	workflow demandeResponder,
	logger zerolog.Logger,
) *AnnonceService {
	return &AnnonceService{
		annonces: annonces,
		demandes: demandes,
		workflow: workflow,
		logger:   logger,
		now:      time.Now,
	}
}

// Create publishes a new active annonce for the driver.
func (s *AnnonceService) Create(ctx context.Context, in ports.CreateAnnonceInput) (*domain.Annonce, error) {
	if !in.DateArriveeEstimee.IsZero() && in.DateArriveeEstimee.Before(in.DateDepart) {
		return nil, fmt.Errorf("%w: arrival before departure", domain.ErrInvalidInput)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	a := &domain.Annonce{
		ID:                   uuid.NewString(),
		ConducteurID:         in.ConducteurID,
		LieuDepart:           in.LieuDepart,
		LieuArrivee:          in.LieuArrivee,
		EtapesIntermediaires: in.EtapesIntermediaires,
		DateDepart:           in.DateDepart.UTC(),
		DateArriveeEstimee:   in.DateArriveeEstimee.UTC(),
		Capacite:             in.Capacite,
		TypesColisAcceptes:   in.TypesColisAcceptes,
		PrixParKg:            in.PrixParKg,
		Description:          strings.TrimSpace(in.Description),
		Statut:               domain.AnnonceActive,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.annonces.Create(ctx, a); err != nil {
		s.logger.Error().Err(err).Msg("failed to create annonce")
		return nil, err
	}
	s.logger.Info().Str("annonce_id", a.ID).Str("conducteur_id", a.ConducteurID).Msg("annonce created")
	return a, nil
}

func (s *AnnonceService) Get(ctx context.Context, id string) (*domain.Annonce, error) {
	return s.annonces.FindByID(ctx, id)
}

// List searches annonces; without an explicit status only active ones are returned.
func (s *AnnonceService) List(ctx context.Context, in ports.ListAnnoncesInput) (*ports.ListAnnoncesResult, error) {
	page, limit := normalizePage(in.Page, in.Limit)

	statut := in.Statut
	if statut == "" {
		statut = string(domain.AnnonceActive)
	}

	items, total, err := s.annonces.List(ctx, ports.ListAnnoncesFilter{
		ConducteurID:  in.ConducteurID,
		VilleDepart:   strings.TrimSpace(in.VilleDepart),
		VilleArrivee:  strings.TrimSpace(in.VilleArrivee),
		DateDepartMin: in.DateDepartMin,
		Statut:        statut,
		Page:          page,
		Limit:         limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list annonces: %w", err)
	}

	return &ports.ListAnnoncesResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// UpdateStatus activates or deactivates the owner's annonce.
func (s *AnnonceService) UpdateStatus(ctx context.Context, id string, actor domain.Actor, statut domain.AnnonceStatus) (*domain.Annonce, error) {
	if statut != domain.AnnonceActive && statut != domain.AnnonceInactive {
		return nil, fmt.Errorf("%w: unknown annonce status %q", domain.ErrInvalidInput, statut)
	}

	a, err := s.annonces.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.ConducteurID != actor.ID {
		return nil, domain.ErrForbidden
	}

	if err := s.annonces.UpdateStatus(ctx, id, statut); err != nil {
		return nil, fmt.Errorf("update annonce status: %w", err)
	}
	a.Statut = statut
	return a, nil
}

// Delete removes an annonce and its demandes. It is refused while a driver is
// committed to any demande. Pending demandes are refused through the workflow
// first so that each shipper is notified.
func (s *AnnonceService) Delete(ctx context.Context, id string, actor domain.Actor) error {
	a, err := s.annonces.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if actor.Role != domain.RoleAdmin && a.ConducteurID != actor.ID {
		return domain.ErrForbidden
	}

	demandes, err := s.demandes.ListByAnnonce(ctx, id)
	if err != nil {
		return fmt.Errorf("delete annonce: %w", err)
	}
	for _, d := range demandes {
		if d.Statut.IsActive() {
			return domain.ErrAnnonceHasActiveDemandes
		}
	}

	owner := domain.Actor{ID: a.ConducteurID, Role: domain.RoleConducteur}
	for _, d := range demandes {
		if d.Statut != domain.StatusEnAttente {
			continue
		}
		if _, err := s.workflow.Respond(ctx, d.ID, owner, ports.ReponseRefuser, annonceDeletedComment); err != nil {
			if errors.Is(err, domain.ErrIllegalTransition) {
				// Answered or cancelled since the scan.
				current, findErr := s.demandes.FindByID(ctx, d.ID)
				if findErr == nil && current.Statut.IsActive() {
					return domain.ErrAnnonceHasActiveDemandes
				}
				continue
			}
			return fmt.Errorf("delete annonce: refuse demande %s: %w", d.ID, err)
		}
	}

	removed, err := s.demandes.DeleteByAnnonce(ctx, id)
	if err != nil {
		return fmt.Errorf("delete annonce: cascade: %w", err)
	}
	if err := s.annonces.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete annonce: %w", err)
	}

	s.logger.Info().
		Str("annonce_id", id).
		Int64("demandes_removed", removed).
		Str("actor", actor.ID).
		Msg("annonce deleted")
	return nil
}

// ExpireDeparted deactivates every active annonce whose departure date has passed.
func (s *AnnonceService) ExpireDeparted(ctx context.Context) (int64, error) {
	n, err := s.annonces.ExpireDepartedBefore(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("expire annonces: %w", err)
	}
	if n > 0 {
		s.logger.Info().Int64("count", n).Msg("annonces expired")
	}
	return n, nil
}
