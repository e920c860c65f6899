package service

import (
	"context"
	"fmt"

	"github.com/transportconnect/marketplace/internal/core/domain"
	"github.com/transportconnect/marketplace/internal/core/ports"
)

type StatsService struct {
	demandes ports.DemandeRepository
	annonces ports.AnnonceRepository
	users    ports.UserRepository
}

func NewStatsService(demandes ports.DemandeRepository, annonces ports.AnnonceRepository, users ports.UserRepository) *StatsService {
	return &StatsService{demandes: demandes, annonces: annonces, users: users}
}

// ForUser aggregates the caller's demandes by status. MontantLivre sums the
// proposed price of delivered demandes.
func (s *StatsService) ForUser(ctx context.Context, actor domain.Actor) (*ports.UserStats, error) {
	var expediteurID, conducteurID string
	switch actor.Role {
	case domain.RoleExpediteur:
		expediteurID = actor.ID
	case domain.RoleConducteur:
		conducteurID = actor.ID
	default:
		return nil, domain.ErrForbidden
	}

	rows, err := s.demandes.StatusBreakdown(ctx, expediteurID, conducteurID)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}

	out := &ports.UserStats{Role: actor.Role, ParStatut: make(map[string]int64, len(rows))}
	for _, r := range rows {
		out.ParStatut[r.Statut] = r.Count
		out.Total += r.Count
		if r.Statut == string(domain.StatusLivree) {
			out.MontantLivre = r.Montant
		}
	}

	user, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	out.Statistiques = user.Statistiques
	return out, nil
}

// Platform returns the admin dashboard counters.
func (s *StatsService) Platform(ctx context.Context) (*ports.PlatformStats, error) {
	users, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("platform stats: users: %w", err)
	}
	annonces, err := s.annonces.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("platform stats: annonces: %w", err)
	}
	rows, err := s.demandes.StatusBreakdown(ctx, "", "")
	if err != nil {
		return nil, fmt.Errorf("platform stats: demandes: %w", err)
	}

	demandes := make(map[string]int64, len(rows))
	for _, r := range rows {
		demandes[r.Statut] = r.Count
	}
	return &ports.PlatformStats{
		UtilisateursParRole: users,
		AnnoncesParStatut:   annonces,
		DemandesParStatut:   demandes,
	}, nil
}
