package ports

import (
	"context"

	"github.com/transportconnect/marketplace/internal/core/domain"
)

// UserStats summarises the caller's demandes.
type UserStats struct {
	Role         domain.Role
	ParStatut    map[string]int64
	Total        int64
	MontantLivre float64 // revenue for drivers, spend for shippers
	Statistiques domain.Statistiques
}

// PlatformStats is the admin dashboard summary.
type PlatformStats struct {
	UtilisateursParRole map[string]int64
	AnnoncesParStatut   map[string]int64
	DemandesParStatut   map[string]int64
}

// StatsService computes dashboard statistics.
type StatsService interface {
	ForUser(ctx context.Context, actor domain.Actor) (*UserStats, error)
	Platform(ctx context.Context) (*PlatformStats, error)
}
