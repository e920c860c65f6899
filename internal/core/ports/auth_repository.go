package ports

import (
	"context"

	"github.com/transportconnect/marketplace/internal/core/domain"
)

// UserRepository defines persistence for users and their workflow statistics.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// IncrementStats adjusts statistiques.demandes_acceptees and statistiques.livraisons_effectuees.
	IncrementStats(ctx context.Context, id string, acceptees, livraisons int) error
	// AddRating folds one note into note_moyenne and nombre_evaluations atomically.
	AddRating(ctx context.Context, id string, note int) error
	CountByRole(ctx context.Context) (map[string]int64, error)
}
