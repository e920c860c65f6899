package ports

import (
	"context"
	"time"

	"github.com/transportconnect/marketplace/internal/core/domain"
)

// ListAnnoncesFilter carries the search parameters for annonces.
type ListAnnoncesFilter struct {
	ConducteurID  string
	VilleDepart   string // case-insensitive prefix
	VilleArrivee  string // case-insensitive prefix
	DateDepartMin time.Time
	Statut        string
	Page          int
	Limit         int
}

// AnnonceRepository defines persistence operations for annonces.
type AnnonceRepository interface {
	Create(ctx context.Context, a *domain.Annonce) error
	FindByID(ctx context.Context, id string) (*domain.Annonce, error)
	List(ctx context.Context, filter ListAnnoncesFilter) ([]*domain.Annonce, int64, error)
	UpdateStatus(ctx context.Context, id string, statut domain.AnnonceStatus) error
	// IncrementCounters adjusts nombre_demandes and demandes_acceptees by the given deltas.
	IncrementCounters(ctx context.Context, id string, demandes, acceptees int) error
	Delete(ctx context.Context, id string) error
	// ExpireDepartedBefore deactivates active annonces departing before t.
	ExpireDepartedBefore(ctx context.Context, t time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}
