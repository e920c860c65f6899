package ports

import (
	"context"
	"time"

	"github.com/transportconnect/marketplace/internal/core/domain"
)

// CreateAnnonceInput carries the route a driver publishes.
type CreateAnnonceInput struct {
	ConducteurID         string
	LieuDepart           domain.Adresse
	LieuArrivee          domain.Adresse
	EtapesIntermediaires []string
	DateDepart           time.Time
	DateArriveeEstimee   time.Time
	Capacite             domain.Capacite
	TypesColisAcceptes   []string
	PrixParKg            float64
	Description          string
}

// ListAnnoncesInput carries search parameters; an empty Statut lists active annonces.
type ListAnnoncesInput struct {
	ConducteurID  string
	VilleDepart   string
	VilleArrivee  string
	DateDepartMin time.Time
	Statut        string
	Page          int
	Limit         int
}

// ListAnnoncesResult is one page of annonces.
type ListAnnoncesResult struct {
	Items      []*domain.Annonce
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// AnnonceService defines use-case operations on annonces.
type AnnonceService interface {
	Create(ctx context.Context, in CreateAnnonceInput) (*domain.Annonce, error)
	Get(ctx context.Context, id string) (*domain.Annonce, error)
	List(ctx context.Context, in ListAnnoncesInput) (*ListAnnoncesResult, error)
	UpdateStatus(ctx context.Context, id string, actor domain.Actor, statut domain.AnnonceStatus) (*domain.Annonce, error)
	Delete(ctx context.Context, id string, actor domain.Actor) error
	ExpireDeparted(ctx context.Context) (int64, error)
}
