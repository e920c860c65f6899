package ports

import (
	"context"

	"github.com/transportconnect/marketplace/internal/core/domain"
)

// ListDemandesFilter carries all query parameters for listing demandes.
// The party filters are always set by the service layer from the caller's role.
type ListDemandesFilter struct {
	ExpediteurID string // non-empty = scoped to a shipper
	ConducteurID string // non-empty = scoped to a driver
	AnnonceID    string
	Statut       string
	Page         int // 1-based
	Limit        int
}

// StatusCount is one row of a per-status aggregation.
type StatusCount struct {
	Statut  string
	Count   int64
	Montant float64 // sum of prix_propose
}

// DemandeRepository defines persistence operations for demandes.
type DemandeRepository interface {
	// Create returns domain.ErrNumeroSuiviTaken when the tracking number is
	// already used and domain.ErrDuplicateDemande when the shipper already has an
	// open demande on the annonce.
	Create(ctx context.Context, d *domain.Demande) error
	FindByID(ctx context.Context, id string) (*domain.Demande, error)
	FindByNumeroSuivi(ctx context.Context, numero string) (*domain.Demande, error)
	// FindOpen returns the non-terminal demande of a shipper on an annonce, or
	// domain.ErrDemandeNotFound when there is none.
	FindOpen(ctx context.Context, expediteurID, annonceID string) (*domain.Demande, error)
	List(ctx context.Context, filter ListDemandesFilter) ([]*domain.Demande, int64, error)
	ListByAnnonce(ctx context.Context, annonceID string) ([]*domain.Demande, error)
	AppendMessage(ctx context.Context, id string, msg domain.Message) error
	// SetEvaluation stores the evaluation only if the demande is delivered and not
	// yet evaluated; otherwise it returns domain.ErrAlreadyEvaluated.
	SetEvaluation(ctx context.Context, id string, ev domain.Evaluation) error
	DeleteByAnnonce(ctx context.Context, annonceID string) (int64, error)
	// StatusBreakdown groups demandes matching the party filter by status.
	StatusBreakdown(ctx context.Context, expediteurID, conducteurID string) ([]StatusCount, error)
}
