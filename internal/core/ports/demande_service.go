package ports

import (
	"context"

	"github.com/transportconnect/marketplace/internal/core/domain"
)

// CreateDemandeInput carries all data needed to submit a demande on an annonce.
type CreateDemandeInput struct {
	ExpediteurID      string
	AnnonceID         string
	Colis             domain.Colis
	PrixPropose       float64
	ModePaiement      string
	AdresseEnlevement domain.Adresse
	AdresseLivraison  domain.Adresse
}

// ListDemandesInput carries the caller and optional filters for the list endpoint.
type ListDemandesInput struct {
	Actor     domain.Actor
	AnnonceID string
	Statut    string
	Page      int
	Limit     int
}

// ListDemandesResult is one page of demandes.
type ListDemandesResult struct {
	Items      []*domain.Demande
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// TrackingView is the public projection of a demande returned by tracking number.
type TrackingView struct {
	Statut domain.DemandeStatus
	Suivi  domain.Suivi
}

const (
	ReponseAccepter = "accepter"
	ReponseRefuser  = "refuser"
)

// DemandeService defines the use-case operations on demandes, including the
// delivery status workflow.
type DemandeService interface {
	Create(ctx context.Context, in CreateDemandeInput) (*domain.Demande, error)
	Get(ctx context.Context, id string, actor domain.Actor) (*domain.Demande, error)
	List(ctx context.Context, in ListDemandesInput) (*ListDemandesResult, error)
	Respond(ctx context.Context, id string, actor domain.Actor, action, comment string) (*domain.Demande, error)
	UpdateStatus(ctx context.Context, id string, actor domain.Actor, to domain.DemandeStatus, comment string) (*domain.Demande, error)
	Cancel(ctx context.Context, id string, actor domain.Actor, motif string) (*domain.Demande, error)
	Track(ctx context.Context, numeroSuivi string) (*TrackingView, error)
	AddMessage(ctx context.Context, id string, actor domain.Actor, message string) (*domain.Message, error)
	Evaluate(ctx context.Context, id string, actor domain.Actor, note int, comment string) (*domain.Evaluation, error)
}
