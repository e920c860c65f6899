package ports

import (
	"context"

	"github.com/transportconnect/marketplace/internal/core/domain"
)

// EventRepository handles tracking writes on demandes and the transition audit trail.
type EventRepository interface {
	// ApplyTransition persists the status, dates and appended etape of d in one
	// document write, conditional on the stored version still being
	// expectedVersion. It returns domain.ErrConcurrentUpdate when the version moved
	// and domain.ErrDemandeNotFound when the document is gone.
	ApplyTransition(ctx context.Context, d *domain.Demande, expectedVersion int64, etape domain.Etape) error

	// UpdatePosition sets the last known position of a demande.
	UpdatePosition(ctx context.Context, demandeID string, pos domain.Position) error

	// InsertEvent persists a transition to the demande_events audit collection.
	InsertEvent(ctx context.Context, event *domain.TransitionEvent) error
}
