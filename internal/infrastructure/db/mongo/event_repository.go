package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/transportconnect/marketplace/internal/core/domain"
	"github.com/transportconnect/marketplace/internal/core/ports"
)

const collectionDemandeEvents = "demande_events"

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	db *mongo.Database
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) ports.EventRepository {
	return &EventRepository{db: db}
}

// ApplyTransition sets the new status and appends the etape in one conditional
// update. The write only matches while version still equals expectedVersion.
func (r *EventRepository) ApplyTransition(ctx context.Context, d *domain.Demande, expectedVersion int64, etape domain.Etape) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"statut":     string(d.Statut),
		"updated_at": d.UpdatedAt,
	}
	if d.Suivi.DateEnlevementReelle != nil {
		set["suivi.date_enlevement_reelle"] = *d.Suivi.DateEnlevementReelle
	}
	if d.Suivi.DateLivraisonReelle != nil {
		set["suivi.date_livraison_reelle"] = *d.Suivi.DateLivraisonReelle
	}

	filter := bson.M{"_id": d.ID, "version": expectedVersion}
	update := bson.M{
		"$set":  set,
		"$inc":  bson.M{"version": 1},
		"$push": bson.M{"suivi.etapes": etape},
	}

	col := r.db.Collection(collectionDemandes)
	res, err := col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		n, err := col.CountDocuments(ctx, bson.M{"_id": d.ID})
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrDemandeNotFound
		}
		return domain.ErrConcurrentUpdate
	}

	d.Version = expectedVersion + 1
	return nil
}

// UpdatePosition overwrites the last known position of a demande.
func (r *EventRepository) UpdatePosition(ctx context.Context, demandeID string, pos domain.Position) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.Collection(collectionDemandes).UpdateOne(ctx,
		bson.M{"_id": demandeID},
		bson.M{"$set": bson.M{"suivi.position_actuelle": pos}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrDemandeNotFound
	}
	return nil
}

// InsertEvent persists a transition to the demande_events audit collection.
func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.TransitionEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"demande_id":   event.DemandeID,
		"numero_suivi": event.NumeroSuivi,
		"from":         string(event.From),
		"to":           string(event.To),
		"acteur_id":    event.ActeurID,
		"acteur_role":  string(event.ActeurRole),
		"timestamp":    event.Timestamp.UTC(),
		"processed_at": time.Now().UTC(),
	}
	if event.Commentaire != "" {
		doc["commentaire"] = event.Commentaire
	}

	_, err := r.db.Collection(collectionDemandeEvents).InsertOne(ctx, doc)
	return err
}
