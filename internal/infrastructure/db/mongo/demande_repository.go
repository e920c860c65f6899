package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/transportconnect/marketplace/internal/core/domain"
	"github.com/transportconnect/marketplace/internal/core/ports"
)

const (
	collectionDemandes = "demandes"

	indexNumeroSuivi = "uniq_numero_suivi"
	indexOpenDemande = "uniq_open_demande"
)

type DemandeRepository struct {
	col *mongo.Collection
}

func NewDemandeRepository(db *mongo.Database) *DemandeRepository {
	return &DemandeRepository{col: db.Collection(collectionDemandes)}
}

// Create inserts a new demande document. Unique index violations are reported
// as domain.ErrNumeroSuiviTaken or domain.ErrDuplicateDemande.
func (r *DemandeRepository) Create(ctx context.Context, d *domain.Demande) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, d)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		switch {
		case strings.Contains(err.Error(), indexNumeroSuivi):
			return domain.ErrNumeroSuiviTaken
		case strings.Contains(err.Error(), indexOpenDemande):
			return domain.ErrDuplicateDemande
		}
	}
	return err
}

func (r *DemandeRepository) FindByID(ctx context.Context, id string) (*domain.Demande, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByNumeroSuivi retrieves a demande by its public tracking number.
func (r *DemandeRepository) FindByNumeroSuivi(ctx context.Context, numero string) (*domain.Demande, error) {
	return r.findOne(ctx, bson.M{"suivi.numero_suivi": numero})
}

// FindOpen returns the shipper's demande on the annonce that has not reached a
// terminal status.
func (r *DemandeRepository) FindOpen(ctx context.Context, expediteurID, annonceID string) (*domain.Demande, error) {
	return r.findOne(ctx, bson.M{
		"expediteur_id": expediteurID,
		"annonce_id":    annonceID,
		"statut":        bson.M{"$nin": terminalStatuses()},
	})
}

// List returns one page of demandes, newest first, and the total match count.
func (r *DemandeRepository) List(ctx context.Context, f ports.ListDemandesFilter) ([]*domain.Demande, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.ExpediteurID != "" {
		filter["expediteur_id"] = f.ExpediteurID
	}
	if f.ConducteurID != "" {
		filter["conducteur_id"] = f.ConducteurID
	}
	if f.AnnonceID != "" {
		filter["annonce_id"] = f.AnnonceID
	}
	if f.Statut != "" {
		filter["statut"] = f.Statut
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	items := make([]*domain.Demande, 0, f.Limit)
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *DemandeRepository) ListByAnnonce(ctx context.Context, annonceID string) ([]*domain.Demande, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"annonce_id": annonceID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []*domain.Demande
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *DemandeRepository) AppendMessage(ctx context.Context, id string, msg domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"messages": msg},
		"$set":  bson.M{"updated_at": msg.Timestamp},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrDemandeNotFound
	}
	return nil
}

// SetEvaluation writes the evaluation only while the demande is delivered and
// carries none yet.
func (r *DemandeRepository) SetEvaluation(ctx context.Context, id string, ev domain.Evaluation) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":        id,
		"statut":     domain.StatusLivree,
		"evaluation": bson.M{"$exists": false},
	}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{
		"$set": bson.M{"evaluation": ev, "updated_at": ev.Date},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrDemandeNotFound
	}
	return domain.ErrAlreadyEvaluated
}

func (r *DemandeRepository) DeleteByAnnonce(ctx context.Context, annonceID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"annonce_id": annonceID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// StatusBreakdown groups the matching demandes by status, summing prix_propose.
func (r *DemandeRepository) StatusBreakdown(ctx context.Context, expediteurID, conducteurID string) ([]ports.StatusCount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	match := bson.M{}
	if expediteurID != "" {
		match["expediteur_id"] = expediteurID
	}
	if conducteurID != "" {
		match["conducteur_id"] = conducteurID
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$statut"},
			{Key: "count", Value: bson.M{"$sum": 1}},
			{Key: "montant", Value: bson.M{"$sum": "$prix_propose"}},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Statut  string  `bson:"_id"`
		Count   int64   `bson:"count"`
		Montant float64 `bson:"montant"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make([]ports.StatusCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.StatusCount{Statut: row.Statut, Count: row.Count, Montant: row.Montant})
	}
	return out, nil
}

// EnsureIndexes creates necessary indexes on the demandes collection.
func (r *DemandeRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "suivi.numero_suivi", Value: 1}},
			Options: options.Index().SetName(indexNumeroSuivi).SetUnique(true),
		},
		{
			// One open demande per shipper and annonce.
			Keys: bson.D{{Key: "expediteur_id", Value: 1}, {Key: "annonce_id", Value: 1}},
			Options: options.Index().
				SetName(indexOpenDemande).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"statut": bson.M{"$in": openStatuses()}}),
		},
		{Keys: bson.D{{Key: "conducteur_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "annonce_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *DemandeRepository) findOne(ctx context.Context, filter bson.M) (*domain.Demande, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d domain.Demande
	err := r.col.FindOne(ctx, filter).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDemandeNotFound
		}
		return nil, err
	}
	return &d, nil
}

func openStatuses() []string {
	var out []string
	for _, s := range domain.AllStatuses {
		if !s.IsTerminal() {
			out = append(out, string(s))
		}
	}
	return out
}

func terminalStatuses() []string {
	var out []string
	for _, s := range domain.AllStatuses {
		if s.IsTerminal() {
			out = append(out, string(s))
		}
	}
	return out
}
