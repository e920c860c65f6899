package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/transportconnect/marketplace/internal/core/domain"
	"github.com/transportconnect/marketplace/internal/core/ports"
)

const collectionAnnonces = "annonces"

type AnnonceRepository struct {
	col *mongo.Collection
}

func NewAnnonceRepository(db *mongo.Database) *AnnonceRepository {
	return &AnnonceRepository{col: db.Collection(collectionAnnonces)}
}

func (r *AnnonceRepository) Create(ctx context.Context, a *domain.Annonce) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, a)
	return err
}

func (r *AnnonceRepository) FindByID(ctx context.Context, id string) (*domain.Annonce, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var a domain.Annonce
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAnnonceNotFound
		}
		return nil, err
	}
	return &a, nil
}

// List searches annonces ordered by departure date. City filters are
// case-insensitive prefix matches.
func (r *AnnonceRepository) List(ctx context.Context, f ports.ListAnnoncesFilter) ([]*domain.Annonce, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Statut != "" {
		filter["statut"] = f.Statut
	}
	if f.ConducteurID != "" {
		filter["conducteur_id"] = f.ConducteurID
	}
	if f.VilleDepart != "" {
		filter["lieu_depart.ville"] = prefixRegex(f.VilleDepart)
	}
	if f.VilleArrivee != "" {
		filter["lieu_arrivee.ville"] = prefixRegex(f.VilleArrivee)
	}
	if !f.DateDepartMin.IsZero() {
		filter["date_depart"] = bson.M{"$gte": f.DateDepartMin.UTC()}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date_depart", Value: 1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	items := make([]*domain.Annonce, 0, f.Limit)
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *AnnonceRepository) UpdateStatus(ctx context.Context, id string, statut domain.AnnonceStatus) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{
		"statut":     string(statut),
		"updated_at": time.Now().UTC(),
	}})
}

func (r *AnnonceRepository) IncrementCounters(ctx context.Context, id string, demandes, acceptees int) error {
	return r.update(ctx, id, bson.M{"$inc": bson.M{
		"nombre_demandes":    demandes,
		"demandes_acceptees": acceptees,
	}})
}

func (r *AnnonceRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrAnnonceNotFound
	}
	return nil
}

// ExpireDepartedBefore flips every active annonce departing before t to inactive.
func (r *AnnonceRepository) ExpireDepartedBefore(ctx context.Context, t time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateMany(ctx,
		bson.M{"statut": string(domain.AnnonceActive), "date_depart": bson.M{"$lt": t.UTC()}},
		bson.M{"$set": bson.M{"statut": string(domain.AnnonceInactive), "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *AnnonceRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return countBy(ctx, r.col, "$statut")
}

// EnsureIndexes creates necessary indexes on the annonces collection.
func (r *AnnonceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "statut", Value: 1}, {Key: "date_depart", Value: 1}}},
		{Keys: bson.D{{Key: "conducteur_id", Value: 1}}},
		{Keys: bson.D{{Key: "lieu_depart.ville", Value: 1}, {Key: "lieu_arrivee.ville", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *AnnonceRepository) update(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrAnnonceNotFound
	}
	return nil
}

func prefixRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(s), Options: "i"}
}
