package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/transportconnect/marketplace/internal/core/domain"
)

const collectionUsers = "users"

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(collectionUsers)}
}

type mongoUser struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty"`
	Nom          string              `bson:"nom"`
	Prenom       string              `bson:"prenom"`
	Email        string              `bson:"email"`
	PasswordHash string              `bson:"password_hash"`
	Telephone    string              `bson:"telephone,omitempty"`
	Role         string              `bson:"role"`
	Statistiques domain.Statistiques `bson:"statistiques"`
	CreatedAt    int64               `bson:"created_at"`
	UpdatedAt    int64               `bson:"updated_at"`
}

func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := mongoUser{
		Nom:          user.Nom,
		Prenom:       user.Prenom,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Telephone:    user.Telephone,
		Role:         string(user.Role),
		Statistiques: user.Statistiques,
		CreatedAt:    user.CreatedAt.Unix(),
		UpdatedAt:    user.UpdatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return r.FindByEmail(ctx, user.Email)
	}
	doc.ID = oid
	return doc.toDomain(), nil
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoUserRepository) IncrementStats(ctx context.Context, id string, acceptees, livraisons int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}
	return r.updateOne(ctx, oid, bson.M{"$inc": bson.M{
		"statistiques.demandes_acceptees":    acceptees,
		"statistiques.livraisons_effectuees": livraisons,
	}})
}

// AddRating folds note into the running average with a pipeline update so that
// concurrent evaluations do not overwrite each other.
func (r *MongoUserRepository) AddRating(ctx context.Context, id string, note int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	count := bson.M{"$ifNull": bson.A{"$statistiques.nombre_evaluations", 0}}
	avg := bson.M{"$ifNull": bson.A{"$statistiques.note_moyenne", 0}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"statistiques.note_moyenne": bson.M{"$divide": bson.A{
				bson.M{"$add": bson.A{bson.M{"$multiply": bson.A{avg, count}}, note}},
				bson.M{"$add": bson.A{count, 1}},
			}},
			"statistiques.nombre_evaluations": bson.M{"$add": bson.A{count, 1}},
			"updated_at":                      time.Now().UTC().Unix(),
		}}},
	}
	return r.updateOne(ctx, oid, update)
}

func (r *MongoUserRepository) CountByRole(ctx context.Context) (map[string]int64, error) {
	return countBy(ctx, r.coll, "$role")
}

// EnsureIndexes creates the unique email index.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *MongoUserRepository) updateOne(ctx context.Context, id primitive.ObjectID, update interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (mu mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:           mu.ID.Hex(),
		Nom:          mu.Nom,
		Prenom:       mu.Prenom,
		Email:        mu.Email,
		PasswordHash: mu.PasswordHash,
		Telephone:    mu.Telephone,
		Role:         domain.Role(mu.Role),
		Statistiques: mu.Statistiques,
		CreatedAt:    unixToTime(mu.CreatedAt),
		UpdatedAt:    unixToTime(mu.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
