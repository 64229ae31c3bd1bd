// internal/app/store/associations/associationstore.go
package associationstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/CorneTubage/assohub/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateCode = errors.New("an association with this code already exists")
	ErrNotFound      = errors.New("association not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("associations")}
}

func (s *Store) Create(ctx context.Context, asso models.Association) (models.Association, error) {
	now := time.Now().UTC()
	asso.ID = primitive.NewObjectID()
	asso.NameCI = text.Fold(asso.Name)
	asso.CreatedAt = now
	asso.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, asso)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Association{}, ErrDuplicateCode
		}
		return models.Association{}, err
	}
	return asso, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Association, error) {
	var asso models.Association
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&asso)
	if err == mongo.ErrNoDocuments {
		return models.Association{}, ErrNotFound
	}
	if err != nil {
		return models.Association{}, err
	}
	return asso, nil
}

func (s *Store) GetByCode(ctx context.Context, code string) (models.Association, error) {
	var asso models.Association
	err := s.c.FindOne(ctx, bson.M{"code": code}).Decode(&asso)
	if err == mongo.ErrNoDocuments {
		return models.Association{}, ErrNotFound
	}
	if err != nil {
		return models.Association{}, err
	}
	return asso, nil
}

// Rename updates the display name only. The code, and everything keyed off
// it externally, never changes.
func (s *Store) Rename(ctx context.Context, id primitive.ObjectID, name string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"name":       name,
		"name_ci":    text.Fold(name),
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an association by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ExistsByCode checks if an association with the given code exists.
func (s *Store) ExistsByCode(ctx context.Context, code string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"code": code}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// All returns every association sorted by case-folded name.
func (s *Store) All(ctx context.Context) ([]models.Association, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var assos []models.Association
	if err := cur.All(ctx, &assos); err != nil {
		return nil, err
	}
	return assos, nil
}

// ByCodes loads the associations whose codes are in the given set.
func (s *Store) ByCodes(ctx context.Context, codes []string) ([]models.Association, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"code": bson.M{"$in": codes}},
		options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var assos []models.Association
	if err := cur.All(ctx, &assos); err != nil {
		return nil, err
	}
	return assos, nil
}

// Names returns the display names of every association, sorted. Used by the
// lightweight name-listing endpoint.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	cur, err := s.c.Find(ctx, bson.M{},
		options.Find().
			SetSort(bson.D{{Key: "name_ci", Value: 1}}).
			SetProjection(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []struct {
		Name string `bson:"name"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Name)
	}
	return names, nil
}

// Count returns the number of associations matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
