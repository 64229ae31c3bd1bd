// internal/app/store/memberships/membershipstore.go
package membershipstore

// Terminology: User Identifiers
//   - UserID / userID / user_id: The human-readable directory login id; it is
//     also what membership rows and ACL identity mappings refer to.

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/CorneTubage/assohub/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("association_members")}
}

var ErrNotFound = errors.New("membership not found")

// Upsert sets the user's role in the association, creating the membership
// row when none exists. One row per (user_id, association_code) is enforced
// by a unique index; the upsert makes concurrent calls converge on the last
// writer's role instead of failing.
func (s *Store) Upsert(ctx context.Context, userID, code string, role models.Role) (models.Membership, error) {
	now := time.Now().UTC()
	filter := bson.M{"user_id": userID, "association_code": code}
	update := bson.M{
		"$set": bson.M{
			"role":       role,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":              primitive.NewObjectID(),
			"user_id":          userID,
			"association_code": code,
			"created_at":       now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var m models.Membership
	if err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&m); err != nil {
		return models.Membership{}, err
	}
	return m, nil
}

// Get returns the user's membership in the association, or ErrNotFound.
func (s *Store) Get(ctx context.Context, userID, code string) (models.Membership, error) {
	var m models.Membership
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "association_code": code}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return models.Membership{}, ErrNotFound
	}
	if err != nil {
		return models.Membership{}, err
	}
	return m, nil
}

// Remove deletes the user's membership in the association. Returns the
// number of documents deleted (0 or 1).
func (s *Store) Remove(ctx context.Context, userID, code string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID, "association_code": code})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// RemoveByAssociation deletes every membership row of the association. Used
// when the association itself is deleted.
func (s *Store) RemoveByAssociation(ctx context.Context, code string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"association_code": code})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ByAssociation returns the association's full roster sorted by user id.
func (s *Store) ByAssociation(ctx context.Context, code string) ([]models.Membership, error) {
	cur, err := s.c.Find(ctx, bson.M{"association_code": code},
		options.Find().SetSort(bson.D{{Key: "user_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ms []models.Membership
	if err := cur.All(ctx, &ms); err != nil {
		return nil, err
	}
	return ms, nil
}

// UserMemberships returns everything the user is across all associations.
// This is the roster slice the reconciliation engine recomputes global
// groups from.
func (s *Store) UserMemberships(ctx context.Context, userID string) ([]models.Membership, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ms []models.Membership
	if err := cur.All(ctx, &ms); err != nil {
		return nil, err
	}
	return ms, nil
}

// CountRole returns how many members hold the given role in the
// association. Used to enforce the presidency cap.
func (s *Store) CountRole(ctx context.Context, code string, role models.Role) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"association_code": code, "role": role})
}

// HoldsRoleElsewhere checks whether the user holds the role in any
// association other than the given one. Used to enforce single-presidency.
func (s *Store) HoldsRoleElsewhere(ctx context.Context, userID string, role models.Role, excludeCode string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"user_id":          userID,
		"role":             role,
		"association_code": bson.M{"$ne": excludeCode},
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MemberCount returns the roster size of the association.
func (s *Store) MemberCount(ctx context.Context, code string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"association_code": code})
}
