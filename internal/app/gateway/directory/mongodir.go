// internal/app/gateway/directory/mongodir.go
package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/CorneTubage/assohub/internal/domain/models"
)

// Mongo is the Gateway adapter over the platform's own directory
// collections. Group membership is a string-set on the group document, so
// $addToSet/$pull give the idempotent add/remove semantics the contract
// requires without read-modify-write races.
type Mongo struct {
	users  *mongo.Collection
	groups *mongo.Collection
}

// groupDoc is the directory's group record.
type groupDoc struct {
	ID          string    `bson:"_id"`
	DisplayName string    `bson:"display_name"`
	Members     []string  `bson:"members"`
	CreatedAt   time.Time `bson:"created_at"`
}

var _ Gateway = (*Mongo)(nil)

// NewMongo builds the directory adapter over the given database.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		users:  db.Collection("users"),
		groups: db.Collection("groups"),
	}
}

func (m *Mongo) GroupExists(ctx context.Context, gid string) (bool, error) {
	n, err := m.groups.CountDocuments(ctx, bson.M{"_id": gid})
	if err != nil {
		return false, unavailable("count group", err)
	}
	return n > 0, nil
}

func (m *Mongo) CreateGroup(ctx context.Context, gid, displayName string) error {
	doc := groupDoc{
		ID:          gid,
		DisplayName: displayName,
		Members:     []string{},
		CreatedAt:   time.Now().UTC(),
	}
	_, err := m.groups.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return unavailable("create group", err)
	}
	return nil
}

func (m *Mongo) DeleteGroup(ctx context.Context, gid string) error {
	if _, err := m.groups.DeleteOne(ctx, bson.M{"_id": gid}); err != nil {
		return unavailable("delete group", err)
	}
	return nil
}

func (m *Mongo) LookupUser(ctx context.Context, userID string) (*models.DirUser, error) {
	var u models.DirUser
	err := m.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("lookup user", err)
	}
	return &u, nil
}

func (m *Mongo) IsUserInGroup(ctx context.Context, userID, gid string) (bool, error) {
	n, err := m.groups.CountDocuments(ctx, bson.M{"_id": gid, "members": userID})
	if err != nil {
		return false, unavailable("check membership", err)
	}
	return n > 0, nil
}

func (m *Mongo) AddUserToGroup(ctx context.Context, userID, gid string) error {
	res, err := m.groups.UpdateByID(ctx, gid, bson.M{"$addToSet": bson.M{"members": userID}})
	if err != nil {
		return unavailable("add user to group", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("add user to group: group %q does not exist", gid)
	}
	return nil
}

func (m *Mongo) RemoveUserFromGroup(ctx context.Context, userID, gid string) error {
	// Absent group or absent member both match zero documents; that is the
	// idempotent no-op the contract asks for.
	if _, err := m.groups.UpdateByID(ctx, gid, bson.M{"$pull": bson.M{"members": userID}}); err != nil {
		return unavailable("remove user from group", err)
	}
	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}
