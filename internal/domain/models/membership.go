// internal/domain/models/membership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership is the authoritative join between a directory user and an
// association. Exactly one document per (user_id, association_code); the
// role is a scalar from the Role enum.
//
// Memberships key off the association Code, not its ObjectID or display
// name, so renaming an association never touches membership rows.
type Membership struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          string             `bson:"user_id" json:"user_id"`
	AssociationCode string             `bson:"association_code" json:"association_code"`
	Role            Role               `bson:"role" json:"role"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
