// internal/domain/models/association.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Association represents a club/organization managed by AssoHub.
//
// NOTE:
//   - Code is the immutable external key: the directory group id and the
//     shared-folder mount point are both derived from it. Once created it
//     never changes, even when the display name is renamed.
//   - Name is the mutable display name shown in the UI; NameCI is the
//     case-folded form used for sorting and lookups.
type Association struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"-"`
	Code   string             `bson:"code" json:"code"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
