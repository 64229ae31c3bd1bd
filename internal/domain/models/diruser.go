// internal/domain/models/diruser.go
package models

import "time"

// DirUser is a platform directory account. The ID is the human-readable
// login id (what the user types to sign in) and what membership rows and
// ACL identity mappings refer to.
type DirUser struct {
	ID           string `bson:"_id" json:"id"`
	FullName     string `bson:"full_name" json:"full_name"`
	Email        string `bson:"email" json:"email"`
	PasswordHash string `bson:"password_hash,omitempty" json:"-"`

	// Admin marks platform operators; they see and manage every
	// association regardless of membership.
	Admin bool `bson:"admin,omitempty" json:"admin,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
