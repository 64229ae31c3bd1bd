// internal/app/features/members/types.go
package members

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// upsertRequest is the body of POST /associations/{id}/members. Posting an
// existing member changes their role in place.
type upsertRequest struct {
	UserID string `json:"user_id" validate:"required,max=64"`
	Role   string `json:"role" validate:"required,max=32"`
}
