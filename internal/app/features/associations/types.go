// internal/app/features/associations/types.go
package associations

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// createRequest is the body of POST /associations. Code is optional; when
// omitted it is derived from the name.
type createRequest struct {
	Name string `json:"name" validate:"required,max=120"`
	Code string `json:"code" validate:"omitempty,max=64"`
}

// renameRequest is the body of PUT /associations/{id}.
type renameRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}
