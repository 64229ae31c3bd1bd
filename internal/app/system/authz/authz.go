// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/CorneTubage/assohub/internal/app/system/auth"
)

// UserCtx returns the current user's login id, display name, admin flag, and
// a found flag. ok=false means the request is unauthenticated; callers can
// trust that ok=true implies a non-empty login id.
func UserCtx(r *http.Request) (userID string, name string, admin bool, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok || user.ID == "" {
		return "", "", false, false
	}
	return user.ID, user.Name, user.Admin, true
}

// IsAdmin reports whether the current request's user is a platform operator.
// Admins bypass membership-based visibility and can delete associations.
func IsAdmin(r *http.Request) bool {
	_, _, admin, ok := UserCtx(r)
	return ok && admin
}

// IsSelf reports whether the current request's user is the given directory
// user. Used by the self-demotion guard on protected roles.
func IsSelf(r *http.Request, userID string) bool {
	id, _, _, ok := UserCtx(r)
	return ok && id == userID
}
