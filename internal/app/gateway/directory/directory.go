// Package directory is the narrow gateway to the platform user/group
// directory.
//
// The reconciliation engine only ever needs a handful of operations: does a
// group exist, create one, is a user in it, add/remove a user. Add and
// remove are idempotent: adding an already-present user or removing an
// absent one is a no-op, not an error, so re-running a reconciliation pass
// always converges.
//
// A backend outage is reported as ErrUnavailable. Callers decide per call
// site whether that is fatal (group creation as a precondition for folder
// provisioning) or log-and-continue (everything else).
package directory

import (
	"context"
	"errors"

	"github.com/CorneTubage/assohub/internal/domain/models"
)

// ErrUnavailable wraps any transport-level failure talking to the directory
// backend. Test with errors.Is.
var ErrUnavailable = errors.New("directory backend unavailable")

// Gateway is the directory contract the engine and features program against.
// The concrete deployment binds it once at startup (see the mongodir
// adapter); nothing resolves backends at call time.
type Gateway interface {
	// GroupExists reports whether the group id is provisioned.
	GroupExists(ctx context.Context, gid string) (bool, error)

	// CreateGroup provisions a group. Creating an existing group is a no-op.
	CreateGroup(ctx context.Context, gid, displayName string) error

	// DeleteGroup removes a group and its membership. Deleting an absent
	// group is a no-op.
	DeleteGroup(ctx context.Context, gid string) error

	// LookupUser returns the directory account for a login id, or nil when
	// no such account exists (absence is not an error).
	LookupUser(ctx context.Context, userID string) (*models.DirUser, error)

	// IsUserInGroup reports current membership.
	IsUserInGroup(ctx context.Context, userID, gid string) (bool, error)

	// AddUserToGroup adds the user; already-present is a no-op.
	AddUserToGroup(ctx context.Context, userID, gid string) error

	// RemoveUserFromGroup removes the user; already-absent is a no-op.
	RemoveUserFromGroup(ctx context.Context, userID, gid string) error
}
