// Package sharedfs is the gateway to the folder-provisioning backend
// ("teamfolders"): the service that owns shared folders, their quota, the
// groups allowed to mount them, and the per-identity ACL rules inside them.
//
// The backend is the unreliable half of the system. Every mutating call can
// fail independently, and the reconciliation engine treats each one as
// best-effort; the contract here is therefore deliberately small and every
// operation is safe to repeat.
//
// The backend has shipped two API generations with different wire shapes for
// a few operations. Rather than probing capabilities per call, a concrete
// client for the configured generation is built once at startup (see
// NewClient) and everything programs against the Gateway interface.
package sharedfs

import (
	"context"
	"errors"
)

// ErrUnavailable wraps transport-level failures talking to the folder
// backend. Test with errors.Is.
var ErrUnavailable = errors.New("storage backend unavailable")

// QuotaUnlimited is the backend's sentinel for "no quota set".
const QuotaUnlimited int64 = -3

// Folder is a provisioned shared folder as the backend reports it.
type Folder struct {
	ID         int64  `json:"id"`
	MountPoint string `json:"mount_point"`
	Quota      int64  `json:"quota"`
	Size       int64  `json:"size"`
}

// Node is a file-system entry inside a folder. Paths are slash-separated
// and relative to the folder root ("official/accounts").
type Node struct {
	ID   int64  `json:"id"`
	Path string `json:"path"`
}

// Mapping is a user's ACL identity inside one folder. A user can have
// several candidate mappings (one per group they reach the folder through);
// see ResolveMapping for the disambiguation policy.
type Mapping struct {
	Type        string `json:"type"` // "user" or "group"
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Gateway is the storage contract the engine programs against.
type Gateway interface {
	// Folders lists every provisioned folder. The backend has no lookup by
	// mount point; callers scan (see FindFolderByKey).
	Folders(ctx context.Context) ([]Folder, error)

	// CreateFolder provisions a folder and returns its id.
	CreateFolder(ctx context.Context, mountPoint string) (int64, error)

	// RenameFolder changes the mount point label.
	RenameFolder(ctx context.Context, folderID int64, mountPoint string) error

	// DeleteFolder removes the folder and everything in it.
	DeleteFolder(ctx context.Context, folderID int64) error

	// SetQuota sets the storage ceiling in bytes.
	SetQuota(ctx context.Context, folderID, bytes int64) error

	// AddApplicableGroup lets a directory group mount the folder. Adding a
	// group twice is a no-op.
	AddApplicableGroup(ctx context.Context, folderID int64, gid string) error

	// SetGroupPermissions sets the ceiling permission mask for a group that
	// is already applicable on the folder.
	SetGroupPermissions(ctx context.Context, folderID int64, gid string, p Permission) error

	// EnableACL switches the folder into ACL mode; per-identity rules have
	// no effect until this is on. Idempotent.
	EnableACL(ctx context.Context, folderID int64) error

	// MappingsForUser returns the user's candidate ACL identities inside
	// the folder. Empty means the user cannot be mapped (yet).
	MappingsForUser(ctx context.Context, folderID int64, userID string) ([]Mapping, error)

	// SetRule upserts the ACL rule for (mapping, node). The backend's rule
	// store is additive, so the adapter clears any existing rule for the
	// pair before writing the new mask.
	SetRule(ctx context.Context, m Mapping, nodeID int64, p Permission) error

	// NodeByPath resolves a path inside a folder, or nil when absent
	// (absence is not an error).
	NodeByPath(ctx context.Context, folderID int64, path string) (*Node, error)

	// CreateNode creates a directory node at path; parents must exist.
	CreateNode(ctx context.Context, folderID int64, path string) (Node, error)

	// Usage returns the folder's current size in bytes.
	Usage(ctx context.Context, folderID int64) (int64, error)

	// Quota returns the folder's quota in bytes, or QuotaUnlimited.
	Quota(ctx context.Context, folderID int64) (int64, error)
}

// FindFolderByKey scans all provisioned folders for one whose mount point
// equals key. Returns (0, false, nil) when no folder matches.
func FindFolderByKey(ctx context.Context, g Gateway, key string) (int64, bool, error) {
	folders, err := g.Folders(ctx)
	if err != nil {
		return 0, false, err
	}
	for _, f := range folders {
		if f.MountPoint == key {
			return f.ID, true, nil
		}
	}
	return 0, false, nil
}

// ResolveMapping picks the ACL identity to write rules for from a user's
// candidate mappings: prefer the one whose display name matches the
// association key, else fall back to the first returned.
//
// This display-name heuristic is a compatibility shim carried over from the
// backend's current API, which cannot answer (folder, user) -> identity
// directly; it misfires when several mappings share a display name.
func ResolveMapping(mappings []Mapping, key string) (Mapping, bool) {
	if len(mappings) == 0 {
		return Mapping{}, false
	}
	for _, m := range mappings {
		if m.DisplayName == key {
			return m, true
		}
	}
	return mappings[0], true
}
