// internal/app/gateway/sharedfs/disabled.go
package sharedfs

import "context"

// Disabled returns a Gateway whose every call fails with ErrUnavailable.
// Used when no folder backend is configured: the registry keeps working and
// reconciliation self-heals once a real backend appears.
func Disabled() Gateway {
	return disabled{}
}

type disabled struct{}

func (disabled) err(op string) error { return &opError{op} }

type opError struct{ op string }

func (e *opError) Error() string { return e.op + ": folder backend not configured" }
func (e *opError) Unwrap() error { return ErrUnavailable }

func (d disabled) Folders(ctx context.Context) ([]Folder, error) { return nil, d.err("folders") }
func (d disabled) CreateFolder(ctx context.Context, mountPoint string) (int64, error) {
	return 0, d.err("create folder")
}
func (d disabled) RenameFolder(ctx context.Context, folderID int64, mountPoint string) error {
	return d.err("rename folder")
}
func (d disabled) DeleteFolder(ctx context.Context, folderID int64) error {
	return d.err("delete folder")
}
func (d disabled) SetQuota(ctx context.Context, folderID, bytes int64) error {
	return d.err("set quota")
}
func (d disabled) AddApplicableGroup(ctx context.Context, folderID int64, gid string) error {
	return d.err("add applicable group")
}
func (d disabled) SetGroupPermissions(ctx context.Context, folderID int64, gid string, perm Permission) error {
	return d.err("set group permissions")
}
func (d disabled) EnableACL(ctx context.Context, folderID int64) error {
	return d.err("enable acl")
}
func (d disabled) MappingsForUser(ctx context.Context, folderID int64, userID string) ([]Mapping, error) {
	return nil, d.err("mappings for user")
}
func (d disabled) SetRule(ctx context.Context, m Mapping, nodeID int64, perm Permission) error {
	return d.err("set rule")
}
func (d disabled) NodeByPath(ctx context.Context, folderID int64, path string) (*Node, error) {
	return nil, d.err("node by path")
}
func (d disabled) CreateNode(ctx context.Context, folderID int64, path string) (Node, error) {
	return Node{}, d.err("create node")
}
func (d disabled) Usage(ctx context.Context, folderID int64) (int64, error) {
	return 0, d.err("usage")
}
func (d disabled) Quota(ctx context.Context, folderID int64) (int64, error) {
	return 0, d.err("quota")
}

var _ Gateway = disabled{}
