// Package reconcile derives the desired external state for an association's
// member roster and pushes it through the directory and shared-storage
// gateways: group membership, folder existence and sub-tree, quota, and
// per-identity ACL rules keyed by role.
//
// The engine is built around idempotence instead of transactions. Every
// sub-operation is safe to repeat, no lock is held across backend calls, and
// a failure in one sub-operation never stops its siblings: the next roster
// mutation re-runs the whole derivation and converges on the same state.
// Partial writes are acceptable; they self-heal on the next pass.
package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/CorneTubage/assohub/internal/app/gateway/directory"
	"github.com/CorneTubage/assohub/internal/app/gateway/sharedfs"
	"github.com/CorneTubage/assohub/internal/app/system/namecheck"
	"github.com/CorneTubage/assohub/internal/domain/models"
)

// DefaultQuotaBytes is the quota newly provisioned association folders get.
const DefaultQuotaBytes int64 = 10 << 30 // 10 GiB

// FolderUnknown is the sentinel returned when the folder backend is
// unreachable: callers skip ACL application for the cycle and move on.
const FolderUnknown int64 = -1

// adminGroup is the platform operators' directory group; it is made
// applicable on every association folder.
const adminGroup = "admin"

// RosterSource is the slice of the membership registry the engine needs:
// everything a user is, across all associations. Implemented by the
// membership store and by test fakes.
type RosterSource interface {
	UserMemberships(ctx context.Context, userID string) ([]models.Membership, error)
}

// Engine computes and applies role-derived external state.
type Engine struct {
	dir    directory.Gateway
	fs     sharedfs.Gateway
	roster RosterSource
	log    *zap.Logger

	layout []LayoutNode
	quota  int64
}

// New builds an Engine with the default layout and quota.
func New(dir directory.Gateway, fs sharedfs.Gateway, roster RosterSource, logger *zap.Logger) *Engine {
	return &Engine{
		dir:    dir,
		fs:     fs,
		roster: roster,
		log:    logger,
		layout: DefaultLayout,
		quota:  DefaultQuotaBytes,
	}
}

// SetDefaultQuota overrides the quota applied to newly provisioned
// association folders. Zero or negative values keep the default.
func (e *Engine) SetDefaultQuota(bytes int64) {
	if bytes > 0 {
		e.quota = bytes
	}
}

// findFolder locates the association's folder by its canonical mount key.
// Backend admins can relabel mount points out of band; a folder whose label
// still slugs back to the code is treated as this association's, and its
// label is restored so the next scan finds it directly.
func (e *Engine) findFolder(ctx context.Context, code string) (int64, bool, error) {
	folderID, found, err := sharedfs.FindFolderByKey(ctx, e.fs, code)
	if err != nil || found {
		return folderID, found, err
	}

	folders, err := e.fs.Folders(ctx)
	if err != nil {
		return 0, false, err
	}
	for _, f := range folders {
		if namecheck.Slugify(f.MountPoint) != code {
			continue
		}
		if err := e.fs.RenameFolder(ctx, f.ID, code); err != nil {
			e.warn("restore mount point", code, err)
		}
		return f.ID, true, nil
	}
	return 0, false, nil
}

// EnsureAssociationStructure makes sure the association's group and folder
// exist, the folder carries its quota and applicable groups, the fixed
// sub-tree is in place, and the static group ACL templates are applied.
//
// The group is a hard precondition (the folder is mounted through it), so a
// directory failure aborts with FolderUnknown. Everything after folder
// creation is best-effort: failures are logged and the folder id is still
// returned so callers can proceed with whatever did work.
func (e *Engine) EnsureAssociationStructure(ctx context.Context, code string) (int64, error) {
	exists, err := e.dir.GroupExists(ctx, code)
	if err != nil {
		return FolderUnknown, fmt.Errorf("ensure structure %q: %w", code, err)
	}
	if !exists {
		if err := e.dir.CreateGroup(ctx, code, code); err != nil {
			return FolderUnknown, fmt.Errorf("ensure structure %q: %w", code, err)
		}
	}

	folderID, found, err := e.findFolder(ctx, code)
	if err != nil {
		return FolderUnknown, fmt.Errorf("ensure structure %q: %w", code, err)
	}
	if !found {
		folderID, err = e.fs.CreateFolder(ctx, code)
		if err != nil {
			return FolderUnknown, fmt.Errorf("ensure structure %q: %w", code, err)
		}
		if err := e.fs.SetQuota(ctx, folderID, e.quota); err != nil {
			e.warn("set quota", code, err)
		}
	}

	e.ensureApplicableGroups(ctx, folderID, code)
	e.ensureSubFolders(ctx, folderID, code)
	e.applyGroupTemplates(ctx, folderID, code)

	return folderID, nil
}

// ensureApplicableGroups declares which groups may mount the folder and at
// what ceiling: the association itself and the platform admins at full
// access, invites read-only.
func (e *Engine) ensureApplicableGroups(ctx context.Context, folderID int64, code string) {
	grants := []struct {
		gid  string
		perm sharedfs.Permission
	}{
		{code, sharedfs.PermAll},
		{adminGroup, sharedfs.PermAll},
		{string(models.RoleAdminIUT), sharedfs.PermAll},
		{string(models.RoleInvite), sharedfs.PermRead},
	}
	for _, g := range grants {
		if err := e.fs.AddApplicableGroup(ctx, folderID, g.gid); err != nil {
			e.warn("add applicable group "+g.gid, code, err)
			continue
		}
		if err := e.fs.SetGroupPermissions(ctx, folderID, g.gid, g.perm); err != nil {
			e.warn("set group permissions "+g.gid, code, err)
		}
	}
}

// ensureSubFolders builds the fixed sub-tree, creating only what is missing.
// Nodes users created themselves are never touched.
func (e *Engine) ensureSubFolders(ctx context.Context, folderID int64, code string) {
	_ = walkLayout(e.layout, "", func(p string, n LayoutNode) error {
		node, err := e.fs.NodeByPath(ctx, folderID, p)
		if err != nil {
			e.warn("resolve node "+p, code, err)
			return nil
		}
		if node != nil {
			return nil
		}
		if _, err := e.fs.CreateNode(ctx, folderID, p); err != nil {
			e.warn("create node "+p, code, err)
		}
		return nil
	})
}

// applyGroupTemplates writes the standing group-level ACL rules: admin_iut
// gets the admin_iut template and invite the invite template on every
// association folder, regardless of roster. Group mappings are addressed
// directly by group id, so no mapping lookup is needed.
func (e *Engine) applyGroupTemplates(ctx context.Context, folderID int64, code string) {
	if err := e.fs.EnableACL(ctx, folderID); err != nil {
		e.warn("enable acl", code, err)
		return
	}
	for _, t := range []struct {
		gid  string
		role models.Role
	}{
		{string(models.RoleAdminIUT), models.RoleAdminIUT},
		{string(models.RoleInvite), models.RoleInvite},
	} {
		m := sharedfs.Mapping{Type: "group", ID: t.gid, DisplayName: t.gid}
		e.applyTemplate(ctx, folderID, code, m, t.role)
	}
}

// ApplyRolePermissions reconciles one (folder, user, role) triple: group
// membership, ACL mode, identity-mapping resolution, and one rule per
// templated node that physically exists. Sub-folders not yet created are
// silently skipped; each rule write is isolated from the others.
func (e *Engine) ApplyRolePermissions(ctx context.Context, folderID int64, userID string, role models.Role) error {
	folders, err := e.fs.Folders(ctx)
	if err != nil {
		return fmt.Errorf("apply role permissions: %w", err)
	}
	code := ""
	for _, f := range folders {
		if f.ID == folderID {
			code = f.MountPoint
			break
		}
	}
	if code == "" {
		return fmt.Errorf("apply role permissions: folder %d not found", folderID)
	}

	if err := e.dir.AddUserToGroup(ctx, userID, code); err != nil {
		e.warn("add user "+userID+" to group", code, err)
	}

	if err := e.fs.EnableACL(ctx, folderID); err != nil {
		e.warn("enable acl", code, err)
	}

	mappings, err := e.fs.MappingsForUser(ctx, folderID, userID)
	if err != nil {
		return fmt.Errorf("apply role permissions: %w", err)
	}
	mapping, ok := sharedfs.ResolveMapping(mappings, code)
	if !ok {
		// The backend cannot map the user inside this folder yet (group
		// membership may still be propagating). The next roster mutation
		// will pick it up.
		e.log.Info("no acl mapping for user yet, skipping rules",
			zap.String("association", code),
			zap.String("user", userID))
		return nil
	}

	e.applyTemplate(ctx, folderID, code, mapping, role)
	return nil
}

// applyTemplate writes the role's access template for one identity mapping:
// read on the folder root, then the class-derived mask on every layout node
// that exists. A failing write is logged and the remaining nodes are still
// processed.
func (e *Engine) applyTemplate(ctx context.Context, folderID int64, code string, m sharedfs.Mapping, role models.Role) {
	root, err := e.fs.NodeByPath(ctx, folderID, "")
	if err != nil {
		e.warn("resolve folder root", code, err)
	} else if root != nil {
		if err := e.fs.SetRule(ctx, m, root.ID, sharedfs.PermRead); err != nil {
			e.warn("set root rule for "+m.ID, code, err)
		}
	}

	_ = walkLayout(e.layout, "", func(p string, n LayoutNode) error {
		node, err := e.fs.NodeByPath(ctx, folderID, p)
		if err != nil {
			e.warn("resolve node "+p, code, err)
			return nil
		}
		if node == nil {
			return nil
		}
		perm := RoleAccess(role, n.Class)
		if err := e.fs.SetRule(ctx, m, node.ID, perm); err != nil {
			e.warn("set rule "+p+" for "+m.ID, code, err)
		}
		return nil
	})
}

// EnsureGlobalGroups creates the platform-wide role groups. Run at startup.
func (e *Engine) EnsureGlobalGroups(ctx context.Context) error {
	for _, role := range models.GlobalRoles {
		gid := string(role)
		exists, err := e.dir.GroupExists(ctx, gid)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := e.dir.CreateGroup(ctx, gid, gid); err != nil {
			return err
		}
	}
	return nil
}

// SyncGlobalGroups recomputes, from the user's entire roster across all
// associations, whether they hold each global-qualifying role anywhere, and
// reconciles platform-wide group membership accordingly. O(memberships of
// one user) per call, which is small.
func (e *Engine) SyncGlobalGroups(ctx context.Context, userID string) error {
	memberships, err := e.roster.UserMemberships(ctx, userID)
	if err != nil {
		return fmt.Errorf("sync global groups for %q: %w", userID, err)
	}

	held := make(map[models.Role]bool, len(memberships))
	for _, m := range memberships {
		held[m.Role] = true
	}

	for _, role := range models.GlobalRoles {
		gid := string(role)
		isIn, err := e.dir.IsUserInGroup(ctx, userID, gid)
		if err != nil {
			e.warn("check global group "+gid, userID, err)
			continue
		}
		switch {
		case held[role] && !isIn:
			if err := e.dir.AddUserToGroup(ctx, userID, gid); err != nil {
				e.warn("join global group "+gid, userID, err)
			}
		case !held[role] && isIn:
			if err := e.dir.RemoveUserFromGroup(ctx, userID, gid); err != nil {
				e.warn("leave global group "+gid, userID, err)
			}
		}
	}
	return nil
}

// DeleteStructure tears down the external state for an association: its
// directory group and its shared folder. Best-effort; the registry rows are
// gone either way, and a leftover folder is an operator cleanup, not a
// correctness problem.
func (e *Engine) DeleteStructure(ctx context.Context, code string) error {
	if err := e.dir.DeleteGroup(ctx, code); err != nil {
		e.warn("delete group", code, err)
	}

	folderID, found, err := e.findFolder(ctx, code)
	if err != nil {
		return fmt.Errorf("delete structure %q: %w", code, err)
	}
	if !found {
		return nil
	}
	if err := e.fs.DeleteFolder(ctx, folderID); err != nil {
		return fmt.Errorf("delete structure %q: %w", code, err)
	}
	return nil
}

// FolderStats is the live usage snapshot for an association folder.
type FolderStats struct {
	FolderID int64 `json:"id"`
	Size     int64 `json:"size"`
	Usage    int64 `json:"usage"`
	Quota    int64 `json:"quota"`
}

// FolderStats reads live usage and quota for the association's folder. When
// the folder is not provisioned (or the backend is down) it returns the
// FolderUnknown sentinel with the default quota so the UI can still render.
func (e *Engine) FolderStats(ctx context.Context, code string) FolderStats {
	stats := FolderStats{FolderID: FolderUnknown, Quota: e.quota}

	folderID, found, err := e.findFolder(ctx, code)
	if err != nil || !found {
		if err != nil {
			e.warn("folder stats", code, err)
		}
		return stats
	}
	stats.FolderID = folderID

	if size, err := e.fs.Usage(ctx, folderID); err != nil {
		e.warn("folder usage", code, err)
	} else {
		stats.Size = size
		stats.Usage = size
	}
	if quota, err := e.fs.Quota(ctx, folderID); err != nil {
		e.warn("folder quota", code, err)
	} else if quota > 0 {
		stats.Quota = quota
	}
	return stats
}

func (e *Engine) warn(op, subject string, err error) {
	e.log.Warn("reconcile: "+op+" failed",
		zap.String("subject", subject),
		zap.Error(err))
}
