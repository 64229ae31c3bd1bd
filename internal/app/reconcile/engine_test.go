package reconcile

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/CorneTubage/assohub/internal/app/gateway/sharedfs"
	"github.com/CorneTubage/assohub/internal/domain/models"
	"github.com/CorneTubage/assohub/internal/testutil"
)

func newTestEngine() (*Engine, *testutil.FakeDirectory, *testutil.FakeStorage, *testutil.FakeRoster) {
	dir := &testutil.FakeDirectory{}
	fs := &testutil.FakeStorage{}
	roster := &testutil.FakeRoster{}
	return New(dir, fs, roster, zap.NewNop()), dir, fs, roster
}

func TestEnsureAssociationStructure(t *testing.T) {
	ctx := context.Background()
	eng, dir, fs, _ := newTestEngine()

	folderID, err := eng.EnsureAssociationStructure(ctx, "cine-club")
	if err != nil {
		t.Fatalf("EnsureAssociationStructure: %v", err)
	}
	if folderID == FolderUnknown {
		t.Fatal("got FolderUnknown for a healthy backend")
	}

	if !dir.HasGroup("cine-club") {
		t.Error("association group not created")
	}

	if quota, _ := fs.Quota(ctx, folderID); quota != DefaultQuotaBytes {
		t.Errorf("quota = %d, want %d", quota, DefaultQuotaBytes)
	}

	for _, p := range []string{"archive", "official", "official/papers/statutes", "official/reports/collective-video"} {
		if !fs.HasNode(folderID, p) {
			t.Errorf("sub-folder %q not created", p)
		}
	}

	for gid, want := range map[string]sharedfs.Permission{
		"cine-club": sharedfs.PermAll,
		"admin":     sharedfs.PermAll,
		"admin_iut": sharedfs.PermAll,
		"invite":    sharedfs.PermRead,
	} {
		got, ok := fs.GroupPermission(folderID, gid)
		if !ok {
			t.Errorf("group %q not applicable on folder", gid)
			continue
		}
		if got != want {
			t.Errorf("group %q ceiling = %v, want %v", gid, got, want)
		}
	}

	// Standing group templates: invite reads the archive, admin_iut may
	// write it but not delete.
	inviteMapping := sharedfs.Mapping{Type: "group", ID: "invite", DisplayName: "invite"}
	if got, ok := fs.Rule(folderID, inviteMapping, "archive"); !ok || got != sharedfs.PermRead {
		t.Errorf("invite archive rule = %v (ok=%v), want %v", got, ok, sharedfs.PermRead)
	}
	iutMapping := sharedfs.Mapping{Type: "group", ID: "admin_iut", DisplayName: "admin_iut"}
	if got, ok := fs.Rule(folderID, iutMapping, "archive"); !ok || got != sharedfs.PermAll&^sharedfs.PermDelete {
		t.Errorf("admin_iut archive rule = %v (ok=%v)", got, ok)
	}
}

func TestEnsureAssociationStructureIsIdempotent(t *testing.T) {
	ctx := context.Background()
	eng, _, _, _ := newTestEngine()

	first, err := eng.EnsureAssociationStructure(ctx, "robotics")
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := eng.EnsureAssociationStructure(ctx, "robotics")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first != second {
		t.Errorf("folder id changed across runs: %d then %d", first, second)
	}
}

func TestEnsureAssociationStructureRepairsRelabeledMount(t *testing.T) {
	ctx := context.Background()
	eng, _, fs, _ := newTestEngine()

	// A backend admin relabeled the mount out of band; the label still
	// slugs back to the code.
	drifted, err := fs.CreateFolder(ctx, "Ciné-Club")
	if err != nil {
		t.Fatalf("seed folder: %v", err)
	}

	folderID, err := eng.EnsureAssociationStructure(ctx, "cine-club")
	if err != nil {
		t.Fatalf("EnsureAssociationStructure: %v", err)
	}
	if folderID != drifted {
		t.Errorf("folder id = %d, want the relabeled folder %d", folderID, drifted)
	}

	folders, err := fs.Folders(ctx)
	if err != nil {
		t.Fatalf("Folders: %v", err)
	}
	if len(folders) != 1 {
		t.Fatalf("got %d folders, want the relabeled one reused", len(folders))
	}
	if folders[0].MountPoint != "cine-club" {
		t.Errorf("mount point = %q, want the canonical label restored", folders[0].MountPoint)
	}
}

func TestEnsureAssociationStructureDirectoryDown(t *testing.T) {
	ctx := context.Background()
	eng, dir, _, _ := newTestEngine()
	dir.FailWith = errors.New("ldap timeout")

	folderID, err := eng.EnsureAssociationStructure(ctx, "chess")
	if err == nil {
		t.Fatal("expected error when the directory is unreachable")
	}
	if folderID != FolderUnknown {
		t.Errorf("folder id = %d, want FolderUnknown", folderID)
	}
}

func TestEnsureAssociationStructureSurvivesNodeFailures(t *testing.T) {
	ctx := context.Background()
	eng, _, fs, _ := newTestEngine()
	fs.FailOps = map[string]error{"CreateNode": sharedfs.ErrUnavailable}

	folderID, err := eng.EnsureAssociationStructure(ctx, "theatre")
	if err != nil {
		t.Fatalf("EnsureAssociationStructure: %v", err)
	}
	if folderID == FolderUnknown {
		t.Fatal("folder id lost on a sub-folder failure")
	}

	// The next run heals the missing tree.
	fs.FailOps = nil
	if _, err := eng.EnsureAssociationStructure(ctx, "theatre"); err != nil {
		t.Fatalf("healing run: %v", err)
	}
	if !fs.HasNode(folderID, "official/accounts/bank-details") {
		t.Error("sub-tree not healed on the next run")
	}
}

func TestApplyRolePermissions(t *testing.T) {
	ctx := context.Background()
	eng, dir, fs, _ := newTestEngine()

	folderID, err := eng.EnsureAssociationStructure(ctx, "cine-club")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	mapping := sharedfs.Mapping{Type: "user", ID: "42", DisplayName: "cine-club"}
	fs.Mappings = map[string][]sharedfs.Mapping{"alice": {mapping}}

	if err := eng.ApplyRolePermissions(ctx, folderID, "alice", models.RolePresident); err != nil {
		t.Fatalf("ApplyRolePermissions: %v", err)
	}

	if ok, _ := dir.IsUserInGroup(ctx, "alice", "cine-club"); !ok {
		t.Error("user not added to the association group")
	}
	if got, ok := fs.Rule(folderID, mapping, ""); !ok || got != sharedfs.PermRead {
		t.Errorf("root rule = %v (ok=%v), want read", got, ok)
	}
	if got, _ := fs.Rule(folderID, mapping, "archive"); got != sharedfs.PermAll&^sharedfs.PermDelete {
		t.Errorf("president archive rule = %v", got)
	}
	if got, _ := fs.Rule(folderID, mapping, "official/other"); got != sharedfs.PermAll {
		t.Errorf("president work rule = %v", got)
	}
	if got, _ := fs.Rule(folderID, mapping, "official"); got != sharedfs.PermRead {
		t.Errorf("president browse rule = %v", got)
	}
}

func TestApplyRolePermissionsReadOnlyRoles(t *testing.T) {
	ctx := context.Background()
	eng, _, fs, _ := newTestEngine()

	folderID, err := eng.EnsureAssociationStructure(ctx, "cine-club")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	mapping := sharedfs.Mapping{Type: "user", ID: "7", DisplayName: "cine-club"}
	fs.Mappings = map[string][]sharedfs.Mapping{"prof": {mapping}}

	if err := eng.ApplyRolePermissions(ctx, folderID, "prof", models.RoleTeacher); err != nil {
		t.Fatalf("ApplyRolePermissions: %v", err)
	}
	if got, _ := fs.Rule(folderID, mapping, "official/other"); got != sharedfs.PermRead {
		t.Errorf("teacher work rule = %v, want read", got)
	}
	if got, _ := fs.Rule(folderID, mapping, "archive"); got != sharedfs.PermRead {
		t.Errorf("teacher archive rule = %v, want read", got)
	}
}

func TestApplyRolePermissionsNoMappingYet(t *testing.T) {
	ctx := context.Background()
	eng, _, fs, _ := newTestEngine()

	folderID, err := eng.EnsureAssociationStructure(ctx, "cine-club")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	// No mapping seeded: the backend has not propagated group membership.
	if err := eng.ApplyRolePermissions(ctx, folderID, "bob", models.RoleMember); err != nil {
		t.Fatalf("expected a clean skip, got %v", err)
	}
	if got, ok := fs.Rule(folderID, sharedfs.Mapping{Type: "user", ID: "bob"}, ""); ok {
		t.Errorf("unexpected rule written without a mapping: %v", got)
	}
}

func TestApplyRolePermissionsRuleFailureIsolated(t *testing.T) {
	ctx := context.Background()
	eng, _, fs, _ := newTestEngine()

	folderID, err := eng.EnsureAssociationStructure(ctx, "cine-club")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	mapping := sharedfs.Mapping{Type: "user", ID: "42", DisplayName: "cine-club"}
	fs.Mappings = map[string][]sharedfs.Mapping{"alice": {mapping}}
	fs.FailOps = map[string]error{"SetRule": sharedfs.ErrUnavailable}

	if err := eng.ApplyRolePermissions(ctx, folderID, "alice", models.RoleMember); err != nil {
		t.Fatalf("rule failures must not abort the pass, got %v", err)
	}
}

func TestApplyRolePermissionsUnknownFolder(t *testing.T) {
	ctx := context.Background()
	eng, _, _, _ := newTestEngine()

	if err := eng.ApplyRolePermissions(ctx, 999, "alice", models.RoleMember); err == nil {
		t.Fatal("expected an error for an unknown folder id")
	}
}

func TestSyncGlobalGroups(t *testing.T) {
	ctx := context.Background()
	eng, dir, _, roster := newTestEngine()

	if err := eng.EnsureGlobalGroups(ctx); err != nil {
		t.Fatalf("EnsureGlobalGroups: %v", err)
	}
	for _, role := range models.GlobalRoles {
		if !dir.HasGroup(string(role)) {
			t.Fatalf("global group %q not created", role)
		}
	}

	roster.Set("alice",
		models.Membership{UserID: "alice", AssociationCode: "cine-club", Role: models.RolePresident},
		models.Membership{UserID: "alice", AssociationCode: "chess", Role: models.RoleMember},
	)
	if err := eng.SyncGlobalGroups(ctx, "alice"); err != nil {
		t.Fatalf("SyncGlobalGroups: %v", err)
	}
	if ok, _ := dir.IsUserInGroup(ctx, "alice", "president"); !ok {
		t.Error("alice missing from the president group")
	}
	if ok, _ := dir.IsUserInGroup(ctx, "alice", "treasurer"); ok {
		t.Error("alice wrongly in the treasurer group")
	}

	// She steps down everywhere: the global group membership follows.
	roster.Set("alice",
		models.Membership{UserID: "alice", AssociationCode: "cine-club", Role: models.RoleMember},
	)
	if err := eng.SyncGlobalGroups(ctx, "alice"); err != nil {
		t.Fatalf("SyncGlobalGroups after demotion: %v", err)
	}
	if ok, _ := dir.IsUserInGroup(ctx, "alice", "president"); ok {
		t.Error("alice still in the president group after demotion")
	}
}

func TestSyncGlobalGroupsKeepsRoleHeldElsewhere(t *testing.T) {
	ctx := context.Background()
	eng, dir, _, roster := newTestEngine()

	if err := eng.EnsureGlobalGroups(ctx); err != nil {
		t.Fatalf("EnsureGlobalGroups: %v", err)
	}
	roster.Set("bob",
		models.Membership{UserID: "bob", AssociationCode: "cine-club", Role: models.RoleMember},
		models.Membership{UserID: "bob", AssociationCode: "chess", Role: models.RoleTreasurer},
	)
	if err := eng.SyncGlobalGroups(ctx, "bob"); err != nil {
		t.Fatalf("SyncGlobalGroups: %v", err)
	}
	if ok, _ := dir.IsUserInGroup(ctx, "bob", "treasurer"); !ok {
		t.Error("treasurer role held in another association was dropped")
	}
}

func TestDeleteStructure(t *testing.T) {
	ctx := context.Background()
	eng, dir, fs, _ := newTestEngine()

	folderID, err := eng.EnsureAssociationStructure(ctx, "chess")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := eng.DeleteStructure(ctx, "chess"); err != nil {
		t.Fatalf("DeleteStructure: %v", err)
	}
	if dir.HasGroup("chess") {
		t.Error("association group survived deletion")
	}
	if _, found, _ := sharedfs.FindFolderByKey(ctx, fs, "chess"); found {
		t.Errorf("folder %d survived deletion", folderID)
	}

	// Deleting what is already gone is a no-op.
	if err := eng.DeleteStructure(ctx, "chess"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestFolderStats(t *testing.T) {
	ctx := context.Background()
	eng, _, fs, _ := newTestEngine()

	// Unprovisioned association: sentinel id, default quota.
	stats := eng.FolderStats(ctx, "ghost")
	if stats.FolderID != FolderUnknown {
		t.Errorf("folder id = %d, want FolderUnknown", stats.FolderID)
	}
	if stats.Quota != DefaultQuotaBytes {
		t.Errorf("quota = %d, want default", stats.Quota)
	}

	folderID, err := eng.EnsureAssociationStructure(ctx, "cine-club")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	fs.SetSize(folderID, 2048)

	stats = eng.FolderStats(ctx, "cine-club")
	if stats.FolderID != folderID {
		t.Errorf("folder id = %d, want %d", stats.FolderID, folderID)
	}
	if stats.Size != 2048 || stats.Usage != 2048 {
		t.Errorf("size/usage = %d/%d, want 2048", stats.Size, stats.Usage)
	}
	if stats.Quota != DefaultQuotaBytes {
		t.Errorf("quota = %d, want %d", stats.Quota, DefaultQuotaBytes)
	}
}
