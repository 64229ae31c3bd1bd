package reconcile

import (
	"testing"

	"github.com/CorneTubage/assohub/internal/app/gateway/sharedfs"
	"github.com/CorneTubage/assohub/internal/domain/models"
)

func TestWalkLayoutVisitsParentsFirst(t *testing.T) {
	var paths []string
	err := walkLayout(DefaultLayout, "", func(p string, n LayoutNode) error {
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		t.Fatalf("walkLayout: %v", err)
	}

	seen := make(map[string]int, len(paths))
	for i, p := range paths {
		seen[p] = i
	}
	for _, want := range []string{
		"archive",
		"official",
		"official/other",
		"official/papers/statutes",
		"official/accounts/bank-details",
		"official/reports/final-report",
	} {
		if _, ok := seen[want]; !ok {
			t.Errorf("layout walk missing %q", want)
		}
	}
	if seen["official"] > seen["official/papers"] {
		t.Error("parent visited after child")
	}
	if seen["official/papers"] > seen["official/papers/statutes"] {
		t.Error("parent visited after child")
	}
}

func TestRoleAccess(t *testing.T) {
	cases := []struct {
		role  models.Role
		class AccessClass
		want  sharedfs.Permission
	}{
		{models.RolePresident, ClassArchive, sharedfs.PermAll &^ sharedfs.PermDelete},
		{models.RoleAdminIUT, ClassArchive, sharedfs.PermAll &^ sharedfs.PermDelete},
		{models.RoleTreasurer, ClassArchive, sharedfs.PermRead},
		{models.RoleMember, ClassArchive, sharedfs.PermRead},
		{models.RolePresident, ClassWork, sharedfs.PermAll},
		{models.RoleMember, ClassWork, sharedfs.PermAll},
		{models.RoleTeacher, ClassWork, sharedfs.PermRead},
		{models.RoleInvite, ClassWork, sharedfs.PermRead},
		{models.RolePresident, ClassBrowse, sharedfs.PermRead},
		{models.RoleMember, ClassBrowse, sharedfs.PermRead},
	}
	for _, c := range cases {
		if got := RoleAccess(c.role, c.class); got != c.want {
			t.Errorf("RoleAccess(%s, %d) = %v, want %v", c.role, c.class, got, c.want)
		}
	}
}
