package reconcile

import (
	"path"

	"github.com/CorneTubage/assohub/internal/app/gateway/sharedfs"
	"github.com/CorneTubage/assohub/internal/domain/models"
)

// AccessClass groups layout nodes by how roles map onto them. The class, not
// the individual node, is what the role templates key off.
type AccessClass int

const (
	// ClassBrowse nodes are structural: everyone can read, nobody writes
	// directly in them (the folder root, official/, papers/, reports/).
	ClassBrowse AccessClass = iota

	// ClassArchive is the archive/ folder: the bureau (president, admin_iut)
	// may write but never delete; everyone else reads.
	ClassArchive

	// ClassWork nodes are where day-to-day documents live: full access for
	// active roles, read-only for teacher and invite.
	ClassWork
)

// LayoutNode is one directory in the fixed sub-tree provisioned beneath
// every association folder.
type LayoutNode struct {
	Name     string
	Class    AccessClass
	Children []LayoutNode
}

// DefaultLayout is the sub-tree every association folder gets. It is a
// static deployment parameter: the builder creates missing nodes but never
// deletes or renames anything users added themselves.
var DefaultLayout = []LayoutNode{
	{Name: "archive", Class: ClassArchive},
	{Name: "official", Class: ClassBrowse, Children: []LayoutNode{
		{Name: "other", Class: ClassWork},
		{Name: "papers", Class: ClassBrowse, Children: []LayoutNode{
			{Name: "prefecture-documents", Class: ClassWork},
			{Name: "statutes", Class: ClassWork},
			{Name: "objectives", Class: ClassWork},
		}},
		{Name: "accounts", Class: ClassWork, Children: []LayoutNode{
			{Name: "bank-details", Class: ClassWork},
			{Name: "monthly-statements", Class: ClassWork},
			{Name: "expense-reports", Class: ClassWork},
		}},
		{Name: "reports", Class: ClassBrowse, Children: []LayoutNode{
			{Name: "monthly-reports", Class: ClassWork},
			{Name: "management-plan", Class: ClassWork},
			{Name: "midterm-review", Class: ClassWork},
			{Name: "final-report", Class: ClassWork},
			{Name: "collective-video", Class: ClassWork},
		}},
	}},
}

// walkLayout visits every node depth-first, parents before children, calling
// fn with the slash-separated path relative to the folder root. A non-nil
// error from fn stops the walk.
func walkLayout(nodes []LayoutNode, parent string, fn func(p string, n LayoutNode) error) error {
	for _, n := range nodes {
		p := path.Join(parent, n.Name)
		if err := fn(p, n); err != nil {
			return err
		}
		if err := walkLayout(n.Children, p, fn); err != nil {
			return err
		}
	}
	return nil
}

// RoleAccess is the static role -> permission template: what mask a member
// with the given role gets on a node of the given class.
func RoleAccess(role models.Role, class AccessClass) sharedfs.Permission {
	switch class {
	case ClassArchive:
		if role == models.RolePresident || role == models.RoleAdminIUT {
			return sharedfs.PermAll &^ sharedfs.PermDelete
		}
		return sharedfs.PermRead
	case ClassWork:
		if role.ReadOnly() {
			return sharedfs.PermRead
		}
		return sharedfs.PermAll
	default: // ClassBrowse
		return sharedfs.PermRead
	}
}
