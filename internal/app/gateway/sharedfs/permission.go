// internal/app/gateway/sharedfs/permission.go
package sharedfs

import "strings"

// Permission is the backend's additive permission bitmask. The numeric
// values are part of the wire protocol and must not change.
type Permission int

const (
	PermRead   Permission = 1
	PermUpdate Permission = 2
	PermCreate Permission = 4
	PermDelete Permission = 8
	PermShare  Permission = 16

	PermAll Permission = PermRead | PermUpdate | PermCreate | PermDelete | PermShare

	// PermNone as an explicit rule revokes access to a node.
	PermNone Permission = 0
)

// Has reports whether every bit of p2 is set in p.
func (p Permission) Has(p2 Permission) bool {
	return p&p2 == p2
}

// String renders the mask for logs ("read|update|create").
func (p Permission) String() string {
	if p == PermNone {
		return "none"
	}
	var parts []string
	for _, f := range []struct {
		bit  Permission
		name string
	}{
		{PermRead, "read"},
		{PermUpdate, "update"},
		{PermCreate, "create"},
		{PermDelete, "delete"},
		{PermShare, "share"},
	} {
		if p.Has(f.bit) {
			parts = append(parts, f.name)
		}
	}
	return strings.Join(parts, "|")
}
