package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/CorneTubage/assohub/internal/app/gateway/directory"
	"github.com/CorneTubage/assohub/internal/app/gateway/sharedfs"
	"github.com/CorneTubage/assohub/internal/domain/models"
)

// FakeDirectory is an in-memory directory.Gateway for tests. Zero value is
// ready to use. FailWith, when set, is returned by every call, which is how
// tests simulate an unreachable backend.
type FakeDirectory struct {
	mu       sync.Mutex
	FailWith error

	users  map[string]*models.DirUser
	groups map[string]map[string]bool // gid -> member set
	names  map[string]string          // gid -> display name
}

func (f *FakeDirectory) init() {
	if f.groups == nil {
		f.groups = make(map[string]map[string]bool)
		f.names = make(map[string]string)
		f.users = make(map[string]*models.DirUser)
	}
}

// AddUser seeds a directory user.
func (f *FakeDirectory) AddUser(u models.DirUser) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	f.users[u.ID] = &u
}

// Groups returns the gids the user currently belongs to, for assertions.
func (f *FakeDirectory) Groups(userID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	var out []string
	for gid, members := range f.groups {
		if members[userID] {
			out = append(out, gid)
		}
	}
	return out
}

// HasGroup reports whether the group exists, for assertions.
func (f *FakeDirectory) HasGroup(gid string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	_, ok := f.groups[gid]
	return ok
}

func (f *FakeDirectory) GroupExists(ctx context.Context, gid string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if f.FailWith != nil {
		return false, f.FailWith
	}
	_, ok := f.groups[gid]
	return ok, nil
}

func (f *FakeDirectory) CreateGroup(ctx context.Context, gid, displayName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if f.FailWith != nil {
		return f.FailWith
	}
	if _, ok := f.groups[gid]; !ok {
		f.groups[gid] = make(map[string]bool)
	}
	f.names[gid] = displayName
	return nil
}

func (f *FakeDirectory) DeleteGroup(ctx context.Context, gid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if f.FailWith != nil {
		return f.FailWith
	}
	delete(f.groups, gid)
	delete(f.names, gid)
	return nil
}

func (f *FakeDirectory) LookupUser(ctx context.Context, userID string) (*models.DirUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *FakeDirectory) IsUserInGroup(ctx context.Context, userID, gid string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if f.FailWith != nil {
		return false, f.FailWith
	}
	return f.groups[gid][userID], nil
}

func (f *FakeDirectory) AddUserToGroup(ctx context.Context, userID, gid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if f.FailWith != nil {
		return f.FailWith
	}
	if _, ok := f.groups[gid]; !ok {
		f.groups[gid] = make(map[string]bool)
	}
	f.groups[gid][userID] = true
	return nil
}

func (f *FakeDirectory) RemoveUserFromGroup(ctx context.Context, userID, gid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if f.FailWith != nil {
		return f.FailWith
	}
	delete(f.groups[gid], userID)
	return nil
}

var _ directory.Gateway = (*FakeDirectory)(nil)

// fakeFolder is one provisioned folder in FakeStorage.
type fakeFolder struct {
	mountPoint string
	quota      int64
	size       int64
	aclEnabled bool
	groups     map[string]sharedfs.Permission
	nodes      map[string]int64               // path -> node id ("" is the root)
	rules      map[string]sharedfs.Permission // ruleKey(mapping, nodeID) -> mask
}

// FakeStorage is an in-memory sharedfs.Gateway. Zero value is ready.
//
// FailWith makes every call fail. FailOps makes only the named operations
// fail ("SetRule", "CreateNode", ...), which is how tests exercise the
// engine's per-step error isolation. Mappings seeds MappingsForUser.
type FakeStorage struct {
	mu       sync.Mutex
	FailWith error
	FailOps  map[string]error
	Mappings map[string][]sharedfs.Mapping // userID -> candidate mappings

	nextID  int64
	folders map[int64]*fakeFolder
}

func (f *FakeStorage) init() {
	if f.folders == nil {
		f.folders = make(map[int64]*fakeFolder)
	}
}

func (f *FakeStorage) fail(op string) error {
	if f.FailWith != nil {
		return f.FailWith
	}
	return f.FailOps[op]
}

func ruleKey(m sharedfs.Mapping, nodeID int64) string {
	return fmt.Sprintf("%s:%s:%d", m.Type, m.ID, nodeID)
}

// Rule returns the stored mask for (mapping, path) in the folder, for
// assertions. ok is false when no rule was written.
func (f *FakeStorage) Rule(folderID int64, m sharedfs.Mapping, path string) (sharedfs.Permission, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	fl, ok := f.folders[folderID]
	if !ok {
		return 0, false
	}
	nodeID, ok := fl.nodes[path]
	if !ok {
		return 0, false
	}
	p, ok := fl.rules[ruleKey(m, nodeID)]
	return p, ok
}

// HasNode reports whether the path exists in the folder, for assertions.
func (f *FakeStorage) HasNode(folderID int64, path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	fl, ok := f.folders[folderID]
	if !ok {
		return false
	}
	_, ok = fl.nodes[path]
	return ok
}

// GroupPermission returns the applicable-group ceiling for gid, for
// assertions.
func (f *FakeStorage) GroupPermission(folderID int64, gid string) (sharedfs.Permission, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	fl, ok := f.folders[folderID]
	if !ok {
		return 0, false
	}
	p, ok := fl.groups[gid]
	return p, ok
}

// SetSize seeds the folder's reported size.
func (f *FakeStorage) SetSize(folderID, size int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if fl, ok := f.folders[folderID]; ok {
		fl.size = size
	}
}

func (f *FakeStorage) Folders(ctx context.Context) ([]sharedfs.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if err := f.fail("Folders"); err != nil {
		return nil, err
	}
	var out []sharedfs.Folder
	for id, fl := range f.folders {
		out = append(out, sharedfs.Folder{ID: id, MountPoint: fl.mountPoint, Quota: fl.quota, Size: fl.size})
	}
	return out, nil
}

func (f *FakeStorage) CreateFolder(ctx context.Context, mountPoint string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if err := f.fail("CreateFolder"); err != nil {
		return 0, err
	}
	f.nextID++
	id := f.nextID
	f.folders[id] = &fakeFolder{
		mountPoint: mountPoint,
		quota:      sharedfs.QuotaUnlimited,
		groups:     make(map[string]sharedfs.Permission),
		nodes:      map[string]int64{"": f.newNodeID()},
		rules:      make(map[string]sharedfs.Permission),
	}
	return id, nil
}

func (f *FakeStorage) newNodeID() int64 {
	f.nextID++
	return f.nextID
}

func (f *FakeStorage) RenameFolder(ctx context.Context, folderID int64, mountPoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if err := f.fail("RenameFolder"); err != nil {
		return err
	}
	fl, ok := f.folders[folderID]
	if !ok {
		return sharedfs.ErrUnavailable
	}
	fl.mountPoint = mountPoint
	return nil
}

func (f *FakeStorage) DeleteFolder(ctx context.Context, folderID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if err := f.fail("DeleteFolder"); err != nil {
		return err
	}
	delete(f.folders, folderID)
	return nil
}

func (f *FakeStorage) SetQuota(ctx context.Context, folderID, bytes int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if err := f.fail("SetQuota"); err != nil {
		return err
	}
	if fl, ok := f.folders[folderID]; ok {
		fl.quota = bytes
	}
	return nil
}

func (f *FakeStorage) AddApplicableGroup(ctx context.Context, folderID int64, gid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if err := f.fail("AddApplicableGroup"); err != nil {
		return err
	}
	fl, ok := f.folders[folderID]
	if !ok {
		return sharedfs.ErrUnavailable
	}
	if _, ok := fl.groups[gid]; !ok {
		fl.groups[gid] = sharedfs.PermAll
	}
	return nil
}

func (f *FakeStorage) SetGroupPermissions(ctx context.Context, folderID int64, gid string, p sharedfs.Permission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if err := f.fail("SetGroupPermissions"); err != nil {
		return err
	}
	fl, ok := f.folders[folderID]
	if !ok {
		return sharedfs.ErrUnavailable
	}
	fl.groups[gid] = p
	return nil
}

func (f *FakeStorage) EnableACL(ctx context.Context, folderID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if err := f.fail("EnableACL"); err != nil {
		return err
	}
	if fl, ok := f.folders[folderID]; ok {
		fl.aclEnabled = true
	}
	return nil
}

func (f *FakeStorage) MappingsForUser(ctx context.Context, folderID int64, userID string) ([]sharedfs.Mapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if err := f.fail("MappingsForUser"); err != nil {
		return nil, err
	}
	return f.Mappings[userID], nil
}

func (f *FakeStorage) SetRule(ctx context.Context, m sharedfs.Mapping, nodeID int64, p sharedfs.Permission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if err := f.fail("SetRule"); err != nil {
		return err
	}
	for _, fl := range f.folders {
		for _, id := range fl.nodes {
			if id == nodeID {
				fl.rules[ruleKey(m, nodeID)] = p
				return nil
			}
		}
	}
	return sharedfs.ErrUnavailable
}

func (f *FakeStorage) NodeByPath(ctx context.Context, folderID int64, path string) (*sharedfs.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if err := f.fail("NodeByPath"); err != nil {
		return nil, err
	}
	fl, ok := f.folders[folderID]
	if !ok {
		return nil, nil
	}
	id, ok := fl.nodes[path]
	if !ok {
		return nil, nil
	}
	return &sharedfs.Node{ID: id, Path: path}, nil
}

func (f *FakeStorage) CreateNode(ctx context.Context, folderID int64, path string) (sharedfs.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if err := f.fail("CreateNode"); err != nil {
		return sharedfs.Node{}, err
	}
	fl, ok := f.folders[folderID]
	if !ok {
		return sharedfs.Node{}, sharedfs.ErrUnavailable
	}
	if id, ok := fl.nodes[path]; ok {
		return sharedfs.Node{ID: id, Path: path}, nil
	}
	id := f.newNodeID()
	fl.nodes[path] = id
	return sharedfs.Node{ID: id, Path: path}, nil
}

func (f *FakeStorage) Usage(ctx context.Context, folderID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if err := f.fail("Usage"); err != nil {
		return 0, err
	}
	fl, ok := f.folders[folderID]
	if !ok {
		return 0, sharedfs.ErrUnavailable
	}
	return fl.size, nil
}

func (f *FakeStorage) Quota(ctx context.Context, folderID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if err := f.fail("Quota"); err != nil {
		return 0, err
	}
	fl, ok := f.folders[folderID]
	if !ok {
		return 0, sharedfs.ErrUnavailable
	}
	return fl.quota, nil
}

var _ sharedfs.Gateway = (*FakeStorage)(nil)

// FakeRoster is an in-memory reconcile.RosterSource keyed by user id.
type FakeRoster struct {
	mu          sync.Mutex
	FailWith    error
	Memberships map[string][]models.Membership
}

// Set replaces the user's memberships.
func (f *FakeRoster) Set(userID string, ms ...models.Membership) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Memberships == nil {
		f.Memberships = make(map[string][]models.Membership)
	}
	f.Memberships[userID] = ms
}

func (f *FakeRoster) UserMemberships(ctx context.Context, userID string) ([]models.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	return f.Memberships[userID], nil
}
