// internal/app/gateway/sharedfs/rest.go
package sharedfs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Config describes the folder backend deployment.
type Config struct {
	BaseURL    string
	Username   string
	Password   string
	APIVersion int           // 1 or 2; which backend generation we talk to
	Timeout    time.Duration // per-request; the engine adds its own context deadlines
}

// NewClient builds the Gateway for the configured backend generation. The
// choice is made exactly once, here; call sites never probe the API surface.
func NewClient(cfg Config) (Gateway, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("sharedfs: base URL is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if cfg.Username != "" {
		rc.SetBasicAuth(cfg.Username, cfg.Password)
	}

	v1 := &ClientV1{rc: rc}
	switch cfg.APIVersion {
	case 0, 1:
		return v1, nil
	case 2:
		return &ClientV2{ClientV1: v1}, nil
	default:
		return nil, fmt.Errorf("sharedfs: unsupported backend API version %d", cfg.APIVersion)
	}
}

// ClientV1 talks to the first-generation teamfolders API.
type ClientV1 struct {
	rc *resty.Client
}

var _ Gateway = (*ClientV1)(nil)

func (c *ClientV1) Folders(ctx context.Context) ([]Folder, error) {
	var out struct {
		Folders []Folder `json:"folders"`
	}
	resp, err := c.rc.R().SetContext(ctx).SetResult(&out).Get("/folders")
	if err := classify("list folders", resp, err); err != nil {
		return nil, err
	}
	return out.Folders, nil
}

func (c *ClientV1) CreateFolder(ctx context.Context, mountPoint string) (int64, error) {
	var out struct {
		ID int64 `json:"id"`
	}
	resp, err := c.rc.R().SetContext(ctx).
		SetBody(map[string]string{"mount_point": mountPoint}).
		SetResult(&out).
		Post("/folders")
	if err := classify("create folder", resp, err); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *ClientV1) RenameFolder(ctx context.Context, folderID int64, mountPoint string) error {
	resp, err := c.rc.R().SetContext(ctx).
		SetBody(map[string]string{"mount_point": mountPoint}).
		Post(fmt.Sprintf("/folders/%d/mountpoint", folderID))
	return classify("rename folder", resp, err)
}

func (c *ClientV1) DeleteFolder(ctx context.Context, folderID int64) error {
	resp, err := c.rc.R().SetContext(ctx).Delete(fmt.Sprintf("/folders/%d", folderID))
	return classify("delete folder", resp, err)
}

func (c *ClientV1) SetQuota(ctx context.Context, folderID, bytes int64) error {
	resp, err := c.rc.R().SetContext(ctx).
		SetBody(map[string]int64{"quota": bytes}).
		Post(fmt.Sprintf("/folders/%d/quota", folderID))
	return classify("set quota", resp, err)
}

func (c *ClientV1) AddApplicableGroup(ctx context.Context, folderID int64, gid string) error {
	resp, err := c.rc.R().SetContext(ctx).
		SetBody(map[string]string{"group": gid}).
		Post(fmt.Sprintf("/folders/%d/groups", folderID))
	return classify("add applicable group", resp, err)
}

func (c *ClientV1) SetGroupPermissions(ctx context.Context, folderID int64, gid string, p Permission) error {
	resp, err := c.rc.R().SetContext(ctx).
		SetBody(map[string]int{"permissions": int(p)}).
		Post(fmt.Sprintf("/folders/%d/groups/%s", folderID, gid))
	return classify("set group permissions", resp, err)
}

func (c *ClientV1) EnableACL(ctx context.Context, folderID int64) error {
	resp, err := c.rc.R().SetContext(ctx).
		SetBody(map[string]int{"acl": 1}).
		Post(fmt.Sprintf("/folders/%d/acl", folderID))
	return classify("enable acl", resp, err)
}

func (c *ClientV1) MappingsForUser(ctx context.Context, folderID int64, userID string) ([]Mapping, error) {
	var out struct {
		Mappings []Mapping `json:"mappings"`
	}
	resp, err := c.rc.R().SetContext(ctx).
		SetQueryParam("user", userID).
		SetResult(&out).
		Get(fmt.Sprintf("/folders/%d/mappings", folderID))
	if err := classify("list mappings", resp, err); err != nil {
		return nil, err
	}
	return out.Mappings, nil
}

func (c *ClientV1) SetRule(ctx context.Context, m Mapping, nodeID int64, p Permission) error {
	// The rule store is additive and overwrite-fragile: writing a new mask
	// without resetting first merges with whatever was there. Clear the
	// (mapping, node) pair, then write the desired rule.
	reset := map[string]interface{}{
		"mapping_type": m.Type,
		"mapping_id":   m.ID,
		"mask":         int(PermAll),
		"permissions":  int(PermNone),
	}
	resp, err := c.rc.R().SetContext(ctx).
		SetBody(reset).
		Delete(fmt.Sprintf("/nodes/%d/acl", nodeID))
	if err := classify("clear acl rule", resp, err); err != nil {
		return err
	}

	rule := map[string]interface{}{
		"mapping_type": m.Type,
		"mapping_id":   m.ID,
		"mask":         int(PermAll),
		"permissions":  int(p),
	}
	resp, err = c.rc.R().SetContext(ctx).
		SetBody(rule).
		Post(fmt.Sprintf("/nodes/%d/acl", nodeID))
	return classify("set acl rule", resp, err)
}

func (c *ClientV1) NodeByPath(ctx context.Context, folderID int64, path string) (*Node, error) {
	var out Node
	resp, err := c.rc.R().SetContext(ctx).
		SetQueryParam("path", path).
		SetResult(&out).
		Get(fmt.Sprintf("/folders/%d/node", folderID))
	if resp != nil && resp.StatusCode() == 404 {
		return nil, nil
	}
	if err := classify("resolve node", resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *ClientV1) CreateNode(ctx context.Context, folderID int64, path string) (Node, error) {
	var out Node
	resp, err := c.rc.R().SetContext(ctx).
		SetBody(map[string]string{"path": path}).
		SetResult(&out).
		Post(fmt.Sprintf("/folders/%d/nodes", folderID))
	if err := classify("create node", resp, err); err != nil {
		return Node{}, err
	}
	return out, nil
}

func (c *ClientV1) Usage(ctx context.Context, folderID int64) (int64, error) {
	var out struct {
		Size int64 `json:"size"`
	}
	resp, err := c.rc.R().SetContext(ctx).SetResult(&out).
		Get(fmt.Sprintf("/folders/%d/usage", folderID))
	if err := classify("folder usage", resp, err); err != nil {
		return 0, err
	}
	return out.Size, nil
}

func (c *ClientV1) Quota(ctx context.Context, folderID int64) (int64, error) {
	var out struct {
		Quota int64 `json:"quota"`
	}
	resp, err := c.rc.R().SetContext(ctx).SetResult(&out).
		Get(fmt.Sprintf("/folders/%d/quota", folderID))
	if err := classify("folder quota", resp, err); err != nil {
		return 0, err
	}
	return out.Quota, nil
}

// classify folds a resty error or a non-2xx response into ErrUnavailable so
// the engine can treat every backend failure uniformly.
func classify(op string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	if resp != nil && resp.IsError() {
		return fmt.Errorf("%s: %w: backend returned %d", op, ErrUnavailable, resp.StatusCode())
	}
	return nil
}
