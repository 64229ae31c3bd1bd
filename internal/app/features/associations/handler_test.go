package associations_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/CorneTubage/assohub/internal/app/features/associations"
	"github.com/CorneTubage/assohub/internal/app/reconcile"
	"github.com/CorneTubage/assohub/internal/app/registry"
	associationstore "github.com/CorneTubage/assohub/internal/app/store/associations"
	membershipstore "github.com/CorneTubage/assohub/internal/app/store/memberships"
	"github.com/CorneTubage/assohub/internal/domain/models"
	"github.com/CorneTubage/assohub/internal/testutil"
)

func newTestHandler(t *testing.T) (*associations.Handler, *registry.Service) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	assos := associationstore.New(db)
	members := membershipstore.New(db)
	dir := &testutil.FakeDirectory{}
	fs := &testutil.FakeStorage{}
	engine := reconcile.New(dir, fs, members, zap.NewNop())
	reg := registry.New(assos, members, dir, engine, nil, zap.NewNop())
	return associations.NewHandler(reg, zap.NewNop()), reg
}

func TestServeCreate(t *testing.T) {
	h, _ := newTestHandler(t)

	body := strings.NewReader(`{"name":"Ciné-Club"}`)
	req := testutil.NewAuthenticatedRequest("POST", "/api/1.0/associations/", body, testutil.AdminUser())
	rec := testutil.NewRecorder()

	h.ServeCreate(rec, req)

	rec.AssertStatus(t, http.StatusCreated)

	var asso models.Association
	if err := json.Unmarshal(rec.Body.Bytes(), &asso); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if asso.Code != "cine-club" {
		t.Errorf("code: got %q, want %q", asso.Code, "cine-club")
	}
}

func TestServeCreate_NonAdmin(t *testing.T) {
	h, _ := newTestHandler(t)

	body := strings.NewReader(`{"name":"Chess"}`)
	req := testutil.NewAuthenticatedRequest("POST", "/api/1.0/associations/", body, testutil.RegularUser("alice"))
	rec := testutil.NewRecorder()

	h.ServeCreate(rec, req)

	rec.AssertStatus(t, http.StatusForbidden)
}

func TestServeCreate_InvalidName(t *testing.T) {
	h, _ := newTestHandler(t)

	body := strings.NewReader(`{"name":"Chess; drop"}`)
	req := testutil.NewAuthenticatedRequest("POST", "/api/1.0/associations/", body, testutil.AdminUser())
	rec := testutil.NewRecorder()

	h.ServeCreate(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServeGet(t *testing.T) {
	h, reg := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := reg.CreateAssociation(ctx, registry.Actor{ID: "root", Admin: true}, "Chess", "")
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	req := testutil.NewAuthenticatedRequest("GET", "/api/1.0/associations/"+created.ID.Hex(), nil, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", created.ID.Hex())
	rec := testutil.NewRecorder()

	h.ServeGet(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"code":"chess"`)
}

func TestServeGet_BadID(t *testing.T) {
	h, _ := newTestHandler(t)

	req := testutil.NewAuthenticatedRequest("GET", "/api/1.0/associations/nope", nil, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", "nope")
	rec := testutil.NewRecorder()

	h.ServeGet(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServeList_Scoped(t *testing.T) {
	h, reg := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	root := registry.Actor{ID: "root", Admin: true}
	if _, err := reg.CreateAssociation(ctx, root, "Chess", ""); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if _, err := reg.CreateAssociation(ctx, root, "Robotics", ""); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	// A stranger sees an empty list, not an error.
	req := testutil.NewAuthenticatedRequest("GET", "/api/1.0/associations/", nil, testutil.RegularUser("alice"))
	rec := testutil.NewRecorder()
	h.ServeList(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	var got []models.Association
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("stranger sees %d associations, want 0", len(got))
	}

	// Admins see everything.
	req = testutil.NewAuthenticatedRequest("GET", "/api/1.0/associations/", nil, testutil.AdminUser())
	rec = testutil.NewRecorder()
	h.ServeList(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("admin sees %d associations, want 2", len(got))
	}
}

func TestServeRename(t *testing.T) {
	h, reg := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := reg.CreateAssociation(ctx, registry.Actor{ID: "root", Admin: true}, "Chess", "")
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	body := strings.NewReader(`{"name":"Chess Society"}`)
	req := testutil.NewAuthenticatedRequest("PUT", "/api/1.0/associations/"+created.ID.Hex(), body, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", created.ID.Hex())
	rec := testutil.NewRecorder()

	h.ServeRename(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"name":"Chess Society"`)
	rec.AssertContains(t, `"code":"chess"`)
}

func TestServeDelete(t *testing.T) {
	h, reg := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := reg.CreateAssociation(ctx, registry.Actor{ID: "root", Admin: true}, "Chess", "")
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	req := testutil.NewAuthenticatedRequest("DELETE", "/api/1.0/associations/"+created.ID.Hex(), nil, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", created.ID.Hex())
	rec := testutil.NewRecorder()

	h.ServeDelete(rec, req)

	rec.AssertStatus(t, http.StatusNoContent)

	// Gone now.
	req = testutil.NewAuthenticatedRequest("GET", "/api/1.0/associations/"+created.ID.Hex(), nil, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", created.ID.Hex())
	rec = testutil.NewRecorder()
	h.ServeGet(rec, req)
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestServeStats(t *testing.T) {
	h, reg := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := reg.CreateAssociation(ctx, registry.Actor{ID: "root", Admin: true}, "Chess", "")
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	req := testutil.NewAuthenticatedRequest("GET", "/api/1.0/associations/"+created.ID.Hex()+"/stats", nil, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", created.ID.Hex())
	rec := testutil.NewRecorder()

	h.ServeStats(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var stats reconcile.FolderStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if stats.Quota != reconcile.DefaultQuotaBytes {
		t.Errorf("quota: got %d, want %d", stats.Quota, reconcile.DefaultQuotaBytes)
	}
}
