package health_test

import (
	"errors"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/CorneTubage/assohub/internal/app/features/health"
	"github.com/CorneTubage/assohub/internal/testutil"
)

func TestServe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fs := &testutil.FakeStorage{}
	h := health.NewHandler(db.Client(), fs, zap.NewNop())

	req := testutil.NewRequest("GET", "/health", nil)
	rec := testutil.NewRecorder()

	h.Serve(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"status":"ok"`)
	rec.AssertContains(t, `"database":"connected"`)
	rec.AssertContains(t, `"storage":"reachable"`)
}

func TestServe_StorageDownIsInformational(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fs := &testutil.FakeStorage{FailWith: errors.New("connection refused")}
	h := health.NewHandler(db.Client(), fs, zap.NewNop())

	req := testutil.NewRequest("GET", "/health", nil)
	rec := testutil.NewRecorder()

	h.Serve(rec, req)

	// A folder-backend outage does not flip the overall status.
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"status":"ok"`)
	rec.AssertContains(t, `"storage":"unreachable"`)
}
