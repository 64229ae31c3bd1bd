package logout_test

import (
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/CorneTubage/assohub/internal/app/features/logout"
	"github.com/CorneTubage/assohub/internal/app/system/auth"
	"github.com/CorneTubage/assohub/internal/testutil"
)

func TestServeLogout(t *testing.T) {
	if err := auth.InitSessionStore("", "", false, zap.NewNop()); err != nil {
		t.Fatalf("session store init failed: %v", err)
	}
	h := logout.NewHandler(zap.NewNop())

	req := testutil.NewAuthenticatedRequest("POST", "/logout", nil, testutil.RegularUser("marie"))
	rec := testutil.NewRecorder()

	h.ServeLogout(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"ok":true`)
}

func TestServeLogout_Anonymous(t *testing.T) {
	if err := auth.InitSessionStore("", "", false, zap.NewNop()); err != nil {
		t.Fatalf("session store init failed: %v", err)
	}
	h := logout.NewHandler(zap.NewNop())

	req := testutil.NewRequest("POST", "/logout", nil)
	rec := testutil.NewRecorder()

	h.ServeLogout(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"ok":true`)
}
