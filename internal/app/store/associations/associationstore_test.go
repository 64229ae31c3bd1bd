package associationstore_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	associationstore "github.com/CorneTubage/assohub/internal/app/store/associations"
	"github.com/CorneTubage/assohub/internal/domain/models"
	"github.com/CorneTubage/assohub/internal/testutil"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := associationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	asso := models.Association{
		Name: "Ciné-Club",
		Code: "cine-club",
	}

	created, err := store.Create(ctx, asso)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.NameCI != "cine-club" {
		t.Errorf("NameCI: got %q, want %q", created.NameCI, "cine-club")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if created.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be set")
	}
}

func TestStore_Create_DuplicateCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := associationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	asso := models.Association{Name: "Chess Club", Code: "chess"}
	if _, err := store.Create(ctx, asso); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// A different display name cannot reuse the code.
	asso.Name = "Chess Society"
	if _, err := store.Create(ctx, asso); err != associationstore.ErrDuplicateCode {
		t.Errorf("expected ErrDuplicateCode, got %v", err)
	}
}

func TestStore_GetByCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := associationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Association{Name: "Robotics", Code: "robotics"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := store.GetByCode(ctx, "robotics")
	if err != nil {
		t.Fatalf("GetByCode failed: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID: got %v, want %v", found.ID, created.ID)
	}
	if found.Name != "Robotics" {
		t.Errorf("Name: got %q, want %q", found.Name, "Robotics")
	}

	if _, err := store.GetByCode(ctx, "missing"); err != associationstore.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Rename(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := associationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Association{Name: "Theatre", Code: "theatre"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Rename(ctx, created.ID, "Théâtre Group"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	found, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if found.Name != "Théâtre Group" {
		t.Errorf("Name: got %q, want %q", found.Name, "Théâtre Group")
	}
	if found.NameCI != "theatre group" {
		t.Errorf("NameCI: got %q, want %q", found.NameCI, "theatre group")
	}
	// The code never moves with the name.
	if found.Code != "theatre" {
		t.Errorf("Code: got %q, want %q", found.Code, "theatre")
	}

	if err := store.Rename(ctx, primitive.NewObjectID(), "Ghost"); err != associationstore.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := associationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Association{Name: "Chess", Code: "chess"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	n, err := store.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted count: got %d, want 1", n)
	}

	n, err = store.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if n != 0 {
		t.Errorf("deleted count on missing doc: got %d, want 0", n)
	}
}

func TestStore_AllAndNames(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := associationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, a := range []models.Association{
		{Name: "Zebra Watchers", Code: "zebra"},
		{Name: "Astronomy", Code: "astro"},
		{Name: "Éco-club", Code: "eco"},
	} {
		if _, err := store.Create(ctx, a); err != nil {
			t.Fatalf("Create %q failed: %v", a.Code, err)
		}
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("All returned %d associations, want 3", len(all))
	}
	// Sorted by folded name: astronomy, eco-club, zebra watchers.
	if all[0].Code != "astro" || all[1].Code != "eco" || all[2].Code != "zebra" {
		t.Errorf("unexpected sort order: %s, %s, %s", all[0].Code, all[1].Code, all[2].Code)
	}

	names, err := store.Names(ctx)
	if err != nil {
		t.Fatalf("Names failed: %v", err)
	}
	want := []string{"Astronomy", "Éco-club", "Zebra Watchers"}
	if len(names) != len(want) {
		t.Fatalf("Names returned %d entries, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d]: got %q, want %q", i, names[i], want[i])
		}
	}
}

func TestStore_ByCodes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := associationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, a := range []models.Association{
		{Name: "Chess", Code: "chess"},
		{Name: "Robotics", Code: "robotics"},
	} {
		if _, err := store.Create(ctx, a); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	got, err := store.ByCodes(ctx, []string{"chess", "missing"})
	if err != nil {
		t.Fatalf("ByCodes failed: %v", err)
	}
	if len(got) != 1 || got[0].Code != "chess" {
		t.Errorf("ByCodes: got %v", got)
	}

	got, err = store.ByCodes(ctx, nil)
	if err != nil {
		t.Fatalf("ByCodes(nil) failed: %v", err)
	}
	if got != nil {
		t.Errorf("ByCodes(nil): got %v, want nil", got)
	}
}
