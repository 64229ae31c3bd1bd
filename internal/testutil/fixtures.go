package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/CorneTubage/assohub/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateAssociation creates a test association with the given name and code.
// Returns the created association with its generated ID.
func (f *Fixtures) CreateAssociation(ctx context.Context, name, code string) models.Association {
	f.t.Helper()

	now := time.Now().UTC()
	asso := models.Association{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Code:      code,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("associations").InsertOne(ctx, asso)
	if err != nil {
		f.t.Fatalf("failed to create test association: %v", err)
	}

	return asso
}

// CreateMembership creates a test membership with the given role.
func (f *Fixtures) CreateMembership(ctx context.Context, userID, code string, role models.Role) models.Membership {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Membership{
		ID:              primitive.NewObjectID(),
		UserID:          userID,
		AssociationCode: code,
		Role:            role,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err := f.db.Collection("association_members").InsertOne(ctx, m)
	if err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}

	return m
}

// CreateDirUser creates a test user in the directory users collection with
// the given password.
func (f *Fixtures) CreateDirUser(ctx context.Context, id, fullName, password string, admin bool) models.DirUser {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash test password: %v", err)
	}

	now := time.Now().UTC()
	u := models.DirUser{
		ID:           id,
		FullName:     fullName,
		Email:        id + "@test.example",
		PasswordHash: string(hash),
		Admin:        admin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = f.db.Collection("users").InsertOne(ctx, u)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return u
}
