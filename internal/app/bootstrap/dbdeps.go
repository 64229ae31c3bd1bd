// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/CorneTubage/assohub/internal/app/gateway/sharedfs"
	"github.com/CorneTubage/assohub/internal/app/system/events"
)

// DBDeps holds database and back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Storage is the folder backend gateway. When teamfolders_url is not
	// configured this is sharedfs.Disabled() and the registry runs in
	// directory-only mode.
	Storage sharedfs.Gateway

	// Events publishes registry change events. Nil when kafka_brokers is
	// not configured.
	Events *events.Producer
}
