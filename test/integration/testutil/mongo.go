//go:build integration

package testutil

import (
	"context"
	"testing"
	"time"

	appointmentsrepo "medibook/internal/appointments/repository"
	doctorsrepo "medibook/internal/doctors/repository"
	usersrepo "medibook/internal/users/repository"
	"medibook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultMongoURI     = "mongodb://localhost:27017"
	DefaultDatabaseName = "medibook_test"
	ConnectionTimeout   = 10 * time.Second
)

type MongoHelper struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoHelper(t *testing.T, mongoURI, dbName string) *MongoHelper {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	return &MongoHelper{Client: client, Database: client.Database(dbName)}
}

func (m *MongoHelper) Close(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}

func (m *MongoHelper) CleanAll(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		usersrepo.CollectionName,
		doctorsrepo.CollectionName,
		appointmentsrepo.CollectionName,
		appointmentsrepo.SlotLockCollectionName,
	} {
		m.CleanCollection(t, name)
	}
}

func (m *MongoHelper) CleanCollection(t *testing.T, collectionName string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := m.Database.Collection(collectionName).DeleteMany(ctx, bson.M{}); err != nil {
		t.Fatalf("failed to clean collection %s: %v", collectionName, err)
	}
}

// SeedUser inserts an active account and returns its ID. Accounts are owned
// by another system, so tests write them directly.
func (m *MongoHelper) SeedUser(t *testing.T, name, email string, role model.Role) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id := primitive.NewObjectID()
	_, err := m.Database.Collection(usersrepo.CollectionName).InsertOne(ctx, bson.M{
		"_id":        id,
		"full_name":  name,
		"email":      email,
		"mobile":     "01712345678",
		"role":       string(role),
		"is_active":  true,
		"created_at": time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}
	return id.Hex()
}

func (m *MongoHelper) CountActive(t *testing.T, doctorID, date, slot string) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := m.Database.Collection(appointmentsrepo.CollectionName).CountDocuments(ctx, bson.M{
		"doctor_id":        doctorID,
		"appointment_date": date,
		"appointment_time": slot,
		"active":           true,
	})
	if err != nil {
		t.Fatalf("failed to count appointments: %v", err)
	}
	return count
}
