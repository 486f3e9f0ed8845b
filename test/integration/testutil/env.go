//go:build integration

package testutil

import (
	"os"
	"testing"
	"time"

	"medibook/pkg/client"
)

const DefaultHealthCheckTimeout = 30 * time.Second

type TestEnv struct {
	MongoURI        string
	DatabaseName    string
	AppointmentsURL string
	DoctorsURL      string
}

func NewTestEnv() *TestEnv {
	return &TestEnv{
		MongoURI:        getEnv("TEST_MONGO_URI", DefaultMongoURI),
		DatabaseName:    getEnv("TEST_DB_NAME", DefaultDatabaseName),
		AppointmentsURL: getEnv("TEST_APPOINTMENTS_URL", "http://localhost:8080"),
		DoctorsURL:      getEnv("TEST_DOCTORS_URL", "http://localhost:8081"),
	}
}

// Setup empties the test database and waits for both services. Collections
// are emptied, not dropped, so migrated indexes survive.
func (e *TestEnv) Setup(t *testing.T) (*MongoHelper, *client.AppointmentClient, *client.DoctorClient) {
	t.Helper()

	mongo := NewMongoHelper(t, e.MongoURI, e.DatabaseName)
	mongo.CleanAll(t)

	for _, url := range []string{e.AppointmentsURL, e.DoctorsURL} {
		if err := client.NewHttpClient(url).WaitForHealthy(DefaultHealthCheckTimeout); err != nil {
			t.Fatalf("service at %s not healthy: %v", url, err)
		}
	}

	return mongo, client.NewAppointmentClient(e.AppointmentsURL), client.NewDoctorClient(e.DoctorsURL)
}

func (e *TestEnv) Cleanup(t *testing.T, mongo *MongoHelper) {
	t.Helper()

	if mongo != nil {
		mongo.CleanAll(t)
		mongo.Close(t)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
