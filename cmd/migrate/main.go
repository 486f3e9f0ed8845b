package main

import (
	"context"
	"os"
	"time"

	mongoMigration "medibook/internal/migrations/mongo"
	"medibook/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	cfg := config.Load(JobName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Mongo migration job")
	err := migrateMongo(cfg)
	cfg.GracefulShutdown()

	if err != nil {
		cfg.Log.Error("Migration failed", "error", err)
		os.Exit(1)
	}
	cfg.Log.Info("Migration completed successfully")
}

func migrateMongo(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()
	return mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log)
}
