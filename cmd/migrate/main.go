package main

import (
	"context"
	"time"

	mongoMigration "clinicportal/internal/migrations/mongo"
	"clinicportal/pkg/client"
	"clinicportal/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	storage := client.NewClient()
	storage.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
	defer func() {
		if err := storage.Close(context.Background()); err != nil {
			cfg.Log.Error("Failed to close Mongo client", "error", err)
		}
	}()

	cfg.Log.Info("Starting Mongo migration job", "database", cfg.MongoDatabaseName)
	if err := mongoMigration.RunMigration(ctx, storage.Mongo.Database(cfg.MongoDatabaseName), cfg.Log); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
	cfg.Log.Info("Migration completed successfully")
}
