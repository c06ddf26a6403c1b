package model

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stakelens/stakesync/internal/config"
)

const setupTimeout = 10 * time.Second

// Setup connects to the database and ensures collections and indexes
// exist before the daemon starts serving.
func Setup(ctx context.Context, cfg *config.DbConfig) error {
	ctx, cancel := context.WithTimeout(ctx, setupTimeout)
	defer cancel()

	credential := options.Credential{
		Username: cfg.Username,
		Password: cfg.Password,
	}
	clientOps := options.Client().ApplyURI(cfg.Address).SetAuth(credential)
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Disconnect(ctx)
	}()

	database := client.Database(cfg.DbName)

	index := mongo.IndexModel{
		Keys: bson.D{{Key: "fetched_at", Value: 1}},
	}
	_, err = database.Collection(SnapshotCollection).Indexes().CreateOne(ctx, index)
	return err
}
