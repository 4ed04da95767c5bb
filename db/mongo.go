package db

import (
	"context"
	"fmt"
	"time"

	"barylstyle/contacts-api/config"
	"barylstyle/contacts-api/internal/repository"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"
)

// NewMongo connects to the MongoDB deployment in cfg.DSN, checks that it is
// reachable and creates the required indexes
func NewMongo(ctx context.Context, cfg *config.DatabaseConfig) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.DSN))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create mongo client, %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to reach mongo, %w", err)
	}

	database := client.Database(cfg.Name)
	if err := repository.EnsureMongoIndexes(ctx, database); err != nil {
		client.Disconnect(context.Background())
		return nil, nil, err
	}

	zap.L().Info("Connected to MongoDB", zap.String("database", cfg.Name))
	return client, database, nil
}
