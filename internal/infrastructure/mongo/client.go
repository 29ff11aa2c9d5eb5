package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	drv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// VerificationsCollection holds one document per issued code.
const VerificationsCollection = "email_verifications"

// Connect opens a client and pings the primary.
func Connect(ctx context.Context, uri string) (*drv.Client, error) {
	opts := options.Client().ApplyURI(uri).SetConnectTimeout(10 * time.Second)
	client, err := drv.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	slog.Info("connected to mongo")
	return client, nil
}

// EnsureIndexes creates the unique (email, code) index Create relies on for
// conflict detection. Safe to call on every startup.
func EnsureIndexes(ctx context.Context, db *drv.Database) error {
	_, err := db.Collection(VerificationsCollection).Indexes().CreateMany(ctx, []drv.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}, {Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_code_unique"),
		},
		{
			Keys:    bson.D{{Key: "verification_id", Value: 1}},
			Options: options.Index().SetName("verification_id"),
		},
	})
	if err != nil {
		return fmt.Errorf("create verification indexes: %w", err)
	}
	return nil
}
