package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stakelens/stakesync/internal/db/model"
)

func (db *Database) GetSnapshot(
	ctx context.Context, address string,
) (*model.SnapshotDocument, error) {
	filter := bson.M{"_id": address}

	res := db.client.Database(db.dbName).
		Collection(model.SnapshotCollection).
		FindOne(ctx, filter)

	var doc model.SnapshotDocument
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     address,
				Message: "no snapshot found for address",
			}
		}
		return nil, err
	}
	return &doc, nil
}

func (db *Database) UpsertSnapshot(
	ctx context.Context, doc *model.SnapshotDocument,
) error {
	filter := bson.M{"_id": doc.Address}
	// A snapshot already persisted with a later fetched_at must not be
	// replaced by an older one; a slow cycle can reach this point after
	// losing the token race in another process.
	filter["fetched_at"] = bson.M{"$lte": doc.FetchedAt}

	opts := options.Replace().SetUpsert(true)
	_, err := db.client.Database(db.dbName).
		Collection(model.SnapshotCollection).
		ReplaceOne(ctx, filter, doc, opts)

	// The upsert races with itself when the filter excludes the existing
	// document; a duplicate key here means a newer snapshot won.
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return &DuplicateKeyError{
			Key:     doc.Address,
			Message: "a newer snapshot is already persisted",
		}
	}
	return err
}

func (db *Database) DeleteSnapshot(ctx context.Context, address string) error {
	filter := bson.M{"_id": address}
	_, err := db.client.Database(db.dbName).
		Collection(model.SnapshotCollection).
		DeleteOne(ctx, filter)
	return err
}
