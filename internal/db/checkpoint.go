package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/babylonlabs-io/staking-ledger/internal/db/model"
)

func (db *Database) SaveCheckpoint(ctx context.Context, doc *model.CheckpointDocument) error {
	filter := bson.M{"_id": doc.ID}
	opts := options.Replace().SetUpsert(true)

	_, err := db.collection(model.CheckpointCollection).ReplaceOne(ctx, filter, doc, opts)
	return err
}

func (db *Database) GetLatestCheckpoint(ctx context.Context) (*model.CheckpointDocument, error) {
	filter := bson.M{"_id": model.LatestCheckpointID}

	var doc model.CheckpointDocument
	err := db.collection(model.CheckpointCollection).FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     model.LatestCheckpointID,
				Message: "ledger checkpoint not found",
			}
		}
		return nil, err
	}

	return &doc, nil
}
