package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/babylonlabs-io/staking-ledger/internal/db/model"
)

func (db *Database) SaveLedgerEvent(ctx context.Context, event *model.LedgerEventDocument) error {
	_, err := db.collection(model.LedgerEventCollection).InsertOne(ctx, event)
	if err != nil {
		var writeErr mongo.WriteException
		if errors.As(err, &writeErr) {
			for _, e := range writeErr.WriteErrors {
				if mongo.IsDuplicateKeyError(e) {
					return &DuplicateKeyError{
						Key:     event.ID,
						Message: "ledger event already exists",
					}
				}
			}
		}
		return err
	}
	return nil
}

// FindLedgerEventsByAccount returns the newest events first. Event ids are
// version 7 uuids issued in commit order, so they break timestamp ties.
func (db *Database) FindLedgerEventsByAccount(
	ctx context.Context, account string, limit int64,
) ([]*model.LedgerEventDocument, error) {
	filter := bson.M{"account": account}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cursor, err := db.collection(model.LedgerEventCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	events := []*model.LedgerEventDocument{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
