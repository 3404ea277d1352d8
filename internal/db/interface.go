package db

import (
	"context"

	"github.com/babylonlabs-io/staking-ledger/internal/db/model"
)

//go:generate mockery --name=DbInterface --output=../../tests/mocks --outpkg=mocks --filename=mock_db_client.go
type DbInterface interface {
	Ping(ctx context.Context) error
	/**
	 * SaveCheckpoint replaces the persisted ledger checkpoint.
	 * @param ctx The context
	 * @param doc The checkpoint document
	 * @return An error if the operation failed
	 */
	SaveCheckpoint(ctx context.Context, doc *model.CheckpointDocument) error
	/**
	 * GetLatestCheckpoint retrieves the persisted ledger checkpoint.
	 * @param ctx The context
	 * @return The checkpoint or a NotFoundError if none was saved yet
	 */
	GetLatestCheckpoint(ctx context.Context) (*model.CheckpointDocument, error)
	/**
	 * SaveLedgerEvent appends a ledger event to the journal.
	 * @param ctx The context
	 * @param event The event document
	 * @return A DuplicateKeyError if the event id exists already
	 */
	SaveLedgerEvent(ctx context.Context, event *model.LedgerEventDocument) error
	/**
	 * FindLedgerEventsByAccount returns the latest events of an account,
	 * newest first.
	 * @param ctx The context
	 * @param account The account address
	 * @param limit The maximum number of events
	 * @return The events or an error
	 */
	FindLedgerEventsByAccount(ctx context.Context, account string, limit int64) ([]*model.LedgerEventDocument, error)
}
