//go:build integration

package db_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babylonlabs-io/staking-ledger/internal/db"
	"github.com/babylonlabs-io/staking-ledger/internal/db/model"
	"github.com/babylonlabs-io/staking-ledger/internal/types"
	"github.com/babylonlabs-io/staking-ledger/testutil"
)

func TestLedgerEvents(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	account := testutil.RandomAddress(t, "bbn")

	t.Run("duplicate", func(t *testing.T) {
		event := randomEvent(account, 1_700_000_000)
		require.NoError(t, testDB.SaveLedgerEvent(ctx, event))

		err := testDB.SaveLedgerEvent(ctx, event)
		require.Error(t, err)
		assert.True(t, db.IsDuplicateKeyError(err))
	})
	t.Run("find by account", func(t *testing.T) {
		resetDatabase(t)

		for i := range 5 {
			require.NoError(t, testDB.SaveLedgerEvent(ctx, randomEvent(account, 1_700_000_000+int64(i))))
		}
		other := testutil.RandomAddress(t, "bbn")
		require.NoError(t, testDB.SaveLedgerEvent(ctx, randomEvent(other, 1_700_000_000)))

		events, err := testDB.FindLedgerEventsByAccount(ctx, account, 3)
		require.NoError(t, err)
		require.Len(t, events, 3)
		for i, event := range events {
			assert.Equal(t, account, event.Account)
			// newest first
			assert.Equal(t, int64(1_700_000_004-i), event.Timestamp)
		}

		events, err = testDB.FindLedgerEventsByAccount(ctx, testutil.RandomAddress(t, "bbn"), 3)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
	t.Run("same second in commit order", func(t *testing.T) {
		resetDatabase(t)

		var ids []string
		for range 5 {
			event := randomEvent(account, 1_700_000_000)
			ids = append(ids, event.ID)
			require.NoError(t, testDB.SaveLedgerEvent(ctx, event))
		}

		events, err := testDB.FindLedgerEventsByAccount(ctx, account, 5)
		require.NoError(t, err)
		require.Len(t, events, 5)
		for i, event := range events {
			assert.Equal(t, ids[len(ids)-1-i], event.ID)
		}
	})
}

func randomEvent(account string, timestamp int64) *model.LedgerEventDocument {
	eventTypes := []types.EventType{
		types.EventStaked,
		types.EventUnstaked,
		types.EventRewardsCompounded,
		types.EventRewardClaimed,
	}

	return &model.LedgerEventDocument{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Type:      eventTypes[gofakeit.Number(0, len(eventTypes)-1)],
		Account:   account,
		Amount:    types.TokensToBaseUnits(int64(gofakeit.Number(1, 100))).String(),
		Reward:    "0",
		Principal: types.TokensToBaseUnits(int64(gofakeit.Number(1, 100))).String(),
		Timestamp: timestamp,
	}
}
