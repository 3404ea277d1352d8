package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/babylonlabs-io/staking-ledger/internal/db/model"
	"github.com/babylonlabs-io/staking-ledger/internal/types"
)

func TestBootstrap(t *testing.T) {
	ctx := t.Context()

	t.Run("genesis", func(t *testing.T) {
		env := newTestEnv(t)

		for _, allocation := range testConfig().Ledger.Genesis {
			expected, err := types.ParseAmount(allocation.Amount)
			require.NoError(t, err)

			balance, typedErr := env.service.GetTokenBalance(ctx, allocation.Account)
			require.Nil(t, typedErr)
			assert.True(t, expected.Equal(balance), allocation.Account)
		}
		assert.True(t, env.service.GetTotalStaked(ctx).IsZero())
	})
	t.Run("restore checkpoint", func(t *testing.T) {
		source := newTestEnv(t)
		require.Nil(t, source.service.Approve(ctx, alice, tokens(600)))
		_, typedErr := source.service.Stake(ctx, alice, tokens(400))
		require.Nil(t, typedErr)
		source.clock.Advance(week)

		var saved *model.CheckpointDocument
		source.db.On("SaveCheckpoint", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				saved = args.Get(1).(*model.CheckpointDocument)
			}).
			Return(nil).Once()
		require.NoError(t, source.service.saveCheckpoint(ctx))
		require.NotNil(t, saved)

		target := newBareTestEnv(t)
		target.clock.Set(source.clock.Now())
		target.db.On("GetLatestCheckpoint", mock.Anything).Return(saved, nil).Once()
		require.NoError(t, target.service.Bootstrap(ctx))

		assert.True(t, tokens(400).Equal(target.service.GetTotalStaked(ctx)))
		assert.True(t, target.token.Allowance(alice, poolAccount).Equal(tokens(200)))
		assert.True(t, target.token.TotalSupply().Equal(source.token.TotalSupply()))
		assert.True(t,
			source.service.ledger.CalculateCompoundedRewards(alice).Equal(target.service.ledger.CalculateCompoundedRewards(alice)),
		)
		staker, typedErr := target.service.GetStaker(ctx, alice)
		require.Nil(t, typedErr)
		assert.Equal(t, int64(1_700_000_000), staker.FirstStake)

		// genesis is not minted on top of a restored state
		balance, typedErr := target.service.GetTokenBalance(ctx, bob)
		require.Nil(t, typedErr)
		assert.True(t, tokens(1).QuoRaw(2).Equal(balance))
	})
	t.Run("inconsistent checkpoint", func(t *testing.T) {
		env := newBareTestEnv(t)
		env.db.On("GetLatestCheckpoint", mock.Anything).Return(&model.CheckpointDocument{
			ID:               model.LatestCheckpointID,
			TotalStaked:      tokens(1).String(),
			AvailableRewards: "0",
			RewardShortfall:  "0",
		}, nil).Once()

		err := env.service.Bootstrap(ctx)
		require.ErrorContains(t, err, "inconsistent")
	})
	t.Run("database error", func(t *testing.T) {
		env := newBareTestEnv(t)
		dbErr := errors.New("connection refused")
		env.db.On("GetLatestCheckpoint", mock.Anything).Return(nil, dbErr)

		timeoutCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		defer cancel()
		err := env.service.Bootstrap(timeoutCtx)
		require.Error(t, err)
	})
}
