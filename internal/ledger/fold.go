package ledger

import (
	"context"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/babylonlabs-io/staking-ledger/internal/rewards"
)

// fold is the auto-compound step run by Stake and Unstake before they touch
// principal. It is computed first and applied only once the operation can no
// longer fail.
type fold struct {
	// reward is credited to principal in full.
	reward sdkmath.Int
	// fromPool is taken out of the reward pool, never more than it holds.
	fromPool sdkmath.Int
	// shortfall is reward - fromPool.
	shortfall sdkmath.Int
}

func computeFold(pool *Pool, record StakeRecord, now int64) fold {
	zero := sdkmath.ZeroInt()
	if !record.Principal.IsPositive() {
		return fold{reward: zero, fromPool: zero, shortfall: zero}
	}

	reward := rewards.CompoundedReward(record.Principal, rewards.Elapsed(record.LastUpdate, now))
	fromPool := sdkmath.MinInt(reward, pool.AvailableRewards)

	return fold{
		reward:    reward,
		fromPool:  fromPool,
		shortfall: reward.Sub(fromPool),
	}
}

// applyFold moves the folded reward into the pool totals. The caller updates
// the account's principal.
func (l *Ledger) applyFold(ctx context.Context, account string, f fold) {
	if f.reward.IsZero() {
		return
	}

	l.pool.TotalStaked = l.pool.TotalStaked.Add(f.reward)
	l.pool.AvailableRewards = l.pool.AvailableRewards.Sub(f.fromPool)

	if f.shortfall.IsPositive() {
		l.pool.RewardShortfall = l.pool.RewardShortfall.Add(f.shortfall)
		log.Ctx(ctx).Warn().
			Str("account", account).
			Str("reward", f.reward.String()).
			Str("shortfall", f.shortfall.String()).
			Msg("folded reward exceeds the reward pool")
	}
}
