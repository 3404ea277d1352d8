package services

import (
	"context"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"github.com/babylonlabs-io/staking-ledger/internal/clients/tokenclient"
	"github.com/babylonlabs-io/staking-ledger/internal/db/model"
	"github.com/babylonlabs-io/staking-ledger/internal/observability/metrics"
	"github.com/babylonlabs-io/staking-ledger/internal/utils/poller"
)

const (
	checkpointRetryAttempts = 3
	checkpointRetryInterval = time.Second
	finalCheckpointTimeout  = 10 * time.Second
)

// StartPollers runs the checkpoint and stats pollers until ctx is cancelled,
// then writes a final checkpoint.
func (s *Service) StartPollers(ctx context.Context) {
	checkpointPoller := poller.NewPoller(
		"checkpoint",
		s.cfg.Poller.CheckpointInterval,
		metrics.RecordPollerDuration("checkpoint", s.saveCheckpoint),
	)
	statsPoller := poller.NewPoller(
		"stats",
		s.cfg.Poller.StatsInterval,
		metrics.RecordPollerDuration("stats", s.updatePoolStats),
	)

	var wg conc.WaitGroup
	wg.Go(func() { checkpointPoller.Start(ctx) })
	wg.Go(func() { statsPoller.Start(ctx) })
	wg.Wait()

	finalCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalCheckpointTimeout)
	defer cancel()
	if err := s.saveCheckpoint(finalCtx); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to save final checkpoint")
	}
}

// saveCheckpoint persists the ledger together with the token state it was
// consistent with.
func (s *Service) saveCheckpoint(ctx context.Context) error {
	var tokenState tokenclient.TokenState
	state := s.ledger.SnapshotWith(func() {
		tokenState = s.token.Snapshot()
	})
	doc := model.FromLedgerState(state, tokenState, time.Now())

	err := retry.Do(
		func() error {
			return s.db.SaveCheckpoint(ctx, doc)
		},
		retry.Context(ctx),
		retry.Attempts(checkpointRetryAttempts),
		retry.Delay(checkpointRetryInterval),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save ledger checkpoint: %w", err)
	}

	log.Ctx(ctx).Debug().
		Int("stakers", len(doc.StakeRecords)).
		Int("token_holders", len(doc.TokenBalances)).
		Msg("saved ledger checkpoint")

	return nil
}

// updatePoolStats exports the pool gauges and verifies the accounting
// identities on a consistent snapshot.
func (s *Service) updatePoolStats(ctx context.Context) error {
	var (
		holdings sdkmath.Int
		err      error
	)
	state := s.ledger.SnapshotWith(func() {
		holdings, err = s.token.BalanceOf(ctx, s.token.PoolAccount())
	})
	if err != nil {
		return fmt.Errorf("failed to get contract balance: %w", err)
	}

	metrics.RecordPoolState(
		state.Pool.TotalStaked,
		state.Pool.AvailableRewards,
		state.Pool.RewardShortfall,
		holdings,
	)

	if err := checkSolvency(state.Pool.TotalStaked, state.Pool.AvailableRewards, state.Pool.RewardShortfall, holdings); err != nil {
		metrics.IncInvariantViolations()
		log.Ctx(ctx).Error().Err(err).Msg("ledger accounting is inconsistent")
		return err
	}
	if err := state.CheckInvariants(); err != nil {
		metrics.IncInvariantViolations()
		log.Ctx(ctx).Error().Err(err).Msg("ledger accounting is inconsistent")
		return err
	}

	if state.Pool.RewardShortfall.IsPositive() {
		log.Ctx(ctx).Warn().
			Str("reward_shortfall", state.Pool.RewardShortfall.String()).
			Str("available_rewards", state.Pool.AvailableRewards.String()).
			Msg("staked principal is not fully backed, the reward pool needs funding")
	}

	return nil
}

// checkSolvency verifies that the pool holds every staked and funded token
// except the rewards folded without backing.
func checkSolvency(totalStaked, availableRewards, shortfall, holdings sdkmath.Int) error {
	owed := totalStaked.Add(availableRewards)
	backed := holdings.Add(shortfall)
	if !owed.Equal(backed) {
		return fmt.Errorf(
			"pool holdings %s plus shortfall %s differ from staked %s plus available rewards %s",
			holdings, shortfall, totalStaked, availableRewards,
		)
	}
	return nil
}
