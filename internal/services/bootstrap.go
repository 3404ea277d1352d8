package services

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"

	"github.com/babylonlabs-io/staking-ledger/internal/db"
	"github.com/babylonlabs-io/staking-ledger/internal/db/model"
	"github.com/babylonlabs-io/staking-ledger/internal/types"
)

const (
	bootstrapRetryAttempts = 5
	bootstrapRetryInterval = 2 * time.Second
)

// Bootstrap loads the ledger and token state before the service takes any
// call: from the last checkpoint if one exists, otherwise by minting the
// configured genesis allocations.
func (s *Service) Bootstrap(ctx context.Context) error {
	doc, err := retry.DoWithData(
		func() (*model.CheckpointDocument, error) {
			return s.db.GetLatestCheckpoint(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(bootstrapRetryAttempts),
		retry.Delay(bootstrapRetryInterval),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !db.IsNotFoundError(err)
		}),
	)
	if err != nil {
		if db.IsNotFoundError(err) {
			return s.mintGenesis(ctx)
		}
		return fmt.Errorf("failed to load ledger checkpoint: %w", err)
	}

	state, tokenState, err := doc.ToLedgerState()
	if err != nil {
		return fmt.Errorf("failed to decode ledger checkpoint: %w", err)
	}
	if err := s.ledger.Restore(state); err != nil {
		return fmt.Errorf("ledger checkpoint is inconsistent: %w", err)
	}
	s.token.Restore(tokenState)

	log.Ctx(ctx).Info().
		Int64("created_at", doc.CreatedAt).
		Int("stakers", len(state.Records)).
		Str("total_staked", state.Pool.TotalStaked.String()).
		Str("available_rewards", state.Pool.AvailableRewards.String()).
		Msg("restored ledger from checkpoint")

	return nil
}

func (s *Service) mintGenesis(ctx context.Context) error {
	for _, allocation := range s.cfg.Ledger.Genesis {
		amount, err := types.ParseAmount(allocation.Amount)
		if err != nil {
			return fmt.Errorf("invalid genesis amount for %s: %w", allocation.Account, err)
		}
		if err := s.token.Mint(allocation.Account, amount); err != nil {
			return fmt.Errorf("failed to mint genesis allocation for %s: %w", allocation.Account, err)
		}
	}

	log.Ctx(ctx).Info().
		Int("allocations", len(s.cfg.Ledger.Genesis)).
		Str("total_supply", s.token.TotalSupply().String()).
		Msg("no ledger checkpoint found, minted genesis allocations")

	return nil
}
