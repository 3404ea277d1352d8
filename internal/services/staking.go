package services

import (
	"context"
	"net/http"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/babylonlabs-io/staking-ledger/internal/ledger"
	"github.com/babylonlabs-io/staking-ledger/internal/observability/metrics"
	"github.com/babylonlabs-io/staking-ledger/internal/types"
	"github.com/babylonlabs-io/staking-ledger/pkg"
)

// Fund adds amount to the reward pool. Only the configured funder may call it.
func (s *Service) Fund(ctx context.Context, caller string, amount sdkmath.Int) (*ledger.Receipt, *types.Error) {
	if err := s.validateAccount(caller); err != nil {
		return nil, err
	}
	if caller != s.ledger.Funder() {
		return nil, types.NewError(http.StatusForbidden, types.Forbidden, types.ErrUnauthorized)
	}

	return s.runOperation(ctx, types.EventFunded, func() (*ledger.Receipt, error) {
		return s.ledger.Fund(ctx, amount)
	})
}

func (s *Service) Stake(ctx context.Context, caller string, amount sdkmath.Int) (*ledger.Receipt, *types.Error) {
	if err := s.validateStaker(caller); err != nil {
		return nil, err
	}

	return s.runOperation(ctx, types.EventStaked, func() (*ledger.Receipt, error) {
		return s.ledger.Stake(ctx, caller, amount)
	})
}

func (s *Service) Unstake(ctx context.Context, caller string, amount sdkmath.Int) (*ledger.Receipt, *types.Error) {
	if err := s.validateStaker(caller); err != nil {
		return nil, err
	}

	return s.runOperation(ctx, types.EventUnstaked, func() (*ledger.Receipt, error) {
		return s.ledger.Unstake(ctx, caller, amount)
	})
}

func (s *Service) CompoundRewards(ctx context.Context, caller string) (*ledger.Receipt, *types.Error) {
	if err := s.validateStaker(caller); err != nil {
		return nil, err
	}

	return s.runOperation(ctx, types.EventRewardsCompounded, func() (*ledger.Receipt, error) {
		return s.ledger.CompoundRewards(ctx, caller)
	})
}

func (s *Service) ClaimReward(ctx context.Context, caller string) (*ledger.Receipt, *types.Error) {
	if err := s.validateStaker(caller); err != nil {
		return nil, err
	}

	return s.runOperation(ctx, types.EventRewardClaimed, func() (*ledger.Receipt, error) {
		return s.ledger.ClaimReward(ctx, caller)
	})
}

// runOperation executes a ledger mutation, records its outcome and emits the
// ledger event once it has committed.
func (s *Service) runOperation(
	ctx context.Context, eventType types.EventType, op func() (*ledger.Receipt, error),
) (*ledger.Receipt, *types.Error) {
	startTime := time.Now()
	receipt, err := op()
	metrics.RecordLedgerOperation(time.Since(startTime), eventType.String(), err != nil)

	if err != nil {
		log.Ctx(ctx).Debug().
			Err(err).
			Stringer("operation", eventType).
			Msg("ledger operation rejected")
		return nil, types.FromLedgerError(err)
	}

	s.emitEvent(ctx, newLedgerEvent(eventType, receipt))
	return receipt, nil
}

func (s *Service) validateAccount(account string) *types.Error {
	if err := pkg.ValidateAddress(account, s.cfg.Ledger.AddressPrefix); err != nil {
		return types.NewError(http.StatusBadRequest, types.BadRequest, err)
	}
	return nil
}

// validateStaker rejects the pool account, which holds the stakes of others
// and must never own one.
func (s *Service) validateStaker(account string) *types.Error {
	if err := s.validateAccount(account); err != nil {
		return err
	}
	if account == s.token.PoolAccount() {
		return types.NewError(http.StatusBadRequest, types.BadRequest, types.ErrPoolAccount)
	}
	return nil
}
