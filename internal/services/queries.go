package services

import (
	"context"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/babylonlabs-io/staking-ledger/internal/types"
)

type Staker struct {
	Account    string
	Principal  sdkmath.Int
	LastUpdate int64
	FirstStake int64
	Staked     bool
}

type Rewards struct {
	Account string
	// Continuous is what ClaimReward would pay now.
	Continuous sdkmath.Int
	// Compounded is what the next fold would add to principal.
	Compounded    sdkmath.Int
	ElapsedEpochs uint64
}

type PoolOverview struct {
	TotalStaked      sdkmath.Int
	AvailableRewards sdkmath.Int
	RewardShortfall  sdkmath.Int
	ContractBalance  sdkmath.Int
	Funder           string
	PoolAccount      string
}

func (s *Service) GetStaker(ctx context.Context, account string) (*Staker, *types.Error) {
	if err := s.validateAccount(account); err != nil {
		return nil, err
	}

	record, ok := s.ledger.Record(account)
	return &Staker{
		Account:    account,
		Principal:  record.Principal,
		LastUpdate: record.LastUpdate,
		FirstStake: record.FirstStake,
		Staked:     ok && record.Principal.IsPositive(),
	}, nil
}

func (s *Service) GetStakedAmount(ctx context.Context, account string) (sdkmath.Int, *types.Error) {
	if err := s.validateAccount(account); err != nil {
		return sdkmath.Int{}, err
	}
	return s.ledger.StakedAmount(account), nil
}

func (s *Service) GetRewards(ctx context.Context, account string) (*Rewards, *types.Error) {
	if err := s.validateAccount(account); err != nil {
		return nil, err
	}

	return &Rewards{
		Account:       account,
		Continuous:    s.ledger.CalculateRewards(account),
		Compounded:    s.ledger.CalculateCompoundedRewards(account),
		ElapsedEpochs: s.ledger.NumberOfElapsedEpochs(account),
	}, nil
}

func (s *Service) GetTotalStaked(ctx context.Context) sdkmath.Int {
	return s.ledger.TotalStaked()
}

func (s *Service) GetAvailableRewards(ctx context.Context) sdkmath.Int {
	return s.ledger.AvailableRewards()
}

func (s *Service) GetContractBalance(ctx context.Context) (sdkmath.Int, *types.Error) {
	balance, err := s.ledger.ContractBalance(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to get contract balance")
		return sdkmath.Int{}, types.NewInternalServiceError(err)
	}
	return balance, nil
}

func (s *Service) GetPool(ctx context.Context) (*PoolOverview, *types.Error) {
	var (
		balance sdkmath.Int
		err     error
	)
	state := s.ledger.SnapshotWith(func() {
		balance, err = s.token.BalanceOf(ctx, s.token.PoolAccount())
	})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to get contract balance")
		return nil, types.NewInternalServiceError(err)
	}

	return &PoolOverview{
		TotalStaked:      state.Pool.TotalStaked,
		AvailableRewards: state.Pool.AvailableRewards,
		RewardShortfall:  state.Pool.RewardShortfall,
		ContractBalance:  balance,
		Funder:           s.ledger.Funder(),
		PoolAccount:      s.token.PoolAccount(),
	}, nil
}
