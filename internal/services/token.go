package services

import (
	"context"
	"net/http"

	sdkmath "cosmossdk.io/math"

	"github.com/babylonlabs-io/staking-ledger/internal/types"
)

// Approve sets the amount the pool may pull from owner on Stake or Fund.
func (s *Service) Approve(ctx context.Context, owner string, amount sdkmath.Int) *types.Error {
	if err := s.validateStaker(owner); err != nil {
		return err
	}

	if err := s.token.Approve(owner, s.token.PoolAccount(), amount); err != nil {
		return types.FromLedgerError(err)
	}
	return nil
}

func (s *Service) GetTokenBalance(ctx context.Context, account string) (sdkmath.Int, *types.Error) {
	if err := s.validateAccount(account); err != nil {
		return sdkmath.Int{}, err
	}

	balance, err := s.token.BalanceOf(ctx, account)
	if err != nil {
		return sdkmath.Int{}, types.FromLedgerError(err)
	}
	return balance, nil
}

// GetAllowance returns what the pool may still pull from owner.
func (s *Service) GetAllowance(ctx context.Context, owner string) (sdkmath.Int, *types.Error) {
	if err := s.validateAccount(owner); err != nil {
		return sdkmath.Int{}, err
	}
	return s.token.Allowance(owner, s.token.PoolAccount()), nil
}

// Transfer moves tokens between two accounts. Tokens reach the pool only
// through Stake and Fund.
func (s *Service) Transfer(ctx context.Context, from, to string, amount sdkmath.Int) *types.Error {
	if err := s.validateAccount(from); err != nil {
		return err
	}
	if err := s.validateAccount(to); err != nil {
		return err
	}
	if to == s.token.PoolAccount() || from == s.token.PoolAccount() {
		return types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "pool account cannot be used for transfers")
	}

	if err := s.token.Transfer(from, to, amount); err != nil {
		return types.FromLedgerError(err)
	}
	return nil
}
