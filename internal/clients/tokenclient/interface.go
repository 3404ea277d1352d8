package tokenclient

import (
	"context"

	sdkmath "cosmossdk.io/math"
)

// TokenGateway moves units of the staked asset between the pool account and
// other accounts. Failures are reported with the sentinel errors of the types
// package so the ledger can propagate them unchanged.
//
//go:generate mockery --name=TokenGateway --output=../../../tests/mocks --outpkg=mocks --filename=mock_token_gateway.go
type TokenGateway interface {
	// TransferIn pulls amount from an account into the pool using the allowance
	// the account granted to the pool.
	TransferIn(ctx context.Context, from string, amount sdkmath.Int) error
	// TransferOut pays amount from the pool to an account.
	TransferOut(ctx context.Context, to string, amount sdkmath.Int) error
	BalanceOf(ctx context.Context, account string) (sdkmath.Int, error)
	// PoolAccount is the account holding the pool's assets.
	PoolAccount() string
}
