package tokenclient

import (
	"context"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/babylonlabs-io/staking-ledger/internal/observability/metrics"
)

type tokenGatewayWithMetrics struct {
	token TokenGateway
}

func NewTokenGatewayWithMetrics(token TokenGateway) *tokenGatewayWithMetrics {
	return &tokenGatewayWithMetrics{token: token}
}

func (t *tokenGatewayWithMetrics) TransferIn(ctx context.Context, from string, amount sdkmath.Int) error {
	_, err := runTokenMethodWithMetrics("TransferIn", func() (struct{}, error) {
		return struct{}{}, t.token.TransferIn(ctx, from, amount)
	})
	return err
}

func (t *tokenGatewayWithMetrics) TransferOut(ctx context.Context, to string, amount sdkmath.Int) error {
	_, err := runTokenMethodWithMetrics("TransferOut", func() (struct{}, error) {
		return struct{}{}, t.token.TransferOut(ctx, to, amount)
	})
	return err
}

func (t *tokenGatewayWithMetrics) BalanceOf(ctx context.Context, account string) (sdkmath.Int, error) {
	return runTokenMethodWithMetrics("BalanceOf", func() (sdkmath.Int, error) {
		return t.token.BalanceOf(ctx, account)
	})
}

func (t *tokenGatewayWithMetrics) PoolAccount() string {
	return t.token.PoolAccount()
}

func runTokenMethodWithMetrics[T any](method string, f func() (T, error)) (T, error) {
	startTime := time.Now()
	v, err := f()
	duration := time.Since(startTime)

	metrics.RecordTokenGatewayLatency(duration, method, err != nil)
	return v, err
}
