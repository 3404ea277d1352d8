package queue

import (
	"context"

	"github.com/babylonlabs-io/staking-ledger/internal/types"
)

// Publisher delivers committed ledger events to downstream consumers.
//
//go:generate mockery --name=Publisher --output=../../tests/mocks --outpkg=mocks --filename=mock_publisher.go
type Publisher interface {
	PublishLedgerEvent(ctx context.Context, event *types.LedgerEvent) error
	Shutdown()
}
