package db

import (
	"context"
	"time"

	"github.com/babylonlabs-io/staking-ledger/internal/db/model"
	"github.com/babylonlabs-io/staking-ledger/internal/observability/metrics"
)

type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *DbWithMetrics) SaveCheckpoint(ctx context.Context, doc *model.CheckpointDocument) error {
	return d.run("SaveCheckpoint", func() error {
		return d.db.SaveCheckpoint(ctx, doc)
	})
}

func (d *DbWithMetrics) GetLatestCheckpoint(ctx context.Context) (result *model.CheckpointDocument, err error) {
	//nolint:errcheck
	d.run("GetLatestCheckpoint", func() error {
		result, err = d.db.GetLatestCheckpoint(ctx)
		return err
	})

	return
}

func (d *DbWithMetrics) SaveLedgerEvent(ctx context.Context, event *model.LedgerEventDocument) error {
	return d.run("SaveLedgerEvent", func() error {
		return d.db.SaveLedgerEvent(ctx, event)
	})
}

func (d *DbWithMetrics) FindLedgerEventsByAccount(
	ctx context.Context, account string, limit int64,
) (result []*model.LedgerEventDocument, err error) {
	//nolint:errcheck
	d.run("FindLedgerEventsByAccount", func() error {
		result, err = d.db.FindLedgerEventsByAccount(ctx, account, limit)
		return err
	})

	return
}

// run executes f and records its latency. A NotFoundError is an expected
// answer and is not counted as a failure.
func (d *DbWithMetrics) run(method string, f func() error) error {
	startTime := time.Now()
	err := f()
	duration := time.Since(startTime)

	failure := err != nil && !IsNotFoundError(err)
	metrics.RecordDbLatency(duration, method, failure)
	return err
}
