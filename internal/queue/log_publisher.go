package queue

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/babylonlabs-io/staking-ledger/internal/types"
)

// LogPublisher is used when no queue is configured, events only reach the log.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) PublishLedgerEvent(ctx context.Context, event *types.LedgerEvent) error {
	log.Ctx(ctx).Info().
		Str("event_id", event.ID).
		Stringer("type", event.Type).
		Str("account", event.Account).
		Str("amount", event.Amount).
		Str("reward", event.Reward).
		Msg("ledger event")

	return nil
}

func (p *LogPublisher) Shutdown() {}
