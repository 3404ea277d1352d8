package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/babylonlabs-io/staking-ledger/internal/db"
	"github.com/babylonlabs-io/staking-ledger/internal/db/model"
	"github.com/babylonlabs-io/staking-ledger/internal/ledger"
	"github.com/babylonlabs-io/staking-ledger/internal/types"
)

const eventEmitTimeout = 30 * time.Second

func newLedgerEvent(eventType types.EventType, receipt *ledger.Receipt) *types.LedgerEvent {
	return &types.LedgerEvent{
		ID:        receipt.ID,
		Type:      eventType,
		Account:   receipt.Account,
		Amount:    receipt.Amount.String(),
		Reward:    receipt.Reward.String(),
		Principal: receipt.Principal.String(),
		Timestamp: time.Unix(receipt.Timestamp, 0).UTC(),
	}
}

// emitEvent journals the event and publishes it. The operation has already
// committed, so failures are logged and never returned to the caller.
func (s *Service) emitEvent(ctx context.Context, event *types.LedgerEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventEmitTimeout)
	defer cancel()

	log := log.Ctx(ctx).With().
		Str("event_id", event.ID).
		Stringer("type", event.Type).
		Str("account", event.Account).
		Logger()

	err := s.db.SaveLedgerEvent(ctx, model.FromLedgerEvent(event))
	if err != nil && !db.IsDuplicateKeyError(err) {
		log.Error().Err(err).Msg("failed to save ledger event")
	}

	if err := s.publisher.PublishLedgerEvent(ctx, event); err != nil {
		log.Error().Err(err).Msg("failed to publish ledger event")
	}
}

// GetEvents returns the latest ledger events of an account, newest first.
func (s *Service) GetEvents(ctx context.Context, account string, limit int64) ([]*model.LedgerEventDocument, *types.Error) {
	if err := s.validateAccount(account); err != nil {
		return nil, err
	}

	events, err := s.db.FindLedgerEventsByAccount(ctx, account, limit)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("account", account).Msg("failed to find ledger events")
		return nil, types.NewInternalServiceError(err)
	}

	return events, nil
}
