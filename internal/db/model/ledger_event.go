package model

import (
	"github.com/babylonlabs-io/staking-ledger/internal/types"
)

const LedgerEventCollection = "ledger_event"

type LedgerEventDocument struct {
	ID        string          `bson:"_id"`
	Type      types.EventType `bson:"type"`
	Account   string          `bson:"account"`
	Amount    string          `bson:"amount"`
	Reward    string          `bson:"reward"`
	Principal string          `bson:"principal"`
	Timestamp int64           `bson:"timestamp"`
}

func FromLedgerEvent(event *types.LedgerEvent) *LedgerEventDocument {
	return &LedgerEventDocument{
		ID:        event.ID,
		Type:      event.Type,
		Account:   event.Account,
		Amount:    event.Amount,
		Reward:    event.Reward,
		Principal: event.Principal,
		Timestamp: event.Timestamp.Unix(),
	}
}
