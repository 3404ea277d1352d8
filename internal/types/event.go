package types

import "time"

type EventType string

func (e EventType) String() string {
	return string(e)
}

const (
	EventStaked            EventType = "STAKED"
	EventUnstaked          EventType = "UNSTAKED"
	EventFunded            EventType = "FUNDED"
	EventRewardsCompounded EventType = "REWARDS_COMPOUNDED"
	EventRewardClaimed     EventType = "REWARD_CLAIMED"
)

// LedgerEvent describes one committed ledger mutation. Amounts are base units
// rendered as integer strings.
type LedgerEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Account   string    `json:"account"`
	Amount    string    `json:"amount"`
	Reward    string    `json:"reward,omitempty"`
	Principal string    `json:"principal,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
