package model

import (
	"fmt"
	"sort"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/babylonlabs-io/staking-ledger/internal/clients/tokenclient"
	"github.com/babylonlabs-io/staking-ledger/internal/ledger"
	"github.com/babylonlabs-io/staking-ledger/internal/types"
)

const (
	CheckpointCollection = "ledger_checkpoint"
	// LatestCheckpointID is the _id of the only checkpoint document.
	LatestCheckpointID = "latest"
)

// CheckpointDocument is a complete copy of the ledger and token state.
// Amounts are stored as base unit integer strings, they do not fit int64.
type CheckpointDocument struct {
	ID               string                `bson:"_id"`
	TotalStaked      string                `bson:"total_staked"`
	AvailableRewards string                `bson:"available_rewards"`
	RewardShortfall  string                `bson:"reward_shortfall"`
	StakeRecords     []StakeRecordDocument `bson:"stake_records"`
	TokenBalances    []TokenBalance        `bson:"token_balances"`
	TokenAllowances  []TokenAllowance      `bson:"token_allowances"`
	CreatedAt        int64                 `bson:"created_at"`
}

type StakeRecordDocument struct {
	Account    string `bson:"account"`
	Principal  string `bson:"principal"`
	LastUpdate int64  `bson:"last_update"`
	FirstStake int64  `bson:"first_stake"`
}

type TokenBalance struct {
	Account string `bson:"account"`
	Balance string `bson:"balance"`
}

type TokenAllowance struct {
	Owner   string `bson:"owner"`
	Spender string `bson:"spender"`
	Amount  string `bson:"amount"`
}

// FromLedgerState builds a checkpoint. Accounts are sorted so that identical
// states produce identical documents.
func FromLedgerState(state ledger.State, token tokenclient.TokenState, createdAt time.Time) *CheckpointDocument {
	doc := &CheckpointDocument{
		ID:               LatestCheckpointID,
		TotalStaked:      state.Pool.TotalStaked.String(),
		AvailableRewards: state.Pool.AvailableRewards.String(),
		RewardShortfall:  state.Pool.RewardShortfall.String(),
		StakeRecords:     make([]StakeRecordDocument, 0, len(state.Records)),
		TokenBalances:    make([]TokenBalance, 0, len(token.Balances)),
		TokenAllowances:  []TokenAllowance{},
		CreatedAt:        createdAt.Unix(),
	}

	for _, account := range sortedKeys(state.Records) {
		record := state.Records[account]
		doc.StakeRecords = append(doc.StakeRecords, StakeRecordDocument{
			Account:    account,
			Principal:  record.Principal.String(),
			LastUpdate: record.LastUpdate,
			FirstStake: record.FirstStake,
		})
	}

	for _, account := range sortedKeys(token.Balances) {
		doc.TokenBalances = append(doc.TokenBalances, TokenBalance{
			Account: account,
			Balance: token.Balances[account].String(),
		})
	}

	for _, owner := range sortedKeys(token.Allowances) {
		spenders := token.Allowances[owner]
		for _, spender := range sortedKeys(spenders) {
			doc.TokenAllowances = append(doc.TokenAllowances, TokenAllowance{
				Owner:   owner,
				Spender: spender,
				Amount:  spenders[spender].String(),
			})
		}
	}

	return doc
}

// ToLedgerState converts a checkpoint back into the states it was built from.
func (doc *CheckpointDocument) ToLedgerState() (ledger.State, tokenclient.TokenState, error) {
	var (
		state = ledger.State{Records: make(map[string]ledger.StakeRecord, len(doc.StakeRecords))}
		token = tokenclient.TokenState{
			Balances:   make(map[string]sdkmath.Int, len(doc.TokenBalances)),
			Allowances: make(map[string]map[string]sdkmath.Int),
		}
		err error
	)

	if state.Pool.TotalStaked, err = types.ParseBaseUnits(doc.TotalStaked); err != nil {
		return ledger.State{}, tokenclient.TokenState{}, fmt.Errorf("total staked: %w", err)
	}
	if state.Pool.AvailableRewards, err = types.ParseBaseUnits(doc.AvailableRewards); err != nil {
		return ledger.State{}, tokenclient.TokenState{}, fmt.Errorf("available rewards: %w", err)
	}
	if state.Pool.RewardShortfall, err = types.ParseBaseUnits(doc.RewardShortfall); err != nil {
		return ledger.State{}, tokenclient.TokenState{}, fmt.Errorf("reward shortfall: %w", err)
	}

	for _, record := range doc.StakeRecords {
		principal, err := types.ParseBaseUnits(record.Principal)
		if err != nil {
			return ledger.State{}, tokenclient.TokenState{}, fmt.Errorf("principal of %s: %w", record.Account, err)
		}
		state.Records[record.Account] = ledger.StakeRecord{
			Principal:  principal,
			LastUpdate: record.LastUpdate,
			FirstStake: record.FirstStake,
		}
	}

	for _, balance := range doc.TokenBalances {
		amount, err := types.ParseBaseUnits(balance.Balance)
		if err != nil {
			return ledger.State{}, tokenclient.TokenState{}, fmt.Errorf("balance of %s: %w", balance.Account, err)
		}
		token.Balances[balance.Account] = amount
	}

	for _, allowance := range doc.TokenAllowances {
		amount, err := types.ParseBaseUnits(allowance.Amount)
		if err != nil {
			return ledger.State{}, tokenclient.TokenState{}, fmt.Errorf("allowance of %s: %w", allowance.Owner, err)
		}
		if token.Allowances[allowance.Owner] == nil {
			token.Allowances[allowance.Owner] = make(map[string]sdkmath.Int)
		}
		token.Allowances[allowance.Owner][allowance.Spender] = amount
	}

	return state, token, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
