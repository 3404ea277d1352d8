// Package ledger implements the staking pool accounting: per account principal,
// the pool totals and the rules for accrual, compounding, withdrawal and claims.
//
// Every mutating operation runs under one lock and is all or nothing: all
// preconditions and the token movement are checked before any field changes.
package ledger

import (
	"context"
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/babylonlabs-io/staking-ledger/internal/clients/tokenclient"
	"github.com/babylonlabs-io/staking-ledger/internal/rewards"
	"github.com/babylonlabs-io/staking-ledger/internal/types"
)

// Receipt describes a committed operation.
type Receipt struct {
	// ID is a version 7 uuid issued under the ledger lock, so receipts sort
	// in commit order.
	ID      string
	Account string
	// Amount moved by the operation (deposit, withdrawal, funding or paid reward).
	Amount sdkmath.Int
	// Reward folded into principal or paid out.
	Reward sdkmath.Int
	// Shortfall is the part of Reward the reward pool could not back.
	Shortfall sdkmath.Int
	// Principal of the account after the operation.
	Principal sdkmath.Int
	Timestamp int64
}

type Ledger struct {
	mu      sync.RWMutex
	token   tokenclient.TokenGateway
	clock   Clock
	funder  string
	pool    Pool
	records map[string]*StakeRecord
}

func New(token tokenclient.TokenGateway, clock Clock, funder string) *Ledger {
	return &Ledger{
		token:   token,
		clock:   clock,
		funder:  funder,
		pool:    newPool(),
		records: make(map[string]*StakeRecord),
	}
}

func (l *Ledger) Funder() string {
	return l.funder
}

// Fund moves amount from the funder into the reward pool.
func (l *Ledger) Fund(ctx context.Context, amount sdkmath.Int) (*Receipt, error) {
	if !isPositive(amount) {
		return nil, types.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.token.TransferIn(ctx, l.funder, amount); err != nil {
		return nil, err
	}

	l.pool.AvailableRewards = l.pool.AvailableRewards.Add(amount)

	return &Receipt{
		ID:        newReceiptID(),
		Account:   l.funder,
		Amount:    amount,
		Reward:    sdkmath.ZeroInt(),
		Shortfall: sdkmath.ZeroInt(),
		Principal: l.principalOf(l.funder),
		Timestamp: l.now(),
	}, nil
}

// Stake folds pending compounded reward into the account's principal, then
// deposits amount on top of it.
func (l *Ledger) Stake(ctx context.Context, account string, amount sdkmath.Int) (*Receipt, error) {
	if !isPositive(amount) {
		return nil, types.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	record, exists := l.record(account)
	f := computeFold(&l.pool, record, now)

	if err := l.token.TransferIn(ctx, account, amount); err != nil {
		return nil, err
	}

	l.applyFold(ctx, account, f)
	record.Principal = record.Principal.Add(f.reward).Add(amount)
	record.LastUpdate = now
	if !exists {
		record.FirstStake = now
	}
	l.pool.TotalStaked = l.pool.TotalStaked.Add(amount)
	l.records[account] = &record

	return &Receipt{
		ID:        newReceiptID(),
		Account:   account,
		Amount:    amount,
		Reward:    f.reward,
		Shortfall: f.shortfall,
		Principal: record.Principal,
		Timestamp: now,
	}, nil
}

// Unstake folds pending compounded reward into principal and withdraws amount
// from it. The withdrawal must be covered by the pool's real token holdings.
func (l *Ledger) Unstake(ctx context.Context, account string, amount sdkmath.Int) (*Receipt, error) {
	if !isPositive(amount) {
		return nil, types.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	record, _ := l.record(account)
	if !record.Principal.IsPositive() {
		return nil, types.ErrInsufficientStakedBalance
	}

	f := computeFold(&l.pool, record, now)
	principal := record.Principal.Add(f.reward)
	if amount.GT(principal) {
		return nil, types.ErrInsufficientStakedBalance
	}

	holdings, err := l.token.BalanceOf(ctx, l.token.PoolAccount())
	if err != nil {
		return nil, err
	}
	if amount.GT(holdings) {
		return nil, types.ErrInsufficientContractBalance
	}

	if err := l.token.TransferOut(ctx, account, amount); err != nil {
		return nil, err
	}

	l.applyFold(ctx, account, f)
	record.Principal = principal.Sub(amount)
	record.LastUpdate = now
	l.pool.TotalStaked = l.pool.TotalStaked.Sub(amount)
	l.records[account] = &record

	return &Receipt{
		ID:        newReceiptID(),
		Account:   account,
		Amount:    amount,
		Reward:    f.reward,
		Shortfall: f.shortfall,
		Principal: record.Principal,
		Timestamp: now,
	}, nil
}

// CompoundRewards folds the whole-week reward into principal. Unlike the fold
// inside Stake and Unstake it requires a full epoch since the last update and
// a reward pool able to back the reward.
func (l *Ledger) CompoundRewards(ctx context.Context, account string) (*Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	record, exists := l.record(account)
	elapsed := rewards.Elapsed(record.LastUpdate, now)
	if elapsed < rewards.SecondsPerWeek {
		return nil, types.ErrInsufficientTimePassed
	}

	reward := rewards.CompoundedReward(record.Principal, elapsed)
	if reward.GT(l.pool.AvailableRewards) {
		return nil, types.ErrInsufficientContractBalance
	}

	if exists {
		record.Principal = record.Principal.Add(reward)
		record.LastUpdate = now
		l.pool.TotalStaked = l.pool.TotalStaked.Add(reward)
		l.pool.AvailableRewards = l.pool.AvailableRewards.Sub(reward)
		l.records[account] = &record
	}

	log.Ctx(ctx).Debug().
		Str("account", account).
		Str("reward", reward.String()).
		Msg("compounded rewards")

	return &Receipt{
		ID:        newReceiptID(),
		Account:   account,
		Amount:    sdkmath.ZeroInt(),
		Reward:    reward,
		Shortfall: sdkmath.ZeroInt(),
		Principal: record.Principal,
		Timestamp: now,
	}, nil
}

// ClaimReward pays the per-second reward accrued since the last update out of
// the reward pool. Principal is left unchanged.
func (l *Ledger) ClaimReward(ctx context.Context, account string) (*Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	record, exists := l.record(account)
	reward := rewards.ContinuousReward(record.Principal, rewards.Elapsed(record.LastUpdate, now))
	if reward.GT(l.pool.AvailableRewards) {
		return nil, types.ErrInsufficientContractBalance
	}

	if reward.IsPositive() {
		holdings, err := l.token.BalanceOf(ctx, l.token.PoolAccount())
		if err != nil {
			return nil, err
		}
		if reward.GT(holdings) {
			return nil, types.ErrInsufficientContractBalance
		}
		if err := l.token.TransferOut(ctx, account, reward); err != nil {
			return nil, err
		}
	}

	if exists {
		l.pool.AvailableRewards = l.pool.AvailableRewards.Sub(reward)
		record.LastUpdate = now
		l.records[account] = &record
	}

	return &Receipt{
		ID:        newReceiptID(),
		Account:   account,
		Amount:    reward,
		Reward:    reward,
		Shortfall: sdkmath.ZeroInt(),
		Principal: record.Principal,
		Timestamp: now,
	}, nil
}

func (l *Ledger) StakedAmount(account string) sdkmath.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.principalOf(account)
}

func (l *Ledger) Record(account string) (StakeRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.record(account)
}

func (l *Ledger) TotalStaked() sdkmath.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.pool.TotalStaked
}

func (l *Ledger) AvailableRewards() sdkmath.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.pool.AvailableRewards
}

func (l *Ledger) Pool() Pool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.pool
}

// CalculateRewards returns the continuous reward the account could claim now.
func (l *Ledger) CalculateRewards(account string) sdkmath.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	record, _ := l.record(account)
	return rewards.ContinuousReward(record.Principal, rewards.Elapsed(record.LastUpdate, l.now()))
}

// CalculateCompoundedRewards returns the whole-week reward that would be folded now.
func (l *Ledger) CalculateCompoundedRewards(account string) sdkmath.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	record, _ := l.record(account)
	return rewards.CompoundedReward(record.Principal, rewards.Elapsed(record.LastUpdate, l.now()))
}

// NumberOfElapsedEpochs counts whole weeks since the account first staked.
func (l *Ledger) NumberOfElapsedEpochs(account string) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	record, exists := l.record(account)
	if !exists {
		return 0
	}
	return rewards.ElapsedEpochs(record.FirstStake, l.now())
}

// ContractBalance returns the pool's real token holdings.
func (l *Ledger) ContractBalance(ctx context.Context) (sdkmath.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.token.BalanceOf(ctx, l.token.PoolAccount())
}

// Snapshot returns a copy of the ledger state consistent with a single point
// between operations.
func (l *Ledger) Snapshot() State {
	return l.SnapshotWith(nil)
}

// SnapshotWith is Snapshot that also runs capture while no operation can
// commit, so state read by capture (token balances) matches the snapshot.
func (l *Ledger) SnapshotWith(capture func()) State {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if capture != nil {
		capture()
	}

	state := State{
		Pool:    l.pool,
		Records: make(map[string]StakeRecord, len(l.records)),
	}
	for account, record := range l.records {
		state.Records[account] = *record
	}
	return state
}

// Restore replaces the ledger state, typically with a persisted checkpoint
// before the ledger serves any call.
func (l *Ledger) Restore(state State) error {
	if err := state.CheckInvariants(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.pool = state.Pool
	l.records = make(map[string]*StakeRecord, len(state.Records))
	for account, record := range state.Records {
		r := record
		l.records[account] = &r
	}
	return nil
}

func (l *Ledger) now() int64 {
	return l.clock.Now().Unix()
}

// record returns a copy of the account's record, or a zero record.
func (l *Ledger) record(account string) (StakeRecord, bool) {
	record, ok := l.records[account]
	if !ok {
		return StakeRecord{Principal: sdkmath.ZeroInt()}, false
	}
	return *record, true
}

func (l *Ledger) principalOf(account string) sdkmath.Int {
	record, _ := l.record(account)
	return record.Principal
}

// newReceiptID must be called with the write lock held.
func newReceiptID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func isPositive(amount sdkmath.Int) bool {
	return !amount.IsNil() && amount.IsPositive()
}
