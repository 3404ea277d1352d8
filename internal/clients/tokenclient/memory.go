package tokenclient

import (
	"context"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"

	"github.com/babylonlabs-io/staking-ledger/internal/types"
)

// TokenState is a copy of every balance and allowance of a MemoryToken.
type TokenState struct {
	Balances map[string]sdkmath.Int
	// Allowances is indexed by owner, then spender.
	Allowances map[string]map[string]sdkmath.Int
}

// MemoryToken is a deterministic in-memory fungible token. It implements
// TokenGateway for the pool account it was created with.
type MemoryToken struct {
	mu         sync.RWMutex
	pool       string
	balances   map[string]sdkmath.Int
	allowances map[string]map[string]sdkmath.Int
}

func NewMemoryToken(poolAccount string) *MemoryToken {
	return &MemoryToken{
		pool:       poolAccount,
		balances:   make(map[string]sdkmath.Int),
		allowances: make(map[string]map[string]sdkmath.Int),
	}
}

func (t *MemoryToken) PoolAccount() string {
	return t.pool
}

// Mint credits amount to an account out of thin air. It is used for genesis
// allocations and tests.
func (t *MemoryToken) Mint(account string, amount sdkmath.Int) error {
	if !amount.IsPositive() {
		return types.ErrInvalidAmount
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.balances[account] = t.balanceOf(account).Add(amount)
	return nil
}

// Approve sets the amount spender may pull from owner, replacing any previous allowance.
func (t *MemoryToken) Approve(owner, spender string, amount sdkmath.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return types.ErrInvalidAmount
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.allowances[owner] == nil {
		t.allowances[owner] = make(map[string]sdkmath.Int)
	}
	t.allowances[owner][spender] = amount
	return nil
}

func (t *MemoryToken) Allowance(owner, spender string) sdkmath.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.allowance(owner, spender)
}

// Transfer moves amount between two accounts.
func (t *MemoryToken) Transfer(from, to string, amount sdkmath.Int) error {
	if !amount.IsPositive() {
		return types.ErrInvalidAmount
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.balanceOf(from).LT(amount) {
		return fmt.Errorf("%w: %s holds %s", types.ErrInsufficientBalance, from, t.balanceOf(from))
	}
	t.move(from, to, amount)
	return nil
}

// TransferIn checks the allowance before the balance, a deposit without
// approval always reports insufficient allowance.
func (t *MemoryToken) TransferIn(_ context.Context, from string, amount sdkmath.Int) error {
	if !amount.IsPositive() {
		return types.ErrInvalidAmount
	}
	if from == t.pool {
		return types.ErrPoolAccount
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	allowance := t.allowance(from, t.pool)
	if allowance.LT(amount) {
		return fmt.Errorf("%w: %s approved %s", types.ErrInsufficientAllowance, from, allowance)
	}
	if t.balanceOf(from).LT(amount) {
		return fmt.Errorf("%w: %s holds %s", types.ErrInsufficientBalance, from, t.balanceOf(from))
	}

	t.allowances[from][t.pool] = allowance.Sub(amount)
	t.move(from, t.pool, amount)
	return nil
}

func (t *MemoryToken) TransferOut(_ context.Context, to string, amount sdkmath.Int) error {
	if !amount.IsPositive() {
		return types.ErrInvalidAmount
	}
	if to == t.pool {
		return types.ErrPoolAccount
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.balanceOf(t.pool).LT(amount) {
		return fmt.Errorf("%w: pool holds %s", types.ErrInsufficientContractBalance, t.balanceOf(t.pool))
	}
	t.move(t.pool, to, amount)
	return nil
}

func (t *MemoryToken) BalanceOf(_ context.Context, account string) (sdkmath.Int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.balanceOf(account), nil
}

func (t *MemoryToken) TotalSupply() sdkmath.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	total := sdkmath.ZeroInt()
	for _, balance := range t.balances {
		total = total.Add(balance)
	}
	return total
}

func (t *MemoryToken) Snapshot() TokenState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	state := TokenState{
		Balances:   make(map[string]sdkmath.Int, len(t.balances)),
		Allowances: make(map[string]map[string]sdkmath.Int, len(t.allowances)),
	}
	for account, balance := range t.balances {
		state.Balances[account] = balance
	}
	for owner, spenders := range t.allowances {
		copied := make(map[string]sdkmath.Int, len(spenders))
		for spender, amount := range spenders {
			copied[spender] = amount
		}
		state.Allowances[owner] = copied
	}
	return state
}

// Restore replaces the whole token state.
func (t *MemoryToken) Restore(state TokenState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.balances = make(map[string]sdkmath.Int, len(state.Balances))
	for account, balance := range state.Balances {
		t.balances[account] = balance
	}
	t.allowances = make(map[string]map[string]sdkmath.Int, len(state.Allowances))
	for owner, spenders := range state.Allowances {
		copied := make(map[string]sdkmath.Int, len(spenders))
		for spender, amount := range spenders {
			copied[spender] = amount
		}
		t.allowances[owner] = copied
	}
}

func (t *MemoryToken) balanceOf(account string) sdkmath.Int {
	balance, ok := t.balances[account]
	if !ok {
		return sdkmath.ZeroInt()
	}
	return balance
}

func (t *MemoryToken) allowance(owner, spender string) sdkmath.Int {
	amount, ok := t.allowances[owner][spender]
	if !ok {
		return sdkmath.ZeroInt()
	}
	return amount
}

// move must be called with the write lock held and a sufficient balance.
func (t *MemoryToken) move(from, to string, amount sdkmath.Int) {
	t.balances[from] = t.balanceOf(from).Sub(amount)
	t.balances[to] = t.balanceOf(to).Add(amount)
}
