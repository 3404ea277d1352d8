package ledger

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// StakeRecord is the ledger entry of one account. A record is created by the
// first stake and never removed; a zero principal record sits idle.
type StakeRecord struct {
	Principal sdkmath.Int
	// LastUpdate is the unix time (seconds) rewards were last settled. It is
	// meaningless while Principal is zero.
	LastUpdate int64
	// FirstStake is the unix time of the account's first stake.
	FirstStake int64
}

// Pool is the process wide state of the staking pool.
type Pool struct {
	// TotalStaked always equals the sum of every record's principal.
	TotalStaked sdkmath.Int
	// AvailableRewards are funded tokens earmarked for reward payouts.
	AvailableRewards sdkmath.Int
	// RewardShortfall accumulates rewards folded into principal while the
	// reward pool could not back them.
	RewardShortfall sdkmath.Int
}

func newPool() Pool {
	return Pool{
		TotalStaked:      sdkmath.ZeroInt(),
		AvailableRewards: sdkmath.ZeroInt(),
		RewardShortfall:  sdkmath.ZeroInt(),
	}
}

// State is a detached copy of everything the ledger owns.
type State struct {
	Pool    Pool
	Records map[string]StakeRecord
}

// CheckInvariants verifies the accounting identities of a state.
func (s State) CheckInvariants() error {
	for name, v := range map[string]sdkmath.Int{
		"total staked":      s.Pool.TotalStaked,
		"available rewards": s.Pool.AvailableRewards,
		"reward shortfall":  s.Pool.RewardShortfall,
	} {
		if v.IsNil() || v.IsNegative() {
			return fmt.Errorf("%s is negative or unset: %v", name, v)
		}
	}

	sum := sdkmath.ZeroInt()
	for account, record := range s.Records {
		if record.Principal.IsNil() || record.Principal.IsNegative() {
			return fmt.Errorf("principal of %s is negative or unset", account)
		}
		sum = sum.Add(record.Principal)
	}
	if !sum.Equal(s.Pool.TotalStaked) {
		return fmt.Errorf("total staked %s differs from sum of principals %s", s.Pool.TotalStaked, sum)
	}

	return nil
}
