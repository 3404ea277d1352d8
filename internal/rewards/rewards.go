// Package rewards holds the integer reward arithmetic of the staking pool.
// Every division truncates; no floating point value is used anywhere.
package rewards

import (
	sdkmath "cosmossdk.io/math"
)

const (
	// AnnualYieldRateBp is the yearly reward rate in basis points (5.00%).
	AnnualYieldRateBp = 500
	BasisPoints       = 10000
	SecondsPerWeek    = 604800
	WeeksPerYear      = 52
	// SecondsPerRewardYear is 52 whole weeks, not a calendar year.
	SecondsPerRewardYear = SecondsPerWeek * WeeksPerYear
)

var (
	yieldRate  = sdkmath.NewInt(AnnualYieldRateBp)
	basis      = sdkmath.NewInt(BasisPoints)
	rewardYear = sdkmath.NewInt(SecondsPerRewardYear)
)

// RewardPerSecond returns principal * 500 / 10000 / 31449600 in base units.
func RewardPerSecond(principal sdkmath.Int) sdkmath.Int {
	if principal.IsNil() || !principal.IsPositive() {
		return sdkmath.ZeroInt()
	}
	return principal.Mul(yieldRate).Quo(basis).Quo(rewardYear)
}

// ContinuousReward accrues every elapsed second.
func ContinuousReward(principal sdkmath.Int, elapsedSeconds uint64) sdkmath.Int {
	return RewardPerSecond(principal).Mul(sdkmath.NewIntFromUint64(elapsedSeconds))
}

// CompoundedReward accrues whole elapsed weeks only; a partial week is worth nothing.
func CompoundedReward(principal sdkmath.Int, elapsedSeconds uint64) sdkmath.Int {
	quantized := elapsedSeconds - elapsedSeconds%SecondsPerWeek
	return RewardPerSecond(principal).Mul(sdkmath.NewIntFromUint64(quantized))
}

// Elapsed returns now - since in seconds, or zero when now precedes since.
func Elapsed(since, now int64) uint64 {
	if now <= since {
		return 0
	}
	return uint64(now - since)
}

// ElapsedEpochs returns the number of whole weeks between since and now.
func ElapsedEpochs(since, now int64) uint64 {
	return Elapsed(since, now) / SecondsPerWeek
}
