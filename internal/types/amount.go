package types

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// AmountDecimals is the number of fractional decimal digits of every amount
// handled by the ledger. One whole token is 10^18 base units.
const AmountDecimals = 18

// OneToken is 1.0 expressed in base units.
var OneToken = sdkmath.NewIntWithDecimal(1, AmountDecimals)

// TokensToBaseUnits converts a whole number of tokens to base units.
func TokensToBaseUnits(tokens int64) sdkmath.Int {
	return sdkmath.NewInt(tokens).Mul(OneToken)
}

// ParseAmount parses a non-negative decimal string such as "1.5" into base units.
// More than AmountDecimals fractional digits is an error, nothing is rounded.
func ParseAmount(s string) (sdkmath.Int, error) {
	dec, err := sdkmath.LegacyNewDecFromStr(s)
	if err != nil {
		return sdkmath.Int{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if dec.IsNegative() {
		return sdkmath.Int{}, fmt.Errorf("invalid amount %q: must not be negative", s)
	}

	return sdkmath.NewIntFromBigInt(dec.BigInt()), nil
}

// ParseBaseUnits parses an integer string of base units, the format amounts are persisted in.
func ParseBaseUnits(s string) (sdkmath.Int, error) {
	v, ok := sdkmath.NewIntFromString(s)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("invalid base units %q", s)
	}
	if v.IsNegative() {
		return sdkmath.Int{}, fmt.Errorf("invalid base units %q: must not be negative", s)
	}

	return v, nil
}

// FormatAmount renders base units as a decimal string with AmountDecimals digits.
func FormatAmount(v sdkmath.Int) string {
	if v.IsNil() {
		v = sdkmath.ZeroInt()
	}
	return sdkmath.LegacyNewDecFromBigIntWithPrec(v.BigInt(), AmountDecimals).String()
}
