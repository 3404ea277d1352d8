package testutil

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
)

// RandomAlphaNum generates random alphanumeric string
// in case length <= 0 it returns empty string
func RandomAlphaNum(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	if length <= 0 {
		return "", fmt.Errorf("length must be greater than 0")
	}

	randomString := make([]byte, length)
	for i := range randomString {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		randomString[i] = charset[num.Int64()]
	}

	return string(randomString), nil
}

// RandomAddress returns a random 20 byte bech32 account address with the given prefix.
func RandomAddress(t *testing.T, prefix string) string {
	t.Helper()

	bz := make([]byte, 20)
	_, err := rand.Read(bz)
	require.NoError(t, err)

	address, err := sdk.Bech32ifyAddressBytes(prefix, bz)
	require.NoError(t, err)
	return address
}
