package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAddress(t *testing.T) {
	const prefix = "bbn"

	assert.NoError(t, ValidateAddress("bbn1qvpsxqcrqvpsxqcrqvpsxqcrqvpsxqcr4ehtnj", prefix))
	assert.Error(t, ValidateAddress("bbn1qvpsxqcrqvpsxqcrqvpsxqcrqvpsxqcr4ehtnk", prefix), "bad checksum")
	assert.Error(t, ValidateAddress("bbn1qvpsxqcrqvpsxqcrqvpsxqcrqvpsxqcr4ehtnj", "cosmos"), "wrong prefix")
	assert.Error(t, ValidateAddress("", prefix))
	assert.Error(t, ValidateAddress("not-an-address", prefix))
}
