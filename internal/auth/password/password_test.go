package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("s3cret")
	require.NoError(t, err)
	assert.True(t, Verify("s3cret", encoded))
	assert.False(t, Verify("wrong", encoded))
}

func TestVerifyRejectsMalformed(t *testing.T) {
	assert.False(t, Verify("anything", ""))
	assert.False(t, Verify("anything", "$argon2id$v=19$garbage"))
	assert.False(t, Verify("anything", "plaintext"))
}
