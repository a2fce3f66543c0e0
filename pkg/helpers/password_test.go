package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("supersecret")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	require.True(t, VerifyPassword(hash, "supersecret"))
	require.False(t, VerifyPassword(hash, "wrong"))

	// Salted: same input, different hash.
	other, err := HashPassword("supersecret")
	require.NoError(t, err)
	require.NotEqual(t, hash, other)
	require.True(t, VerifyPassword(other, "supersecret"))
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	t.Parallel()

	require.False(t, VerifyPassword("", "x"))
	require.False(t, VerifyPassword("not-a-hash", "x"))
	require.False(t, VerifyPassword("$argon2id$v=19$m=65536,t=3,p=4$!!$!!", "x"))
	require.False(t, VerifyPassword("$bcrypt$whatever", "x"))
}

// Token hashing shares the password primitive but must handle long inputs,
// since raw refresh tokens are full JWTs.
func TestHashTokenLongInput(t *testing.T) {
	t.Parallel()

	raw := strings.Repeat("header.payload.signature", 20)
	hash, err := HashToken(raw)
	require.NoError(t, err)
	require.True(t, VerifyToken(hash, raw))
	require.False(t, VerifyToken(hash, raw[:len(raw)-1]))
}

func TestGenOTPCode(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		code, err := GenOTPCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, c := range code {
			require.True(t, c >= '0' && c <= '9')
		}
		seen[code] = true
	}
	// Collisions in 20 draws from a million values would be suspicious
	// enough to fail loudly.
	require.Greater(t, len(seen), 15)
}
