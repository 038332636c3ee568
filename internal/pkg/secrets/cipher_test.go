package secrets_test

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/smartfixosapp/smartfixos/internal/pkg/secrets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() string {
	return hex.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
}

func TestNewCipher(t *testing.T) {
	t.Run("should accept a 32-byte hex key", func(t *testing.T) {
		c, err := secrets.NewCipher(testKey())

		require.NoError(t, err)
		assert.NotNil(t, c)
	})

	t.Run("should reject non-hex input", func(t *testing.T) {
		_, err := secrets.NewCipher("not hex at all")

		require.Error(t, err)
	})

	t.Run("should reject short keys", func(t *testing.T) {
		_, err := secrets.NewCipher(hex.EncodeToString([]byte("too short")))

		require.ErrorIs(t, err, secrets.ErrKeySize)
	})
}

func TestCipher_SealOpen(t *testing.T) {
	c, err := secrets.NewCipher(testKey())
	require.NoError(t, err)

	t.Run("should round-trip a secret", func(t *testing.T) {
		sealed, err := c.Seal("1234")

		require.NoError(t, err)
		assert.NotContains(t, string(sealed), "1234")

		plaintext, err := c.Open(sealed)
		require.NoError(t, err)
		assert.Equal(t, "1234", plaintext)
	})

	t.Run("should produce distinct ciphertexts for the same plaintext", func(t *testing.T) {
		first, err := c.Seal("1234")
		require.NoError(t, err)
		second, err := c.Seal("1234")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("should reject tampered ciphertext", func(t *testing.T) {
		sealed, err := c.Seal("swipe pattern L")
		require.NoError(t, err)
		sealed[len(sealed)-1] ^= 0xff

		_, err = c.Open(sealed)

		require.ErrorIs(t, err, secrets.ErrCiphertextInvalid)
	})

	t.Run("should reject truncated ciphertext", func(t *testing.T) {
		_, err := c.Open([]byte("short"))

		require.ErrorIs(t, err, secrets.ErrCiphertextInvalid)
	})

	t.Run("should not open with a different key", func(t *testing.T) {
		other, err := secrets.NewCipher(hex.EncodeToString([]byte(strings.Repeat("k", 32))))
		require.NoError(t, err)

		sealed, err := c.Seal("1234")
		require.NoError(t, err)

		_, err = other.Open(sealed)
		require.ErrorIs(t, err, secrets.ErrCiphertextInvalid)
	})
}

func TestRedacted(t *testing.T) {
	t.Run("redaction marker should never be empty", func(t *testing.T) {
		assert.NotEmpty(t, secrets.Redacted)
	})
}
