// Package secrets seals sensitive device credentials (PINs, passcodes) with
// authenticated encryption before they touch storage. Reversible "encoding"
// is not encryption; anything at rest goes through XChaCha20-Poly1305 with a
// random nonce, and reads are redacted unless a reveal is explicitly
// requested.
package secrets

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

var (
	// ErrKeySize is returned when the configured key is not 32 bytes.
	ErrKeySize = errors.New("secrets key must be 32 bytes (64 hex characters)")

	// ErrCiphertextInvalid is returned when sealed data is truncated or tampered.
	ErrCiphertextInvalid = errors.New("sealed secret is invalid or tampered")
)

// Redacted is what callers get instead of a plaintext secret unless they
// explicitly ask for a reveal.
const Redacted = "••••••"

// Cipher seals and opens device secrets with XChaCha20-Poly1305.
type Cipher struct {
	aead interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
		NonceSize() int
	}
}

// NewCipher creates a Cipher from a hex-encoded 32-byte key, typically
// loaded from configuration.
func NewCipher(hexKey string) (*Cipher, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("secrets key is not valid hex: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, ErrKeySize
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}

	return &Cipher{aead: aead}, nil
}

// Seal encrypts plaintext and returns nonce-prefixed ciphertext.
func (c *Cipher) Seal(plaintext string) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return c.aead.Seal(nonce, nonce, []byte(plaintext), nil), nil
}

// Open decrypts nonce-prefixed ciphertext produced by Seal.
func (c *Cipher) Open(sealed []byte) (string, error) {
	nonceSize := c.aead.NonceSize()
	if len(sealed) < nonceSize {
		return "", ErrCiphertextInvalid
	}

	plaintext, err := c.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return "", ErrCiphertextInvalid
	}
	return string(plaintext), nil
}
