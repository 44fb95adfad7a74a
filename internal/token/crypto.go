package token

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// Cryptor reversibly obfuscates token strings before they cross a trust
// boundary (URL query parameters, persisted refresh-token rows). The payload
// is already a signed JWT; encryption only keeps the raw token out of logs
// and URLs. AES-256-GCM with a random nonce, key derived from the configured
// secret.
type Cryptor struct {
	aead cipher.AEAD
}

// NewCryptor derives a 32 byte key from the configured secret. The derived
// key always satisfies aes.NewCipher, so construction cannot fail.
func NewCryptor(secret string) *Cryptor {
	key := sha256.Sum256([]byte(secret))
	block, _ := aes.NewCipher(key[:])
	aead, _ := cipher.NewGCM(block)
	return &Cryptor{aead: aead}
}

func (c *Cryptor) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (c *Cryptor) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrMalformedCiphertext
	}

	if len(raw) < c.aead.NonceSize() {
		return "", ErrMalformedCiphertext
	}

	nonce, sealed := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrMalformedCiphertext
	}

	return string(plaintext), nil
}
