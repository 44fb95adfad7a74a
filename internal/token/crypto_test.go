package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCryptorRoundTrip(t *testing.T) {
	cryptor := NewCryptor("secret-key")

	encrypted, err := cryptor.Encrypt("Bearer some.jwt.token")
	assert.NoError(t, err)
	assert.NotEqual(t, "Bearer some.jwt.token", encrypted)

	decrypted, err := cryptor.Decrypt(encrypted)
	assert.NoError(t, err)
	assert.Equal(t, "Bearer some.jwt.token", decrypted)
}

func TestCryptorProducesDistinctCiphertexts(t *testing.T) {
	cryptor := NewCryptor("secret-key")

	first, err := cryptor.Encrypt("same plaintext")
	assert.NoError(t, err)
	second, err := cryptor.Encrypt("same plaintext")
	assert.NoError(t, err)

	assert.NotEqual(t, first, second, "nonce must randomize ciphertexts")
}

func TestCryptorRejectsMalformedCiphertext(t *testing.T) {
	cryptor := NewCryptor("secret-key")

	cases := []string{
		"",
		"not base64 !!!",
		"dG9vc2hvcnQ",
	}
	for _, input := range cases {
		_, err := cryptor.Decrypt(input)
		assert.ErrorIs(t, err, ErrMalformedCiphertext, "input %q", input)
	}
}

func TestCryptorRejectsTamperedCiphertext(t *testing.T) {
	cryptor := NewCryptor("secret-key")

	encrypted, err := cryptor.Encrypt("payload")
	assert.NoError(t, err)

	tampered := []byte(encrypted)
	tampered[len(tampered)-1] ^= 1
	_, err = cryptor.Decrypt(string(tampered))
	assert.ErrorIs(t, err, ErrMalformedCiphertext)
}

func TestCryptorWrongKey(t *testing.T) {
	encrypted, err := NewCryptor("key-one").Encrypt("payload")
	assert.NoError(t, err)

	_, err = NewCryptor("key-two").Decrypt(encrypted)
	assert.ErrorIs(t, err, ErrMalformedCiphertext)
}
