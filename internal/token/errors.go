package token

import (
	"errors"
)

// ErrMalformedCiphertext reports ciphertext that could not be decoded or
// authenticated at all, as opposed to a well-formed but untrusted token.
var ErrMalformedCiphertext = errors.New("malformed ciphertext")

// InvalidTokenError covers every failure the token subsystem surfaces to
// callers: malformed, wrong kind, expired, revoked or mismatched tokens.
type InvalidTokenError struct {
	Reason string
}

func (e *InvalidTokenError) Error() string {
	return e.Reason
}

func invalid(reason string) error {
	return &InvalidTokenError{Reason: reason}
}

// IsInvalidToken reports whether err is an InvalidTokenError.
func IsInvalidToken(err error) bool {
	var ite *InvalidTokenError
	return errors.As(err, &ite)
}
