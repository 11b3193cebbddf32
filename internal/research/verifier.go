package research

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidPasscode is returned when a passcode does not match.
var ErrInvalidPasscode = errors.New("invalid passcode")

// Verifier checks a researcher passcode.
type Verifier interface {
	Verify(passcode string) error
}

// BcryptVerifier verifies passcodes against a single bcrypt hash.
type BcryptVerifier struct {
	hash []byte
}

// NewBcryptVerifier creates a verifier for hash, rejecting values that are
// not bcrypt hashes.
func NewBcryptVerifier(hash string) (*BcryptVerifier, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("parse passcode hash: %w", err)
	}
	return &BcryptVerifier{hash: []byte(hash)}, nil
}

func (v *BcryptVerifier) Verify(passcode string) error {
	if passcode == "" {
		return ErrInvalidPasscode
	}
	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(passcode)); err != nil {
		return ErrInvalidPasscode
	}
	return nil
}

// HashPasscode produces a bcrypt hash suitable for RESEARCH_PASSCODE_HASH.
func HashPasscode(passcode string) (string, error) {
	if passcode == "" {
		return "", errors.New("passcode must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash passcode: %w", err)
	}
	return string(hash), nil
}
