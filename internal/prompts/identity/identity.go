// Package identity turns credentials into the opaque session ids that key a
// user's prompt list. The ids are lookup keys, not password hashes: there is
// no salt and no stretching.
package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"
)

// Length is the number of characters in every session id.
const Length = 32

// separator joins username and password before hashing. Browser clients use
// the same layout, so ids stay interchangeable.
const separator = ":"

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// MinPasswordLength applies to new accounts only; existing ids still log in.
const MinPasswordLength = 4

var (
	ErrEmptyUsername   = errors.New("username is required")
	ErrInvalidUsername = errors.New("username must not contain ':'")
	ErrEmptyPassword   = errors.New("password is required")
	ErrShortPassword   = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
)

// ValidateUsername rejects names that would make the hashed concatenation
// ambiguous.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return ErrEmptyUsername
	}
	if strings.Contains(username, separator) {
		return ErrInvalidUsername
	}
	return nil
}

// ValidateCredentials checks both halves of a login pair. A password of only
// whitespace counts as empty.
func ValidateCredentials(username, password string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if strings.TrimSpace(password) == "" {
		return ErrEmptyPassword
	}
	return nil
}

// ValidateSignup adds the length rule for new accounts on top of
// ValidateCredentials. Length counts characters, not bytes.
func ValidateSignup(username, password string) error {
	if err := ValidateCredentials(username, password); err != nil {
		return err
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrShortPassword
	}
	return nil
}

// Derive returns the session id for a username/password pair: the first 32
// lowercase hex characters of SHA-256(username ":" password).
func Derive(username, password string) string {
	sum := sha256.Sum256([]byte(username + separator + password))
	return hex.EncodeToString(sum[:])[:Length]
}

// GenerateRandom returns an alphanumeric session id for sessions that are not
// backed by credentials.
func GenerateRandom() (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, Length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b), nil
}

// Valid reports whether sessionID can address a list. Ids are opaque, so only
// emptiness is checked; legacy ids of other lengths keep working.
func Valid(sessionID string) bool {
	return strings.TrimSpace(sessionID) != ""
}
