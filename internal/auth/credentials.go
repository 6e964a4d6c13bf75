package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/bcrypt"
)

// Credentials is the single configured admin account. Either Password or
// PasswordHash (bcrypt) must be set.
type Credentials struct {
	Email        string
	Password     string
	PasswordHash string
}

// Validate reports whether email and password match the configured admin.
// Emails compare case-insensitively. Plain passwords are compared as
// fixed-length digests in constant time so the comparison does not depend on
// the password length.
func (c Credentials) Validate(email, password string) (bool, error) {
	expected := strings.TrimSpace(c.Email)
	if expected == "" || (c.Password == "" && c.PasswordHash == "") {
		return false, fmt.Errorf("validating credentials: %w", ErrNotConfigured)
	}

	emailMatch := strings.EqualFold(strings.TrimSpace(email), expected)

	var passwordMatch bool
	if c.PasswordHash != "" {
		passwordMatch = bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
	} else {
		got := blake2b.Sum256([]byte(password))
		want := blake2b.Sum256([]byte(c.Password))
		passwordMatch = subtle.ConstantTimeCompare(got[:], want[:]) == 1
	}

	return emailMatch && passwordMatch, nil
}
