package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinPasswordLength is the minimum staff password length.
	MinPasswordLength = 12

	// maxPasswordBytes is bcrypt's input limit.
	maxPasswordBytes = 72

	// StaffTokenPrefix marks API tokens issued to librarians so they are
	// recognisable in logs and secret scanners.
	StaffTokenPrefix = "lib_"

	tokenBytes = 32
)

var (
	ErrInvalidPassword  = errors.New("invalid password")
	ErrPasswordTooShort = errors.New("password must be at least 12 characters")
	ErrPasswordTooLong  = errors.New("password exceeds maximum length of 72 bytes")
)

// HashPassword creates a bcrypt hash of the password. Costs below bcrypt's
// minimum fall back to bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a password with its hash.
func CheckPassword(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidPassword
	}
	return err
}

// GenerateAPIToken creates a staff API token. The plaintext is shown once;
// only the hash is stored.
func GenerateAPIToken() (plaintext string, hash string, err error) {
	random, err := randomHex(tokenBytes)
	if err != nil {
		return "", "", err
	}
	plaintext = StaffTokenPrefix + random
	return plaintext, HashToken(plaintext), nil
}

// LooksLikeAPIToken reports whether token has the shape of a staff token.
func LooksLikeAPIToken(token string) bool {
	random, ok := strings.CutPrefix(token, StaffTokenPrefix)
	if !ok || len(random) != tokenBytes*2 {
		return false
	}
	_, err := hex.DecodeString(random)
	return err == nil
}

// HashToken returns the SHA-256 hex digest stored for an API token.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// GenerateSessionSecret creates a random 32-byte hex secret for CSRF and
// session signing.
func GenerateSessionSecret() (string, error) {
	return randomHex(32)
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
