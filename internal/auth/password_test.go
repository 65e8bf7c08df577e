package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		cost     int
		wantErr  error
	}{
		{name: "valid password", password: "circulation-desk-1", cost: 4},
		{name: "too short", password: "card123", cost: 4, wantErr: ErrPasswordTooShort},
		{name: "exactly minimum length", password: strings.Repeat("x", MinPasswordLength), cost: 4},
		{name: "over bcrypt limit", password: strings.Repeat("a", 73), cost: 4, wantErr: ErrPasswordTooLong},
		{name: "at bcrypt limit", password: strings.Repeat("a", 72), cost: 4},
		{name: "zero cost uses default", password: "circulation-desk-1", cost: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password, tt.cost)
			if err != tt.wantErr {
				t.Fatalf("HashPassword() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			cost, err := bcrypt.Cost([]byte(hash))
			if err != nil {
				t.Fatalf("hash is not bcrypt: %v", err)
			}
			wantCost := tt.cost
			if wantCost < bcrypt.MinCost {
				wantCost = bcrypt.DefaultCost
			}
			if cost != wantCost {
				t.Errorf("bcrypt cost = %d, want %d", cost, wantCost)
			}
		})
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("front-desk-password", 4)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	if err := CheckPassword("front-desk-password", hash); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	for _, wrong := range []string{"front-desk-passw0rd", ""} {
		if err := CheckPassword(wrong, hash); err != ErrInvalidPassword {
			t.Errorf("CheckPassword(%q) error = %v, want ErrInvalidPassword", wrong, err)
		}
	}
	if err := CheckPassword("front-desk-password", "not-a-hash"); err == nil || err == ErrInvalidPassword {
		t.Errorf("malformed hash should be a distinct error, got %v", err)
	}
}

func TestGenerateAPIToken(t *testing.T) {
	plaintext, hash, err := GenerateAPIToken()
	if err != nil {
		t.Fatalf("GenerateAPIToken() error = %v", err)
	}

	if !strings.HasPrefix(plaintext, StaffTokenPrefix) {
		t.Errorf("token %q lacks prefix %q", plaintext, StaffTokenPrefix)
	}
	if !LooksLikeAPIToken(plaintext) {
		t.Errorf("generated token %q does not look like a token", plaintext)
	}
	if len(hash) != 64 || HashToken(plaintext) != hash {
		t.Errorf("hash %q does not match HashToken(plaintext)", hash)
	}

	plaintext2, _, err := GenerateAPIToken()
	if err != nil {
		t.Fatalf("Second GenerateAPIToken() error = %v", err)
	}
	if plaintext == plaintext2 {
		t.Error("Generated tokens should be unique")
	}
}

func TestLooksLikeAPIToken(t *testing.T) {
	valid := StaffTokenPrefix + strings.Repeat("ab", 32)
	tests := map[string]bool{
		valid:                    true,
		strings.Repeat("ab", 32): false,
		StaffTokenPrefix + "abc": false,
		StaffTokenPrefix + strings.Repeat("zz", 32): false,
		"": false,
	}
	for token, want := range tests {
		if got := LooksLikeAPIToken(token); got != want {
			t.Errorf("LooksLikeAPIToken(%q) = %v, want %v", token, got, want)
		}
	}
}

func TestGenerateSessionSecret(t *testing.T) {
	secret, err := GenerateSessionSecret()
	if err != nil {
		t.Fatalf("GenerateSessionSecret() error = %v", err)
	}
	if len(secret) != 64 {
		t.Errorf("Secret length = %d, want 64", len(secret))
	}

	secret2, err := GenerateSessionSecret()
	if err != nil {
		t.Fatalf("Second GenerateSessionSecret() error = %v", err)
	}
	if secret == secret2 {
		t.Error("Generated secrets should be unique")
	}
}
