package core

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// legacyPasswordPrefix marks the placeholder secrets shipped with the sample directory.
const legacyPasswordPrefix = "hashed_password_"

// PasswordVerifier checks a plaintext password against a stored secret.
type PasswordVerifier interface {
	Verify(plaintext, stored string) bool
}

// BcryptVerifier compares against bcrypt hashes.
type BcryptVerifier struct{}

func (BcryptVerifier) Verify(plaintext, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plaintext)) == nil
}

// LegacyPlaceholderVerifier accepts "hashed_password_<plaintext>" values.
// It offers no protection at all and exists only so the sample directory loads in development.
type LegacyPlaceholderVerifier struct{}

func (LegacyPlaceholderVerifier) Verify(plaintext, stored string) bool {
	if !strings.HasPrefix(stored, legacyPasswordPrefix) {
		return false
	}
	return plaintext == strings.TrimPrefix(stored, legacyPasswordPrefix)
}

// SchemeVerifier routes bcrypt hashes to bcrypt and everything else to the
// legacy verifier, which is consulted only when AllowLegacy is set.
type SchemeVerifier struct {
	AllowLegacy bool
}

func NewPasswordVerifier(cfg Config) *SchemeVerifier {
	return &SchemeVerifier{AllowLegacy: cfg.AllowLegacyPasswords}
}

func (v *SchemeVerifier) Verify(plaintext, stored string) bool {
	if isBcryptHash(stored) {
		return BcryptVerifier{}.Verify(plaintext, stored)
	}
	if v.AllowLegacy {
		return LegacyPlaceholderVerifier{}.Verify(plaintext, stored)
	}
	return false
}

func isBcryptHash(s string) bool {
	for _, p := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// HashPassword returns a bcrypt hash suitable for the teacher directory.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
