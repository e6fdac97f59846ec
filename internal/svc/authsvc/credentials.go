package authsvc

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/mkrupp/campuslink/internal/domain"
)

// HashPassword returns the lowercase hex SHA-256 digest of the raw password bytes.
// The digest is deterministic: the same password always yields the same value.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))

	return hex.EncodeToString(sum[:])
}

// PasswordMatches reports whether password hashes to digest, in constant time.
func PasswordMatches(password, digest string) bool {
	return hmac.Equal([]byte(HashPassword(password)), []byte(digest))
}

// ValidateCredentials performs the caller-side checks done before registration
// or login: neither value may be blank.
func ValidateCredentials(username, password string) error {
	var errs []error

	if strings.TrimSpace(username) == "" {
		errs = append(errs, domain.ErrEmptyUsername)
	}

	if password == "" {
		errs = append(errs, domain.ErrEmptyPassword)
	}

	return errors.Join(errs...)
}
