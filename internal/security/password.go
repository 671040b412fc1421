package security

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/flowtrack/flowtrack-api/internal/constants"
)

var (
	// ErrPasswordTooLong is returned for passwords bcrypt would otherwise truncate.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
	ErrPasswordEmpty   = errors.New("password is required")
)

// HashPassword hashes plaintext using bcrypt.
func HashPassword(plain string) (string, error) {
	if plain == "" {
		return "", ErrPasswordEmpty
	}
	if len([]byte(plain)) > constants.MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches hash.
func VerifyPassword(plain, hash string) bool {
	if len([]byte(plain)) > constants.MaxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// dummyHash is compared against when there is no stored hash to check.
var dummyHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("flowtrack-no-such-user"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
})

// DummyVerify spends the same bcrypt work as VerifyPassword and always fails.
func DummyVerify(plain string) bool {
	if len([]byte(plain)) > constants.MaxPasswordBytes {
		return false
	}
	_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(plain))
	return false
}
