package security

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// LoginCodeLength is the number of decimal digits in a one-time code
const LoginCodeLength = 6

// GenerateLoginCode generates a random fixed-length numeric code from a
// cryptographically strong source. Leading zeros are allowed.
func GenerateLoginCode() (string, error) {
	digits := make([]byte, LoginCodeLength)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}

// HashLoginCode hashes a code for storage; the plain code is never persisted
func HashLoginCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckLoginCode compares a submitted code against a stored hash
func CheckLoginCode(code, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
