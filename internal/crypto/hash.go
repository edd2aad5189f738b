package crypto

import (
	"golang.org/x/crypto/bcrypt"
)

// hashCost is the bcrypt work factor. 12 keeps offline brute force expensive
// while staying under ~300ms per hash on current hardware.
const hashCost = 12

// HashPassword hashes a password using bcrypt with the fixed work factor.
// bcrypt generates and embeds a random salt per hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks whether a password matches the given bcrypt hash.
// bcrypt's comparison is constant time with respect to the hash contents.
func VerifyPassword(password, encodedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
}
