package auth

import "golang.org/x/crypto/bcrypt"

// HashAPIKey hashes a plaintext API key for storage in configuration.
func HashAPIKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	return string(hash), err
}

// VerifyAPIKey compares a presented key against the configured bcrypt hash.
func VerifyAPIKey(hash, key string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key))
}
