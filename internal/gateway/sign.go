package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hmac256 is a function to generate HMAC256 hash.
func Hmac256(body, key []byte) string {
	hash := hmac.New(sha256.New, key)
	hash.Write(body)
	return hex.EncodeToString(hash.Sum(nil))
}

// SignFields joins the ordered field values with "|" and signs the result.
// The gateway re-derives the hash from the same order, so the caller's
// slice must match the flow's registered field order exactly.
func SignFields(fields []string, key string) string {
	return Hmac256([]byte(strings.Join(fields, "|")), []byte(key))
}

// VerifyHash recomputes the signature over the given fields and compares
// it to the received one in constant time.
func VerifyHash(fields []string, key, received string) bool {
	expected := SignFields(fields, key)
	return hmac.Equal([]byte(received), []byte(expected))
}

// CompareStaffPIN checks a plaintext PIN against its stored bcrypt hash.
func CompareStaffPIN(hash, pin string) bool {
	if hash == "" || pin == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}

// HashStaffPIN produces the bcrypt hash stored in configuration.
func HashStaffPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
