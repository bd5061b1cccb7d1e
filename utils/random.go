package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// GenerateCode returns 2n uppercase hex characters from n random bytes.
func GenerateCode(n int) (string, error) {
	// Make a slice of nBytes random bytes.
	byt := make([]byte, n)

	// Read into the slice.
	if _, err := rand.Read(byt); err != nil {
		return "", err
	}

	// Return the hexadecimal string.
	return strings.ToUpper(hex.EncodeToString(byt)), nil
}

// NewOrderID builds a gateway order reference: a short fixed prefix plus
// ten hex characters.
func NewOrderID() (string, error) {
	code, err := GenerateCode(5)
	if err != nil {
		return "", err
	}
	return "WL" + code, nil
}

// NewAccessToken returns the 32-character capability secret attached to
// gift and meal cards.
func NewAccessToken() (string, error) {
	return GenerateCode(16)
}
