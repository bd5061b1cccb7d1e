package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(8)
	require.NoError(t, err)
	assert.Len(t, code, 16)
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-F]+$`), code)
}

func TestNewOrderID(t *testing.T) {
	id, err := NewOrderID()
	require.NoError(t, err)
	assert.Len(t, id, 12)
	assert.Regexp(t, regexp.MustCompile(`^WL[0-9A-F]{10}$`), id)

	other, err := NewOrderID()
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func TestNewAccessToken(t *testing.T) {
	token, err := NewAccessToken()
	require.NoError(t, err)
	assert.Len(t, token, 32)
}
