package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickReference_BaseFree(t *testing.T) {
	ref, err := pickReference("jon-05-09", func(string) (bool, error) {
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "jon-05-09", ref)
}

func TestPickReference_CollisionGetsCheckedSuffix(t *testing.T) {
	const base = "jon-05-09"
	var probed []string
	ref, err := pickReference(base, func(candidate string) (bool, error) {
		probed = append(probed, candidate)
		return candidate != base, nil
	})
	require.NoError(t, err)

	// The taken base was probed first, then the winning candidate.
	require.Equal(t, []string{base, ref}, probed)
	assert.NotEqual(t, base, ref)
	assert.True(t, strings.HasPrefix(ref, base+"-"))
	suffix := strings.TrimPrefix(ref, base+"-")
	assert.Len(t, suffix, 4)
	for _, r := range suffix {
		assert.Contains(t, referenceSuffixAlphabet, string(r))
	}
}

func TestPickReference_DistinctSuffixesForRepeatedCollisions(t *testing.T) {
	const base = "info-24-12"
	taken := map[string]bool{base: true}
	for i := 0; i < 10; i++ {
		ref, err := pickReference(base, func(candidate string) (bool, error) {
			return !taken[candidate], nil
		})
		require.NoError(t, err)
		assert.False(t, taken[ref], "candidate %q was already taken", ref)
		taken[ref] = true
	}
}

func TestPickReference_FallbackAfterExhaustedRetries(t *testing.T) {
	probes := 0
	ref, err := pickReference("jon-05-09", func(string) (bool, error) {
		probes++
		return false, nil
	})
	require.NoError(t, err)

	// Base plus five suffixed candidates, then the random fallback goes
	// out unprobed.
	assert.Equal(t, 6, probes)
	assert.True(t, strings.HasPrefix(ref, "bk-"))
	assert.Len(t, ref, len("bk-")+12)
}

func TestPickReference_ProbeErrorSurfaces(t *testing.T) {
	boom := fmt.Errorf("store unavailable")
	_, err := pickReference("jon-05-09", func(string) (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
}
