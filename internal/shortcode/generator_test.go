package shortcode

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateProducesValidCodes(t *testing.T) {
	g := NewGenerator(6, 10)

	t.Run("default length", func(t *testing.T) {
		code, err := g.Generate("https://example.com/article", 0)
		require.NoError(t, err)
		assert.Len(t, code, 6)
		assert.True(t, Validate(code))
	})

	t.Run("explicit lengths", func(t *testing.T) {
		for length := MinLength; length <= MaxLength; length++ {
			code, err := g.Generate("", length)
			require.NoError(t, err)
			assert.Len(t, code, length)
			assert.True(t, Validate(code))
		}
	})

	t.Run("no seed url", func(t *testing.T) {
		code, err := g.Generate("", 0)
		require.NoError(t, err)
		assert.Len(t, code, 6)
		assert.True(t, Validate(code))
	})
}

func TestGenerateUniqueness(t *testing.T) {
	g := NewGenerator(6, 10)

	seen := make(map[string]struct{})
	for i := 0; i < 10000; i++ {
		code, err := g.Generate(fmt.Sprintf("https://example.com/page/%d", i), 0)
		require.NoError(t, err)

		_, dup := seen[code]
		require.False(t, dup, "duplicate code %q at iteration %d", code, i)
		seen[code] = struct{}{}
	}

	stats := g.Stats()
	assert.Equal(t, 10000, stats.TotalGenerated)
}

func TestGenerateSameURLYieldsDistinctCodes(t *testing.T) {
	g := NewGenerator(6, 10)

	first, err := g.Generate("https://example.com", 0)
	require.NoError(t, err)
	second, err := g.Generate("https://example.com", 0)
	require.NoError(t, err)

	// The issued set forces a fresh code even for an identical URL.
	assert.NotEqual(t, first, second)
}

func TestGrowLength(t *testing.T) {
	g := NewGenerator(6, 10)

	// Length grows exactly when half the attempt budget has failed, so the
	// attempt at index maxAttempts/2 already uses the longer code.
	assert.False(t, g.growLength(4, 6))
	assert.True(t, g.growLength(5, 6))
	assert.False(t, g.growLength(6, 6))

	// Never past the maximum code length.
	assert.False(t, g.growLength(5, MaxLength))

	// A single-attempt budget keeps the requested length.
	one := NewGenerator(6, 1)
	assert.False(t, one.growLength(0, 6))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{"valid mixed", "aB3xY9", true},
		{"min length", "aB3x", true},
		{"max length", "aB3xY9Zw", true},
		{"too short", "aB3", false},
		{"too long", "aB3xY9Zw1", false},
		{"empty", "", false},
		{"hyphen", "aB3-Y9", false},
		{"underscore", "aB_xY9", false},
		{"space", "aB xY9", false},
		{"unicode", "aB3xYé", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.code))
		})
	}
}

func TestNewGeneratorClampsBadSettings(t *testing.T) {
	g := NewGenerator(99, 0)

	code, err := g.Generate("", 0)
	require.NoError(t, err)
	assert.Len(t, code, 6)
}

func TestEncodeBase62(t *testing.T) {
	assert.Equal(t, "A", encodeBase62(0))
	assert.Equal(t, "B", encodeBase62(1))
	assert.Equal(t, "BA", encodeBase62(62))
	assert.Equal(t, "9", encodeBase62(61))
}
