package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectBrand_ExplicitMention(t *testing.T) {
	br, ok := DetectBrand(DefaultBrandBook(), "HP CF234A toner", "CF234A", "")
	require.True(t, ok)
	assert.Equal(t, "HP", br.Brand)
	assert.Equal(t, "explicit_mention", br.Method)
	assert.InDelta(t, 0.95, br.Confidence, 0.001)
}

func TestDetectBrand_ExplicitBeatsPrefix(t *testing.T) {
	// Title says Brother even though the model prefix maps to Samsung.
	br, ok := DetectBrand(DefaultBrandBook(), "Brother compatible MLT-D111S", "MLT-D111S", "")
	require.True(t, ok)
	assert.Equal(t, "Brother", br.Brand)
	assert.Equal(t, "explicit_mention", br.Method)
}

func TestDetectBrand_PrefixLookup(t *testing.T) {
	br, ok := DetectBrand(DefaultBrandBook(), "Тонер-картридж CF234A 9.2K", "CF234A", "")
	require.True(t, ok)
	assert.Equal(t, "HP", br.Brand)
	assert.Equal(t, "prefix_lookup", br.Method)
	assert.InDelta(t, 0.70, br.Confidence, 0.001)
}

func TestDetectBrand_LongestPrefixWins(t *testing.T) {
	// CLT maps to Samsung; the shorter CL (Canon) must not shadow it.
	br, ok := DetectBrand(DefaultBrandBook(), "Картридж CLT-K404S", "CLT-K404S", "")
	require.True(t, ok)
	assert.Equal(t, "Samsung", br.Brand)
}

func TestDetectBrand_DomainInference(t *testing.T) {
	br, ok := DetectBrand(DefaultBrandBook(), "Совместимый картридж 2500стр", "", "kyocera-supplies.example")
	require.True(t, ok)
	assert.Equal(t, "Kyocera", br.Brand)
	assert.Equal(t, "domain_inference", br.Method)
	assert.InDelta(t, 0.50, br.Confidence, 0.001)
}

func TestDetectBrand_NoMatch(t *testing.T) {
	_, ok := DetectBrand(DefaultBrandBook(), "generic cartridge", "", "parts.example")
	assert.False(t, ok)
}

func TestDetectBrand_WordBoundary(t *testing.T) {
	// "hp" inside another word must not fire.
	_, ok := DetectBrand(DefaultBrandBook(), "graphpaper cartridge", "", "")
	assert.False(t, ok)
}
