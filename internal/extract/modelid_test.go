package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractModel_OEMPartCode(t *testing.T) {
	c, ok := ExtractModel("HP CF234A LaserJet Pro M106w Toner Cartridge")
	require.True(t, ok)
	assert.Equal(t, "CF234A", c.Value)
	assert.Equal(t, "oem_part_code", c.Family)
	assert.False(t, c.Ambiguous)
	assert.InDelta(t, 0.92, c.Confidence, 0.001)
}

func TestExtractModel_SeriesCode(t *testing.T) {
	c, ok := ExtractModel("Brother TN-2420 black toner")
	require.True(t, ok)
	assert.Equal(t, "TN-2420", c.Value)
	assert.Equal(t, "series_code", c.Family)
}

func TestExtractModel_HigherPriorityFamilyWins(t *testing.T) {
	// Both an OEM code and a series code present: OEM family outranks.
	c, ok := ExtractModel("CF234A compatible with TN-2420")
	require.True(t, ok)
	assert.Equal(t, "CF234A", c.Value)
	assert.Equal(t, "oem_part_code", c.Family)
}

func TestExtractModel_EarliestPositionBreaksTies(t *testing.T) {
	c, ok := ExtractModel("CE285A CF234A twin pack")
	require.True(t, ok)
	assert.Equal(t, "CE285A", c.Value)
	assert.True(t, c.Ambiguous)
}

func TestExtractModel_AmbiguityDiscountsConfidence(t *testing.T) {
	single, ok := ExtractModel("HP CF234A toner")
	require.True(t, ok)
	double, ok := ExtractModel("CE285A CF234A twin pack")
	require.True(t, ok)
	assert.Less(t, double.Confidence, single.Confidence)
}

func TestExtractModel_NoMatch(t *testing.T) {
	_, ok := ExtractModel("generic black toner cartridge")
	assert.False(t, ok)
}

func TestExtractModel_Deterministic(t *testing.T) {
	a, okA := ExtractModel("CE285A CF234A twin pack")
	b, okB := ExtractModel("CE285A CF234A twin pack")
	require.True(t, okA)
	require.True(t, okB)
	assert.Equal(t, a, b)
}
