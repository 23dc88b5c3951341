package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYield_LatinMagnitude(t *testing.T) {
	y, ok := ParseYield("HP CF234A Toner 9.2K pages")
	require.True(t, ok)
	assert.Equal(t, 9200, y.Pages)
	assert.Equal(t, "9200 pages", y.String())
}

func TestParseYield_CyrillicMagnitude(t *testing.T) {
	y, ok := ParseYield("Картридж 300К")
	require.True(t, ok)
	assert.Equal(t, 300000, y.Pages)
}

func TestParseYield_ExplicitUnitNoMagnitude(t *testing.T) {
	y, ok := ParseYield("Cartridge 2500 pages black")
	require.True(t, ok)
	assert.Equal(t, 2500, y.Pages)
	assert.Equal(t, "pages", y.Unit)
}

func TestParseYield_CyrillicUnit(t *testing.T) {
	y, ok := ParseYield("Тонер-картридж 2500стр")
	require.True(t, ok)
	assert.Equal(t, 2500, y.Pages)
	assert.Equal(t, "pages", y.Unit)
}

func TestParseYield_DecimalComma(t *testing.T) {
	y, ok := ParseYield("Тонер 9,2К")
	require.True(t, ok)
	assert.Equal(t, 9200, y.Pages)
}

func TestParseYield_PlainMagnitude(t *testing.T) {
	y, ok := ParseYield("Toner 15K")
	require.True(t, ok)
	assert.Equal(t, 15000, y.Pages)
}

func TestParseYield_BareNumberIsNotYield(t *testing.T) {
	// A model number or count without magnitude/unit must not parse.
	_, ok := ParseYield("Brother TN-2420 black")
	assert.False(t, ok)

	_, ok = ParseYield("box of 12")
	assert.False(t, ok)
}

func TestParseYield_ModelCodeDigitsIgnored(t *testing.T) {
	// The 234 in CF234A and 106 in M106w must not read as yields.
	y, ok := ParseYield("HP CF234A LaserJet Pro M106w Toner Cartridge 9.2K pages")
	require.True(t, ok)
	assert.Equal(t, 9200, y.Pages)
}

func TestParseYield_MegaMagnitude(t *testing.T) {
	y, ok := ParseYield("Industrial ribbon 1.2M pages")
	require.True(t, ok)
	assert.Equal(t, 1200000, y.Pages)
}
