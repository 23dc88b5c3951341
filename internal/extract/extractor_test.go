package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/catalog-enrich/internal/model"
)

func claimsByField(claims []model.Claim) map[string]model.Claim {
	m := make(map[string]model.Claim, len(claims))
	for _, c := range claims {
		m[c.Field] = c
	}
	return m
}

func TestExtract_FullTitle(t *testing.T) {
	n := NewNormalizer(DefaultBrandBook())
	claims := n.Extract("HP CF234A LaserJet Pro M106w Toner Cartridge 9.2K pages", "supplier.example")
	require.Len(t, claims, 5)

	byField := claimsByField(claims)
	assert.Equal(t, "HP", byField["brand"].Value)
	assert.Equal(t, "CF234A", byField["model"].Value)
	assert.Equal(t, "toner_cartridge", byField["type"].Value)
	assert.Equal(t, "9200 pages", byField["yield"].Value)

	for _, c := range claims {
		assert.Equal(t, model.SourceAgentExtracted, c.SourceType)
		assert.Equal(t, "supplier.example", c.SourceDomain)
	}
}

func TestExtract_CyrillicTitle(t *testing.T) {
	n := NewNormalizer(DefaultBrandBook())
	claims := n.Extract("Тонер-картридж CF234A черный 300К", "snab.example")

	byField := claimsByField(claims)
	assert.Equal(t, "HP", byField["brand"].Value) // prefix lookup
	assert.Equal(t, "prefix_lookup", byField["brand"].ExtractionMethod)
	assert.Equal(t, "toner_cartridge", byField["type"].Value)
	assert.Equal(t, "black", byField["color"].Value)
	assert.Equal(t, "300000 pages", byField["yield"].Value)
}

func TestExtract_MissingFieldsAreZeroConfidence(t *testing.T) {
	n := NewNormalizer(DefaultBrandBook())
	claims := n.Extract("mystery item", "")
	require.Len(t, claims, 5)

	for _, c := range claims {
		assert.Empty(t, c.Value)
		assert.Zero(t, c.Confidence)
		assert.Equal(t, "none", c.ExtractionMethod)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	n := NewNormalizer(DefaultBrandBook())
	raw := "CE285A CF234A twin pack toner 15K pages"

	a := n.Extract(raw, "supplier.example")
	b := n.Extract(raw, "supplier.example")

	require.Equal(t, len(a), len(b))
	for i := range a {
		// Timestamps differ between runs; everything else must not.
		a[i].ExtractedAt = b[i].ExtractedAt
		assert.Equal(t, a[i], b[i])
	}
}

func TestExtract_AmbiguousModelTaggedAndDiscounted(t *testing.T) {
	n := NewNormalizer(DefaultBrandBook())
	claims := n.Extract("CE285A CF234A twin pack toner", "")

	m := claimsByField(claims)["model"]
	assert.Equal(t, "CE285A", m.Value)
	assert.Contains(t, m.ExtractionMethod, "ambiguous")
	assert.Less(t, m.Confidence, 0.92)
}

func TestCanonicalize_SeparatorVariants(t *testing.T) {
	assert.Equal(t, "TN-2420 black", Canonicalize("TN\u20132420\u00a0 black"))
	assert.Equal(t, "a b", Canonicalize("  a \t b  "))
	assert.Equal(t, "HP CF234A", Canonicalize("\ufeffHP\u00a0CF234A"))
	assert.Equal(t, "9200 pages", Canonicalize("9\u200b200 pages"))
	assert.Equal(t, "A4/Letter (2-pack)", Canonicalize("A4\uff0fLetter \uff082\u2212pack\uff09"))
}
