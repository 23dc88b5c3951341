// Package extract turns raw supplier product titles into candidate field
// claims with per-claim confidence and method tags.
package extract

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/catalog-enrich/internal/model"
)

// Fields the normalizer emits claims for, in emission order.
var claimFields = []string{"brand", "model", "type", "color", "yield"}

// productTypes maps a lower-cased keyword to the canonical product type.
// Includes the Russian supplier vocabulary the feeds actually contain.
var productTypes = []struct{ keyword, value string }{
	{"toner cartridge", "toner_cartridge"},
	{"тонер-картридж", "toner_cartridge"},
	{"ink cartridge", "ink_cartridge"},
	{"струйный картридж", "ink_cartridge"},
	{"drum unit", "drum_unit"},
	{"фотобарабан", "drum_unit"},
	{"драм-картридж", "drum_unit"},
	{"ribbon", "ribbon"},
	{"toner", "toner_cartridge"},
	{"картридж", "cartridge"},
	{"cartridge", "cartridge"},
}

// colors maps keywords (Latin and Cyrillic) to canonical color names.
var colors = []struct{ keyword, value string }{
	{"black", "black"},
	{"черный", "black"},
	{"чёрный", "black"},
	{"cyan", "cyan"},
	{"голубой", "cyan"},
	{"magenta", "magenta"},
	{"пурпурный", "magenta"},
	{"yellow", "yellow"},
	{"желтый", "yellow"},
	{"жёлтый", "yellow"},
	{"tri-color", "tri_color"},
	{"color", "color"},
	{"цветной", "color"},
}

const confKeywordMatch = 0.85

// Normalizer extracts candidate claims from raw titles. It holds only
// immutable lookup tables and is safe for concurrent use.
type Normalizer struct {
	book BrandBook
}

// NewNormalizer builds a Normalizer around the given brand book.
func NewNormalizer(book BrandBook) *Normalizer {
	return &Normalizer{book: book}
}

// Extract produces one candidate claim per field from a raw title. A field
// with no successful extraction yields an empty-value claim with confidence
// zero — downstream treats that as a missing field, never as an error. The
// result is deterministic for a given input and normalizer.
func (n *Normalizer) Extract(raw, sourceDomain string) []model.Claim {
	text := Canonicalize(raw)
	now := time.Now().UTC()

	mk := func(field, value, method string, conf float64) model.Claim {
		return model.Claim{
			Field:            field,
			Value:            value,
			SourceDomain:     sourceDomain,
			SourceType:       model.SourceAgentExtracted,
			Confidence:       conf,
			ExtractedAt:      now,
			ExtractionMethod: method,
		}
	}

	claims := make([]model.Claim, 0, len(claimFields))

	modelCand, modelOK := ExtractModel(text)

	// brand
	if br, ok := DetectBrand(n.book, text, modelCand.Value, sourceDomain); ok {
		claims = append(claims, mk("brand", br.Brand, br.Method, br.Confidence))
	} else {
		claims = append(claims, mk("brand", "", "none", 0))
	}

	// model
	if modelOK {
		method := "pattern:" + modelCand.Family
		if modelCand.Ambiguous {
			method += ":ambiguous"
		}
		claims = append(claims, mk("model", modelCand.Value, method, modelCand.Confidence))
	} else {
		claims = append(claims, mk("model", "", "none", 0))
	}

	// type
	if v, ok := matchKeyword(text, productTypes); ok {
		claims = append(claims, mk("type", v, "keyword", confKeywordMatch))
	} else {
		claims = append(claims, mk("type", "", "none", 0))
	}

	// color
	if v, ok := matchKeyword(text, colors); ok {
		claims = append(claims, mk("color", v, "keyword", confKeywordMatch))
	} else {
		claims = append(claims, mk("color", "", "none", 0))
	}

	// yield
	if y, ok := ParseYield(text); ok {
		claims = append(claims, mk("yield", y.String(), "magnitude_parse", 0.80))
	} else {
		claims = append(claims, mk("yield", "", "none", 0))
	}

	zap.L().Debug("extract: title normalized",
		zap.String("input_hash", model.HashInput(raw)),
		zap.Int("claims", len(claims)),
	)

	return claims
}

// matchKeyword returns the first table entry whose keyword occurs in the
// lower-cased text. Tables are ordered most-specific first.
func matchKeyword(text string, table []struct{ keyword, value string }) (string, bool) {
	lower := strings.ToLower(text)
	for _, e := range table {
		if strings.Contains(lower, e.keyword) {
			return e.value, true
		}
	}
	return "", false
}
