package extract

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// separatorReplacer collapses the separator and space variants that show up
// in supplier feeds: non-breaking spaces, typographic dashes, fullwidth
// punctuation, zero-width characters.
var separatorReplacer = strings.NewReplacer(
	"\u00a0", " ", // no-break space
	"\u2007", " ", // figure space
	"\u202f", " ", // narrow no-break space
	"\u200b", "", // zero-width space
	"\ufeff", "", // byte order mark
	"\u2013", "-", // en dash
	"\u2014", "-", // em dash
	"\u2212", "-", // minus sign
	"\uff0d", "-", // fullwidth hyphen
	"\uff0f", "/", // fullwidth solidus
	"\uff08", "(", // fullwidth parens
	"\uff09", ")",
)

// Canonicalize normalizes a raw supplier title: NFC unicode form, separator
// variants unified, whitespace collapsed. It is deterministic, so running
// the extractor twice on the same input yields identical claims.
func Canonicalize(raw string) string {
	s := norm.NFC.String(raw)
	s = separatorReplacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
