// Package classify infers which vendor layout produced a text fragment.
package classify

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/farescout/farescout/internal/model"
	"github.com/farescout/farescout/internal/vendors"
)

// foldTransformer strips combining marks so that OCR output with mangled
// accents ("dinamica" for "dinâmica") still matches profile markers.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Classifier detects the source vendor from layout markers alone. Text
// captured optically carries no window identity, so this is phrase matching,
// not process matching.
type Classifier struct {
	reg *vendors.Registry
}

func New(reg *vendors.Registry) *Classifier {
	return &Classifier{reg: reg}
}

// Classify returns the vendor whose layout markers match the sanitized text,
// or VendorUnknown. Markers are tried against both the raw text and a
// diacritic-folded copy to tolerate recognition noise.
func (c *Classifier) Classify(text string) model.Vendor {
	if v := c.reg.Detect(text); v != model.VendorUnknown {
		return v
	}
	return c.reg.Detect(Fold(text))
}

// Fold lowercases and strips diacritics. Shared with fingerprinting, where
// the same address must hash identically whether it came from the
// accessibility tree or from OCR.
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
