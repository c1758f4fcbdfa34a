// Package normalize cleans raw screen-text fragments before extraction.
//
// The most important job here is the self-echo guard: the assistant's own
// floating card is itself on screen, so the content observer will eventually
// read our overlay back to us. Without the guard that text re-enters the
// pipeline and feeds back forever.
package normalize

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// overlayMarkers are phrases rendered only by our own floating card. Two or
// more distinct markers in one fragment means we are reading ourselves.
var overlayMarkers = []string{
	"farescout",
	"vale a pena?",
	"r$/km",
	"r$/min",
	"análise da oferta",
	"ganho estimado",
}

// noisePhrases are single-line fragments of our overlay and of generic system
// chrome that never belong to an offer card. Matched case-insensitively as
// substrings; the whole line is dropped.
var noisePhrases = []string{
	"farescout",
	"vale a pena",
	"análise da oferta",
	"arraste para mover",
	"toque para fechar",
}

var (
	// Decorative directional glyphs and dingbats that OCR and accessibility
	// trees both surface around card values.
	reGlyphs = regexp.MustCompile(`[\x{2190}-\x{21FF}\x{25A0}-\x{25FF}\x{2600}-\x{27BF}]`)

	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
)

// Normalizer sanitizes raw text fragments. Safe for reuse across snapshots;
// it holds no per-snapshot state.
type Normalizer struct{}

// New returns a Normalizer with the built-in noise lists.
func New() *Normalizer {
	return &Normalizer{}
}

// Clean sanitizes a raw fragment. The second return is false when the
// fragment must be discarded entirely: self-echo, or nothing left after
// stripping. Line breaks are preserved — positional extraction needs them.
func (n *Normalizer) Clean(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}

	lower := strings.ToLower(raw)
	distinct := 0
	for _, marker := range overlayMarkers {
		if strings.Contains(lower, marker) {
			distinct++
		}
	}
	if distinct >= 2 {
		zap.L().Debug("normalize: self-echo discarded", zap.Int("markers", distinct))
		return "", false
	}

	s := reCRLF.ReplaceAllString(raw, "\n")
	s = reGlyphs.ReplaceAllString(s, " ")
	s = reTabs.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if isNoiseLine(line) {
			continue
		}
		line = reMultiSpace.ReplaceAllString(line, " ")
		kept = append(kept, strings.TrimSpace(line))
	}
	s = strings.Join(kept, "\n")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	s = strings.TrimSpace(s)

	if s == "" {
		return "", false
	}
	return s, true
}

func isNoiseLine(line string) bool {
	lower := strings.ToLower(line)
	for _, phrase := range noisePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
