package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Token regexes shared across tiers. Currency accepts both Brazilian comma
// decimals ("R$ 18,50", "R$ 1.850,00") and dot decimals ("$12.50").
var (
	reCurrency = regexp.MustCompile(`(?i)R?\$\s*(\d{1,3}(?:\.\d{3})*,\d{2}|\d+(?:[.,]\d{1,2})?)`)
	reDistance = regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d+)?)\s*(km|m)\b`)
	reMinutes  = regexp.MustCompile(`(?i)\b(\d+)\s*min(?:s|utos?)?\b`)
	reCompound = regexp.MustCompile(`(?i)\b(\d+)\s*h(?:ora?s?)?\s*(?:e\s*)?(\d+)\s*min`)
	reRating   = regexp.MustCompile(`\b([0-5][.,]\d{1,2})\s*\(\s*\d+\s*\)`)
	reDelta    = regexp.MustCompile(`\+\s*R?\$`)

	// Street-address lines: Brazilian street-type prefixes, or a
	// "name, number" shape.
	reAddressPrefix = regexp.MustCompile(`(?i)^(r\.|rua|av\.|avenida|al\.|alameda|travessa|trav\.|estr\.|estrada|rod\.|rodovia|pra[cç]a|largo)\b`)
	reAddressShape  = regexp.MustCompile(`^[\p{L}][\p{L}\s.]+,\s*\d+`)
)

// parseAmount converts a matched currency group to a float. Mixed separators
// mean dot-thousands with comma decimal.
func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	switch {
	case strings.Contains(s, ".") && strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// parseDistanceKm converts a distance match (value, unit) to kilometers.
func parseDistanceKm(value, unit string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	if strings.EqualFold(unit, "m") {
		v /= 1000
	}
	return v, true
}

// parseDuration extracts minutes from text, preferring the compound
// "2h 15min" form used on long rides.
func parseDuration(text string) (float64, bool) {
	if m := reCompound.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		return float64(h*60 + min), true
	}
	if m := reMinutes.FindStringSubmatch(text); m != nil {
		min, _ := strconv.Atoi(m[1])
		if min > 0 {
			return float64(min), true
		}
	}
	return 0, false
}

// parseRating extracts a passenger rating like "4,93 (274)".
func parseRating(text string) (float64, bool) {
	m := reRating.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil || v <= 0 || v > 5 {
		return 0, false
	}
	return v, true
}

// looksLikeAddress reports whether a line reads as a street address.
func looksLikeAddress(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	return reAddressPrefix.MatchString(line) || reAddressShape.MatchString(line)
}
