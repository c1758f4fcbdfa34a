package extract

import (
	"strings"

	"go.uber.org/zap"

	"github.com/farescout/farescout/internal/model"
	"github.com/farescout/farescout/internal/vendors"
)

// priceMatch is one currency amount found in the flat text, with enough
// position information to attribute surrounding tokens.
type priceMatch struct {
	value   float64
	line    int // line index in the card
	col     int // match start within the line
	score   int
	perUnit bool // trailing "average per km" row, never the ride price
}

// Context-scoring keyword sets. Action and route words near an amount are
// strong evidence it is the offer price; a "+R$" delta marker is the surge
// bonus attached to the real price.
var (
	actionWords  = []string{"aceitar", "accept", "recusar", "decline"}
	contextWords = []string{"embarque", "pickup", "coleta", "passageiro", "passenger", "destino", "dropoff", "corrida", "viagem"}
)

// Tier2 extracts a candidate from flat sanitized text using token positions.
// prof may be the zero Profile when the vendor is unknown. Returns nil when
// no plausible price is found.
func Tier2(text string, v model.Vendor, prof vendors.Profile, cfg Config) *model.Candidate {
	lines := strings.Split(text, "\n")
	matches := findPriceMatches(lines, prof)
	if len(matches) == 0 {
		return nil
	}

	chosen := choosePrice(matches, lines, v != model.VendorUnknown, cfg)
	if chosen == nil {
		zap.L().Debug("extract: tier 2 rejected ambiguous price",
			zap.Int("matches", len(matches)),
		)
		return nil
	}

	c := &model.Candidate{
		Vendor:     v,
		Price:      chosen.value,
		Source:     model.SourcePositional,
		Confidence: 0.3,
	}

	attributeTokens(c, lines, chosen)

	var addrs []string
	for _, line := range lines {
		if looksLikeAddress(line) && len(addrs) < 2 {
			addrs = append(addrs, strings.TrimSpace(line))
		}
	}
	if len(addrs) >= 1 {
		c.PickupAddress = addrs[0]
		c.Confidence += 0.1
	}
	if len(addrs) >= 2 {
		c.DropoffAddress = addrs[1]
		c.Confidence += 0.1
	}

	if r, ok := parseRating(text); ok {
		c.Rating = r
		c.Confidence += 0.05
	}
	if c.Confidence > 1 {
		c.Confidence = 1
	}

	zap.L().Debug("extract: tier 2 candidate",
		zap.Float64("price", c.Price),
		zap.Float64("confidence", c.Confidence),
	)
	return c
}

// findPriceMatches locates all currency amounts, flagging per-unit average
// rows so they can be excluded from selection.
func findPriceMatches(lines []string, prof vendors.Profile) []priceMatch {
	var out []priceMatch
	for i, line := range lines {
		locs := reCurrency.FindAllStringSubmatchIndex(line, -1)
		for _, loc := range locs {
			raw := line[loc[2]:loc[3]]
			value, ok := parseAmount(raw)
			if !ok {
				continue
			}
			out = append(out, priceMatch{
				value:   value,
				line:    i,
				col:     loc[0],
				perUnit: isPerUnitRow(line, prof),
			})
		}
	}
	return out
}

func isPerUnitRow(line string, prof vendors.Profile) bool {
	lower := strings.ToLower(line)
	suffixes := prof.PerUnitSuffixes
	if len(suffixes) == 0 {
		suffixes = []string{"/km", "por km"}
	}
	for _, s := range suffixes {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// choosePrice scores each match by surrounding context and position, and
// picks the best. A single match with a score below the floor is rejected:
// one unsupported amount on screen is more likely an earnings figure than
// an offer.
func choosePrice(matches []priceMatch, lines []string, vendorKnown bool, cfg Config) *priceMatch {
	usable := matches[:0]
	for _, m := range matches {
		if !m.perUnit {
			usable = append(usable, m)
		}
	}
	if len(usable) == 0 {
		return nil
	}

	lineCount := len(lines)
	for i := range usable {
		usable[i].score = contextScore(lines, usable[i])
		// The ride price sits in the middle third of a recognized card's
		// line sequence; headers and totals sit at the edges.
		if vendorKnown && lineCount >= 3 {
			lo, hi := lineCount/3, 2*lineCount/3
			if usable[i].line >= lo && usable[i].line <= hi {
				usable[i].score += 2
			}
		}
	}

	best := &usable[0]
	for i := range usable[1:] {
		if usable[i+1].score > best.score {
			best = &usable[i+1]
		}
	}

	if len(usable) == 1 && best.score < cfg.ContextScoreFloor {
		return nil
	}
	return best
}

// scoredLines is how far around the match line the context scorer looks.
const scoredLines = 2

// contextScore scores a currency match by its surroundings: action words
// (accept/decline buttons), route words (pickup/dropoff/passenger), and a
// "+R$" surge delta marker all indicate the offer price rather than an
// earnings total.
func contextScore(lines []string, m priceMatch) int {
	lo := m.line - scoredLines
	if lo < 0 {
		lo = 0
	}
	hi := m.line + scoredLines
	if hi > len(lines)-1 {
		hi = len(lines) - 1
	}
	ctx := strings.ToLower(strings.Join(lines[lo:hi+1], "\n"))

	score := 0
	for _, w := range actionWords {
		if strings.Contains(ctx, w) {
			score += 2
			break
		}
	}
	for _, w := range contextWords {
		if strings.Contains(ctx, w) {
			score++
		}
	}
	if reDelta.MatchString(ctx) {
		score += 2
	}
	return score
}

// legRow is one distance/time row of the card ("3 min (1.1 km)").
type legRow struct {
	km  float64
	min float64
}

// attributeTokens assigns distance and time rows to legs. Rows before the
// chosen price belong to the pickup leg and rows after to the ride leg; when
// every row sits on one side of the price (both supported layouts place the
// price above or below the whole route block), row order decides — cards list
// the pickup leg before the ride leg.
func attributeTokens(c *model.Candidate, lines []string, price *priceMatch) {
	var before, after []legRow
	for i, line := range lines {
		row := legRow{}
		if loc := reDistance.FindStringSubmatchIndex(line); loc != nil {
			if km, ok := parseDistanceKm(line[loc[2]:loc[3]], line[loc[4]:loc[5]]); ok {
				row.km = km
			}
		}
		if min, ok := parseDuration(line); ok {
			row.min = min
		}
		if row.km == 0 && row.min == 0 {
			continue
		}
		if i < price.line {
			before = append(before, row)
		} else if i > price.line {
			after = append(after, row)
		}
	}

	var pickup, ride *legRow
	switch {
	case len(before) > 0 && len(after) > 0:
		pickup, ride = &before[0], &after[0]
	case len(after) >= 2:
		pickup, ride = &after[0], &after[1]
	case len(before) >= 2:
		pickup, ride = &before[0], &before[1]
	case len(after) == 1:
		ride = &after[0]
	case len(before) == 1:
		pickup = &before[0]
	}

	if pickup != nil {
		if pickup.km > 0 {
			c.PickupDistanceKm = pickup.km
			c.Confidence += 0.1
		}
		if pickup.min > 0 {
			c.PickupMinutes = pickup.min
			c.Confidence += 0.1
		}
	}
	if ride != nil {
		if ride.km > 0 {
			c.RideDistanceKm = ride.km
			c.Confidence += 0.1
		}
		if ride.min > 0 {
			c.RideMinutes = ride.min
			c.Confidence += 0.1
		}
	}
}
