package extract

import (
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/farescout/farescout/internal/model"
)

// evidenceLog throttles the missing-evidence diagnostic: a lingering earnings
// screen re-rejects on every refresh and would flood the log.
var evidenceLog = rate.Sometimes{Interval: 5 * time.Second}

// sourceRank orders merge preference: Tier 1 route-pair data beats Tier 1
// labeled nodes beats positional extraction.
func sourceRank(s model.ExtractionSource) int {
	switch s {
	case model.SourceRoutePair:
		return 3
	case model.SourceLabeledNodes:
		return 2
	case model.SourcePositional:
		return 1
	default:
		return 0
	}
}

func tierMinConfidence(s model.ExtractionSource, cfg Config) float64 {
	switch s {
	case model.SourceRoutePair, model.SourceLabeledNodes:
		return cfg.Tier1MinConfidence
	default:
		return cfg.Tier2MinConfidence
	}
}

// Select merges the candidates produced by the attempted tiers into the one
// that will be considered for emission, or nil. The gate order matters:
// minimal evidence is checked on extracted values only, and the last-resort
// duration estimate fills in afterwards — an estimate must never manufacture
// the evidence that justifies it.
func Select(cands []*model.Candidate, cfg Config) *model.Candidate {
	var base *model.Candidate
	for _, c := range cands {
		if c == nil {
			continue
		}
		if base == nil || sourceRank(c.Source) > sourceRank(base.Source) {
			base = c
		}
	}
	if base == nil {
		return nil
	}

	// Cross-check: two tiers agreeing on the price (within 10%) corroborate
	// each other; fill fields the preferred tier missed from the others.
	for _, c := range cands {
		if c == nil || c == base {
			continue
		}
		if c.Price > 0 && base.Price > 0 {
			if math.Abs(c.Price-base.Price)/base.Price <= 0.10 {
				base.Confidence += 0.1
			}
		}
		mergeMissing(base, c)
	}
	if base.Confidence > 1 {
		base.Confidence = 1
	}

	CorrectScale(base, cfg)

	if base.Price < cfg.MinPrice {
		zap.L().Debug("extract: candidate below price floor", zap.Float64("price", base.Price))
		return nil
	}
	if !base.HasMinimalEvidence() {
		evidenceLog.Do(func() {
			zap.L().Debug("extract: candidate lacks minimal evidence",
				zap.Float64("price", base.Price),
				zap.Int("distance_signals", base.DistanceSignals()),
			)
		})
		return nil
	}
	if base.Confidence < tierMinConfidence(base.Source, cfg) {
		zap.L().Debug("extract: candidate below confidence cutoff",
			zap.Float64("confidence", base.Confidence),
			zap.String("source", string(base.Source)),
		)
		return nil
	}

	fillEstimates(base)
	return base
}

func mergeMissing(dst, src *model.Candidate) {
	if dst.Rating == 0 {
		dst.Rating = src.Rating
	}
	if dst.PickupMinutes == 0 {
		dst.PickupMinutes = src.PickupMinutes
	}
	if dst.RideMinutes == 0 {
		dst.RideMinutes = src.RideMinutes
	}
	if dst.PickupAddress == "" {
		dst.PickupAddress = src.PickupAddress
	}
	if dst.DropoffAddress == "" {
		dst.DropoffAddress = src.DropoffAddress
	}
	if dst.PickupDistanceKm == 0 {
		dst.PickupDistanceKm = src.PickupDistanceKm
	}
	if dst.RideDistanceKm == 0 {
		dst.RideDistanceKm = src.RideDistanceKm
	}
}

// urbanMinutesPerKm is the assumed pace for the last-resort duration estimate.
const urbanMinutesPerKm = 2.0

// fillEstimates supplies still-missing durations from the distances already
// proven by the evidence gate. Distances themselves are never estimated.
func fillEstimates(c *model.Candidate) {
	if c.RideMinutes == 0 && c.RideDistanceKm > 0 {
		c.RideMinutes = math.Round(c.RideDistanceKm * urbanMinutesPerKm)
	}
	if c.PickupMinutes == 0 && c.PickupDistanceKm > 0 {
		c.PickupMinutes = math.Round(c.PickupDistanceKm * urbanMinutesPerKm)
	}
}
