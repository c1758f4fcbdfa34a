package extract

import (
	"math"

	"go.uber.org/zap"

	"github.com/farescout/farescout/internal/model"
)

// CorrectScale fixes decimal-placement misreads. OCR routinely drops the
// decimal separator, turning "18,50" into 1850. When the implied rate per km
// exceeds the plausible maximum, the price is divided by 10 and 100; whichever
// rescale lands inside the plausible band and closest to the typical rate
// wins. If neither qualifies the price is left alone — a wrong guess is worse
// than a flagged outlier.
func CorrectScale(c *model.Candidate, cfg Config) {
	ref := c.RideDistanceKm
	if ref <= 0 {
		ref = c.PickupDistanceKm
	}
	if ref <= 0 || c.Price <= 0 {
		return
	}

	rate := c.Price / ref
	if rate <= cfg.MaxPlausibleRate {
		return
	}

	best := 0.0
	bestDiff := math.MaxFloat64
	for _, div := range []float64{10, 100} {
		p := c.Price / div
		r := p / ref
		if r < cfg.RateBandMin || r > cfg.RateBandMax {
			continue
		}
		if diff := math.Abs(r - cfg.TypicalRate); diff < bestDiff {
			best, bestDiff = p, diff
		}
	}
	if best > 0 {
		zap.L().Debug("extract: price rescaled",
			zap.Float64("original", c.Price),
			zap.Float64("corrected", best),
			zap.Float64("reference_km", ref),
		)
		c.Price = best
	}
}
