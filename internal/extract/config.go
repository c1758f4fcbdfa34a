package extract

// Config holds the extraction tuning knobs. The scale-correction constants
// and per-tier confidence cutoffs are empirically tuned; they ship as
// configuration rather than literals so field adjustments don't need a
// release.
type Config struct {
	// MinPrice is the floor below which a candidate is rejected outright.
	MinPrice float64

	// MaxPlausibleRate (currency units per km) triggers decimal-placement
	// correction when exceeded.
	MaxPlausibleRate float64

	// RateBandMin/RateBandMax bound the plausible corrected rate.
	RateBandMin float64
	RateBandMax float64

	// TypicalRate breaks ties between candidate rescales.
	TypicalRate float64

	// Tier1MinConfidence / Tier2MinConfidence gate each tier's candidate.
	Tier1MinConfidence float64
	Tier2MinConfidence float64

	// ContextScoreFloor rejects a lone ambiguous currency match scoring
	// below it.
	ContextScoreFloor int
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		MinPrice:           2.0,
		MaxPlausibleRate:   60,
		RateBandMin:        0.6,
		RateBandMax:        35,
		TypicalRate:        2.5,
		Tier1MinConfidence: 0.5,
		Tier2MinConfidence: 0.4,
		ContextScoreFloor:  1,
	}
}
