package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/farescout/farescout/internal/model"
)

func TestCorrectScaleDroppedDecimal(t *testing.T) {
	// OCR read "R$ 18,50" as 1850 against a 7.2 km ride.
	c := &model.Candidate{Price: 1850, RideDistanceKm: 7.2}
	CorrectScale(c, DefaultConfig())
	assert.InDelta(t, 18.50, c.Price, 1e-9)
}

func TestCorrectScaleByTenWhenHundredLeavesBand(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateBandMin = 2.0

	// 440 over 7.2 km: /100 implies 0.61 per km, below the band floor, so
	// /10 is the only qualifying rescale.
	c := &model.Candidate{Price: 440, RideDistanceKm: 7.2}
	CorrectScale(c, cfg)
	assert.InDelta(t, 44.0, c.Price, 1e-9)
}

func TestCorrectScalePlausibleUntouched(t *testing.T) {
	c := &model.Candidate{Price: 18.50, RideDistanceKm: 7.2}
	CorrectScale(c, DefaultConfig())
	assert.Equal(t, 18.50, c.Price)
}

func TestCorrectScaleUsesPickupWhenNoRideDistance(t *testing.T) {
	c := &model.Candidate{Price: 900, PickupDistanceKm: 3.0}
	CorrectScale(c, DefaultConfig())
	assert.InDelta(t, 9.0, c.Price, 1e-9)
}

func TestCorrectScaleNoReferenceLeavesPrice(t *testing.T) {
	c := &model.Candidate{Price: 1850}
	CorrectScale(c, DefaultConfig())
	assert.Equal(t, 1850.0, c.Price)
}

func TestCorrectScaleNoPlausibleRescale(t *testing.T) {
	// 50000 over 0.1 km: neither /10 nor /100 lands in the band, so the
	// price stays as read.
	c := &model.Candidate{Price: 50000, RideDistanceKm: 0.1}
	CorrectScale(c, DefaultConfig())
	assert.Equal(t, 50000.0, c.Price)
}
