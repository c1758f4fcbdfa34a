package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farescout/farescout/internal/model"
)

func TestSelectPrefersStructuredTier(t *testing.T) {
	tier1 := &model.Candidate{
		Vendor:           model.Vendor99,
		Price:            18.50,
		PickupDistanceKm: 1.1,
		RideDistanceKm:   5.2,
		Confidence:       0.6,
		Source:           model.SourceLabeledNodes,
	}
	tier2 := &model.Candidate{
		Vendor:         model.Vendor99,
		Price:          18.60,
		RideDistanceKm: 5.2,
		RideMinutes:    12,
		Confidence:     0.5,
		Source:         model.SourcePositional,
	}

	got := Select([]*model.Candidate{tier1, tier2}, DefaultConfig())
	require.NotNil(t, got)
	assert.Equal(t, model.SourceLabeledNodes, got.Source)
	assert.Equal(t, 18.50, got.Price)
	assert.Equal(t, 12.0, got.RideMinutes, "missing field filled from the other tier")
	assert.InDelta(t, 0.7, got.Confidence, 1e-9, "agreeing prices corroborate")
}

func TestSelectRejectsBelowPriceFloor(t *testing.T) {
	c := &model.Candidate{
		Vendor:           model.Vendor99,
		Price:            1.50,
		PickupDistanceKm: 1.0,
		RideDistanceKm:   3.0,
		Confidence:       0.9,
		Source:           model.SourcePositional,
	}
	assert.Nil(t, Select([]*model.Candidate{c}, DefaultConfig()))
}

func TestSelectRequiresMinimalEvidence(t *testing.T) {
	// A price with a single distance signal reads like UI chrome, not an
	// offer card.
	c := &model.Candidate{
		Vendor:         model.Vendor99,
		Price:          18.50,
		RideDistanceKm: 5.2,
		Confidence:     0.9,
		Source:         model.SourcePositional,
	}
	assert.Nil(t, Select([]*model.Candidate{c}, DefaultConfig()))
}

func TestSelectRejectsLowConfidence(t *testing.T) {
	c := &model.Candidate{
		Vendor:           model.Vendor99,
		Price:            18.50,
		PickupDistanceKm: 1.1,
		RideDistanceKm:   5.2,
		Confidence:       0.3,
		Source:           model.SourcePositional,
	}
	assert.Nil(t, Select([]*model.Candidate{c}, DefaultConfig()))
}

func TestSelectEstimatesDurationsAfterGate(t *testing.T) {
	c := &model.Candidate{
		Vendor:           model.Vendor99,
		Price:            18.50,
		PickupDistanceKm: 1.1,
		RideDistanceKm:   5.2,
		Confidence:       0.6,
		Source:           model.SourcePositional,
	}

	got := Select([]*model.Candidate{c}, DefaultConfig())
	require.NotNil(t, got)
	assert.Equal(t, 10.0, got.RideMinutes)
	assert.Equal(t, 2.0, got.PickupMinutes)
}

func TestSelectRescalesBeforeGating(t *testing.T) {
	// A misread 1850 would fail nothing but emit garbage; rescaling happens
	// before the floor and evidence checks see the price.
	c := &model.Candidate{
		Vendor:           model.Vendor99,
		Price:            1850,
		PickupDistanceKm: 1.1,
		RideDistanceKm:   7.2,
		Confidence:       0.6,
		Source:           model.SourcePositional,
	}

	got := Select([]*model.Candidate{c}, DefaultConfig())
	require.NotNil(t, got)
	assert.InDelta(t, 18.50, got.Price, 1e-9)
}

func TestSelectAllNil(t *testing.T) {
	assert.Nil(t, Select(nil, DefaultConfig()))
	assert.Nil(t, Select([]*model.Candidate{nil, nil}, DefaultConfig()))
}
