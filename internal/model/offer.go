package model

import "time"

// Vendor identifies which driver app rendered the offer card. Classification
// is textual: accessibility text captured from another app carries no process
// identity, and OCR output carries none at all.
type Vendor string

const (
	VendorUber    Vendor = "uber"
	Vendor99      Vendor = "99"
	VendorUnknown Vendor = "unknown"
)

// EventKind describes how a screen event reached the pipeline.
type EventKind string

const (
	EventWindowAppeared EventKind = "window_appeared"
	EventContentChanged EventKind = "content_changed"
	EventNotification   EventKind = "notification"
	EventClick          EventKind = "click"
)

// Node is a single (label, text) pair from a structured accessibility tree.
type Node struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// ExtractionSource labels which strategy produced a candidate.
type ExtractionSource string

const (
	SourceRoutePair    ExtractionSource = "route_pair"    // Tier 1, labeled pickup+dropoff pair
	SourceLabeledNodes ExtractionSource = "labeled_nodes" // Tier 1, labeled elements
	SourcePositional   ExtractionSource = "positional"    // Tier 2, flat-text patterns
	SourceRaster       ExtractionSource = "raster"        // Tier 3, OCR fed back through Tier 2
)

// Candidate is a provisional extraction result from one tier. Zero-valued
// fields mean "not found"; validation happens in the selector.
type Candidate struct {
	Vendor           Vendor
	Price            float64
	RideDistanceKm   float64
	RideMinutes      float64
	PickupDistanceKm float64
	PickupMinutes    float64
	Rating           float64
	PickupAddress    string
	DropoffAddress   string
	Confidence       float64
	Source           ExtractionSource
}

// DistanceSignals counts independently extracted distance values. The
// minimal-evidence rule requires two of them alongside a price.
func (c Candidate) DistanceSignals() int {
	n := 0
	if c.RideDistanceKm > 0 {
		n++
	}
	if c.PickupDistanceKm > 0 {
		n++
	}
	return n
}

// HasMinimalEvidence reports whether the candidate carries enough corroborating
// signals to be an offer rather than incidental UI chrome (e.g. an earnings
// summary, which has a currency amount but no route).
func (c Candidate) HasMinimalEvidence() bool {
	return c.Price > 0 && c.DistanceSignals() >= 2
}

// RideOffer is the canonical record emitted downstream. Immutable; created
// exactly once per accepted fingerprint per dedup window.
type RideOffer struct {
	ID               string           `json:"id"`
	Vendor           Vendor           `json:"vendor"`
	Price            float64          `json:"price"`
	RideDistanceKm   float64          `json:"ride_distance_km"`
	RideMinutes      float64          `json:"ride_minutes"`
	PickupDistanceKm float64          `json:"pickup_distance_km"`
	PickupMinutes    float64          `json:"pickup_minutes"`
	Rating           float64          `json:"rating,omitempty"`
	PickupAddress    string           `json:"pickup_address,omitempty"`
	DropoffAddress   string           `json:"dropoff_address,omitempty"`
	Source           ExtractionSource `json:"source"`
	RawSample        string           `json:"raw_sample,omitempty"`
	DetectedAt       time.Time        `json:"detected_at"`
}
