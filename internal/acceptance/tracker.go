// Package acceptance correlates follow-up screen events with a previously
// emitted offer to learn whether the driver took it.
package acceptance

import (
	"strings"
	"time"

	"github.com/facebookgo/clock"
	"go.uber.org/zap"

	"github.com/farescout/farescout/internal/model"
	"github.com/farescout/farescout/internal/vendors"
)

// State is the tracker's position in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateOfferPending
	StateAccepted
)

func (s State) String() string {
	switch s {
	case StateOfferPending:
		return "offer_pending"
	case StateAccepted:
		return "accepted"
	default:
		return "idle"
	}
}

// Tracker is a single-slot state machine: one offer can be pending acceptance
// at a time, and a newer qualifying offer supersedes the old slot. Timeouts
// are evaluated lazily against the injected clock at the next event rather
// than via timers, so they tolerate scheduling jitter.
//
// Owned by the pipeline goroutine; not safe for concurrent use.
type Tracker struct {
	clk     clock.Clock
	reg     *vendors.Registry
	window  time.Duration // acceptance window after emission
	tripMax time.Duration // hard bound on trip-in-progress

	state         State
	vendor        model.Vendor
	offerAt       time.Time
	tripStartedAt time.Time
}

// NewTracker builds a tracker with the given acceptance window and maximum
// trip duration.
func NewTracker(clk clock.Clock, reg *vendors.Registry, window, tripMax time.Duration) *Tracker {
	return &Tracker{clk: clk, reg: reg, window: window, tripMax: tripMax}
}

// Arm records a newly emitted offer, superseding any pending slot.
func (t *Tracker) Arm(v model.Vendor) {
	t.state = StateOfferPending
	t.vendor = v
	t.offerAt = t.clk.Now()
	zap.L().Debug("acceptance: armed", zap.String("vendor", string(v)))
}

// State returns the current state after lazy expiry.
func (t *Tracker) State() State {
	t.expire()
	return t.state
}

// Vendor returns the vendor of the pending or accepted offer.
func (t *Tracker) Vendor() model.Vendor {
	return t.vendor
}

// ObserveClick inspects a click event's text while an offer is pending.
// Returns true exactly once, when the click matches the vendor's accept
// phrases inside the window. A click on a decline label clears the slot.
func (t *Tracker) ObserveClick(text string) bool {
	t.expire()
	if t.state != StateOfferPending {
		return false
	}
	prof, ok := t.reg.Profile(t.vendor)
	if !ok {
		return false
	}
	if vendors.MatchesPhrase(text, prof.AcceptPhrases) {
		t.accept()
		return true
	}
	if vendors.MatchesPhrase(text, prof.RejectPhrases) {
		zap.L().Debug("acceptance: offer declined", zap.String("vendor", string(t.vendor)))
		t.reset()
	}
	return false
}

// ObserveText inspects a normalized snapshot while an offer is pending.
// Navigation-started phrasing counts as acceptance — the app only navigates
// to a pickup the driver took. Accept/decline button labels are ignored here:
// they are part of the card's own text. Expiry phrasing clears the slot.
func (t *Tracker) ObserveText(text string) bool {
	t.expire()
	if t.state != StateOfferPending {
		return false
	}
	prof, ok := t.reg.Profile(t.vendor)
	if !ok {
		return false
	}
	if vendors.MatchesPhrase(text, prof.NavigationPhrases) {
		t.accept()
		return true
	}
	if vendors.MatchesPhrase(text, prof.ExpiryPhrases) {
		zap.L().Debug("acceptance: offer expired", zap.String("vendor", string(t.vendor)))
		t.reset()
	}
	return false
}

// TripInProgress reports whether an accepted ride is believed to be underway,
// clearing the flag once the hard maximum duration passes — the safety net
// for a missed end signal.
func (t *Tracker) TripInProgress() bool {
	if t.state != StateAccepted {
		return false
	}
	if t.clk.Now().Sub(t.tripStartedAt) > t.tripMax {
		zap.L().Info("acceptance: trip expired at max duration", zap.String("vendor", string(t.vendor)))
		t.reset()
		return false
	}
	return true
}

// ClearTrip drops the trip flag immediately. Called when a genuinely new
// offer shows up with full evidence: a fresh offer supersedes stale trip
// state.
func (t *Tracker) ClearTrip() {
	if t.state == StateAccepted {
		t.reset()
	}
}

// navigationMarkers are substrings of in-trip navigation chrome. The count
// heuristic below is fuzzy by design — road-name density is a hint, not a
// contract — which is why minimal evidence always overrides it upstream.
var navigationMarkers = []string{
	"r. ", "av. ", "rua ", "avenida ", "rod. ", "rodovia ",
	"vire à", "vire a", "turn left", "turn right", "siga por",
	"continue por", "em direção", "em direcao",
}

// navigationThreshold is how many marker hits make a fragment look like
// turn-by-turn chrome.
const navigationThreshold = 3

// SuppressExtraction reports whether extraction should be skipped for this
// text because the driver is mid-trip and the fragment reads like navigation
// chrome rather than a new offer card.
func (t *Tracker) SuppressExtraction(text string) bool {
	if !t.TripInProgress() {
		return false
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, m := range navigationMarkers {
		hits += strings.Count(lower, m)
		if hits >= navigationThreshold {
			return true
		}
	}
	return false
}

func (t *Tracker) accept() {
	t.state = StateAccepted
	t.tripStartedAt = t.clk.Now()
	zap.L().Info("acceptance: offer accepted", zap.String("vendor", string(t.vendor)))
}

func (t *Tracker) expire() {
	if t.state == StateOfferPending && t.clk.Now().Sub(t.offerAt) > t.window {
		zap.L().Debug("acceptance: window elapsed", zap.String("vendor", string(t.vendor)))
		t.reset()
	}
}

func (t *Tracker) reset() {
	t.state = StateIdle
	t.vendor = model.VendorUnknown
	t.offerAt = time.Time{}
	t.tripStartedAt = time.Time{}
}
