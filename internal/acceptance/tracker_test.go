package acceptance

import (
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/stretchr/testify/assert"

	"github.com/farescout/farescout/internal/model"
	"github.com/farescout/farescout/internal/vendors"
)

func newTestTracker() (*Tracker, *clock.Mock) {
	clk := clock.NewMock()
	return NewTracker(clk, vendors.Default(), 45*time.Second, 2*time.Hour), clk
}

func TestClickAcceptWithinWindow(t *testing.T) {
	tr, clk := newTestTracker()

	tr.Arm(model.Vendor99)
	assert.Equal(t, StateOfferPending, tr.State())

	clk.Add(5 * time.Second)
	assert.True(t, tr.ObserveClick("Aceitar"))
	assert.Equal(t, StateAccepted, tr.State())
	assert.True(t, tr.TripInProgress())
	assert.Equal(t, model.Vendor99, tr.Vendor())
}

func TestClickAcceptReportedOnce(t *testing.T) {
	tr, _ := newTestTracker()

	tr.Arm(model.Vendor99)
	assert.True(t, tr.ObserveClick("Aceitar"))
	assert.False(t, tr.ObserveClick("Aceitar"), "already accepted")
}

func TestClickAfterWindowIgnored(t *testing.T) {
	tr, clk := newTestTracker()

	tr.Arm(model.Vendor99)
	clk.Add(46 * time.Second)
	assert.False(t, tr.ObserveClick("Aceitar"))
	assert.Equal(t, StateIdle, tr.State())
}

func TestClickDeclineClearsSlot(t *testing.T) {
	tr, _ := newTestTracker()

	tr.Arm(model.VendorUber)
	assert.False(t, tr.ObserveClick("Recusar"))
	assert.Equal(t, StateIdle, tr.State())
}

func TestNavigationTextCountsAsAcceptance(t *testing.T) {
	tr, _ := newTestTracker()

	tr.Arm(model.VendorUber)
	assert.True(t, tr.ObserveText("Iniciar navegação\nA caminho de Rua Augusta"))
	assert.Equal(t, StateAccepted, tr.State())
}

func TestCardButtonLabelsInSnapshotsIgnored(t *testing.T) {
	tr, _ := newTestTracker()

	// The card's own text contains the button labels; a snapshot is not a
	// click.
	tr.Arm(model.Vendor99)
	assert.False(t, tr.ObserveText("R$ 18,50\n12 min (5.2 km)\nAceitar\nRecusar"))
	assert.Equal(t, StateOfferPending, tr.State())
}

func TestExpiryTextClearsSlot(t *testing.T) {
	tr, _ := newTestTracker()

	tr.Arm(model.Vendor99)
	assert.False(t, tr.ObserveText("Essa corrida expirou"))
	assert.Equal(t, StateIdle, tr.State())
}

func TestNewOfferSupersedesPending(t *testing.T) {
	tr, clk := newTestTracker()

	tr.Arm(model.Vendor99)
	clk.Add(10 * time.Second)
	tr.Arm(model.VendorUber)

	clk.Add(40 * time.Second)
	// 50s after the first offer but 40s after the second: still pending.
	assert.Equal(t, StateOfferPending, tr.State())
	assert.Equal(t, model.VendorUber, tr.Vendor())
}

func TestTripExpiresAtMaxDuration(t *testing.T) {
	tr, clk := newTestTracker()

	tr.Arm(model.Vendor99)
	assert.True(t, tr.ObserveClick("Aceitar"))

	clk.Add(121 * time.Minute)
	assert.False(t, tr.TripInProgress())
	assert.Equal(t, StateIdle, tr.State())
}

func TestClearTrip(t *testing.T) {
	tr, _ := newTestTracker()

	tr.Arm(model.Vendor99)
	assert.True(t, tr.ObserveClick("Aceitar"))
	tr.ClearTrip()
	assert.False(t, tr.TripInProgress())
	assert.Equal(t, StateIdle, tr.State())
}

func TestSuppressExtractionDuringTrip(t *testing.T) {
	tr, _ := newTestTracker()

	tr.Arm(model.Vendor99)
	assert.True(t, tr.ObserveClick("Aceitar"))

	nav := "Vire à direita na Rua Augusta\nSiga por Av. Paulista\nContinue por 2 km"
	assert.True(t, tr.SuppressExtraction(nav))

	card := "Nova corrida\nR$ 18,50\n12 min (5.2 km)"
	assert.False(t, tr.SuppressExtraction(card))
}

func TestSuppressExtractionIdle(t *testing.T) {
	tr, _ := newTestTracker()
	assert.False(t, tr.SuppressExtraction("Vire à direita na Rua Augusta"))
}
