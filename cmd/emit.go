package main

import (
	"encoding/json"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/farescout/farescout/internal/model"
)

// jsonEmitter writes pipeline outputs as JSON lines. This is the outbound
// side of the bridge protocol: the host platform reads these off stdout.
type jsonEmitter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func newJSONEmitter(w io.Writer) *jsonEmitter {
	return &jsonEmitter{enc: json.NewEncoder(w)}
}

type emittedLine struct {
	Type   string           `json:"type"`
	Offer  *model.RideOffer `json:"offer,omitempty"`
	Vendor model.Vendor     `json:"vendor,omitempty"`
}

func (e *jsonEmitter) OfferDetected(offer model.RideOffer) {
	e.write(emittedLine{Type: "offer_detected", Offer: &offer})
}

func (e *jsonEmitter) OfferAccepted(v model.Vendor) {
	e.write(emittedLine{Type: "offer_accepted", Vendor: v})
}

func (e *jsonEmitter) write(line emittedLine) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enc.Encode(line); err != nil {
		zap.L().Error("emit: write output", zap.Error(err))
	}
}
