// Package pipeline wires the extraction stages into a single event loop:
// normalize, classify, extract, select, deduplicate, debounce, emit, and
// track acceptance. One goroutine owns all mutable state.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/farescout/farescout/internal/acceptance"
	"github.com/farescout/farescout/internal/classify"
	"github.com/farescout/farescout/internal/dedupe"
	"github.com/farescout/farescout/internal/extract"
	"github.com/farescout/farescout/internal/model"
	"github.com/farescout/farescout/internal/monitoring"
	"github.com/farescout/farescout/internal/normalize"
	"github.com/farescout/farescout/internal/observer"
	"github.com/farescout/farescout/internal/raster"
	"github.com/farescout/farescout/internal/vendors"
)

// Consumer receives pipeline outputs.
type Consumer interface {
	OfferDetected(model.RideOffer)
	OfferAccepted(model.Vendor)
}

// Options configure the event loop's timing behavior.
type Options struct {
	// Debounce is how long a scheduled emission waits for the card to stop
	// repainting before it fires.
	Debounce time.Duration

	// RenderSettle replaces Debounce when the triggering event is a window
	// appearance: a card that just appeared is still laying out.
	RenderSettle time.Duration

	// MinTextLen is the shortest normalized fragment worth extracting from.
	MinTextLen int
}

// rawSampleLimit caps the raw text carried on an emitted offer.
const rawSampleLimit = 160

type pending struct {
	cand  *model.Candidate
	fp    dedupe.Fingerprint
	raw   string
	timer *clock.Timer
}

type rasterResult struct {
	vendor model.Vendor
	text   string
	err    error
}

// Pipeline is the single-goroutine event loop. All stage state lives inside;
// only the capture fallback runs off-loop, feeding its result back in.
type Pipeline struct {
	opts Options
	clk  clock.Clock
	reg  *vendors.Registry
	norm *normalize.Normalizer
	cls  *classify.Classifier
	ecfg extract.Config

	cache   *dedupe.Cache
	tracker *acceptance.Tracker

	consumer Consumer
	fallback *raster.Fallback // nil disables the raster tier
	col      *monitoring.Collector

	pend     *pending
	rasterCh chan rasterResult
}

// New assembles a pipeline. fallback may be nil when no capture provider is
// available.
func New(opts Options, clk clock.Clock, reg *vendors.Registry, ecfg extract.Config,
	cache *dedupe.Cache, tracker *acceptance.Tracker, consumer Consumer,
	fallback *raster.Fallback, col *monitoring.Collector) *Pipeline {
	if opts.MinTextLen <= 0 {
		opts.MinTextLen = 8
	}
	return &Pipeline{
		opts:     opts,
		clk:      clk,
		reg:      reg,
		norm:     normalize.New(),
		cls:      classify.New(reg),
		ecfg:     ecfg,
		cache:    cache,
		tracker:  tracker,
		consumer: consumer,
		fallback: fallback,
		col:      col,
		rasterCh: make(chan rasterResult, 1),
	}
}

// Run consumes events until the source channel closes or the context ends.
// A pending emission is flushed on source close so replayed logs lose nothing.
func (p *Pipeline) Run(ctx context.Context, events <-chan observer.Event) error {
	zap.L().Info("pipeline: running",
		zap.Duration("debounce", p.opts.Debounce),
		zap.Duration("render_settle", p.opts.RenderSettle),
	)

	for {
		var timerC <-chan time.Time
		if p.pend != nil {
			timerC = p.pend.timer.C
		}

		select {
		case <-ctx.Done():
			p.dropPending()
			return eris.Wrap(ctx.Err(), "pipeline: canceled")

		case ev, ok := <-events:
			if !ok {
				p.flushPending()
				zap.L().Info("pipeline: source closed")
				return nil
			}
			p.handleEvent(ctx, ev)

		case <-timerC:
			p.flushPending()

		case res := <-p.rasterCh:
			p.handleRasterResult(res)
		}
	}
}

func (p *Pipeline) handleEvent(ctx context.Context, ev observer.Event) {
	p.col.EventSeen()

	if ev.Kind == model.EventClick {
		p.handleClick(ev.Text)
		return
	}

	text, ok := p.norm.Clean(joinNodeText(ev))
	if !ok {
		p.maybeRaster(ctx, ev)
		p.col.Discarded()
		return
	}

	if p.tracker.ObserveText(text) {
		p.col.OfferAccepted()
		p.consumer.OfferAccepted(p.tracker.Vendor())
	}

	if len(text) < p.opts.MinTextLen {
		p.maybeRaster(ctx, ev)
		p.col.Discarded()
		return
	}

	v := p.cls.Classify(text)
	if v == model.VendorUnknown {
		p.maybeRaster(ctx, ev)
		p.col.Discarded()
		return
	}

	suppressed := p.tracker.SuppressExtraction(text)

	cand := p.extractCandidate(text, ev.Nodes, v, "")
	if cand == nil {
		if !suppressed {
			p.col.CandidateRejected()
			p.maybeRaster(ctx, ev)
		}
		return
	}
	if suppressed {
		// Full offer evidence beats the navigation-chrome heuristic: the
		// vendor app showed a new card mid-trip, so the trip flag is stale.
		zap.L().Info("pipeline: new offer overrides trip state", zap.String("vendor", string(v)))
	}
	p.tracker.ClearTrip()

	p.schedule(cand, text, ev.Kind)
}

func (p *Pipeline) handleClick(text string) {
	if p.tracker.ObserveClick(text) {
		p.col.OfferAccepted()
		p.consumer.OfferAccepted(p.tracker.Vendor())
	}
}

// extractCandidate runs the applicable tiers and selects. forceSource, when
// non-empty, relabels the winning candidate (used by the raster path).
func (p *Pipeline) extractCandidate(text string, nodes []model.Node, v model.Vendor, forceSource model.ExtractionSource) *model.Candidate {
	prof, ok := p.reg.Profile(v)
	if !ok {
		return nil
	}

	var cands []*model.Candidate
	if len(nodes) > 0 {
		cands = append(cands, extract.Tier1(nodes, v))
	}
	cands = append(cands, extract.Tier2(text, v, prof, p.ecfg))

	cand := extract.Select(cands, p.ecfg)
	if cand != nil && forceSource != "" {
		cand.Source = forceSource
	}
	return cand
}

// schedule queues a candidate for emission after the debounce window.
// Deduplication happens here, at schedule time: a fingerprint seen fresh in
// the cache means the same card is still on screen.
func (p *Pipeline) schedule(cand *model.Candidate, raw string, kind model.EventKind) {
	fp := dedupe.FingerprintOf(cand)

	delay := p.opts.Debounce
	if kind == model.EventWindowAppeared {
		delay = p.opts.RenderSettle
	}

	if p.pend != nil && p.pend.fp == fp {
		// Same card, same fingerprint, fresher read: fields outside the
		// fingerprint (minutes, rating) may have filled in, so the queued
		// slot takes the new data instead of counting a duplicate.
		p.pend.timer.Stop()
		p.pend = &pending{cand: cand, fp: fp, raw: raw, timer: p.clk.Timer(delay)}
		return
	}

	if p.cache.Seen(fp) {
		p.col.DuplicateSuppressed()
		zap.L().Debug("pipeline: duplicate suppressed", zap.String("vendor", string(cand.Vendor)))
		return
	}

	if p.pend != nil {
		// A newer read of the still-repainting card supersedes the queued
		// one; the emission carries the freshest data.
		p.pend.timer.Stop()
	}
	p.pend = &pending{
		cand:  cand,
		fp:    fp,
		raw:   raw,
		timer: p.clk.Timer(delay),
	}
	zap.L().Debug("pipeline: emission scheduled",
		zap.String("vendor", string(cand.Vendor)),
		zap.Duration("delay", delay),
	)
}

func (p *Pipeline) flushPending() {
	if p.pend == nil {
		return
	}
	cand := p.pend.cand
	raw := p.pend.raw
	p.pend = nil

	offer := model.RideOffer{
		ID:               uuid.NewString(),
		Vendor:           cand.Vendor,
		Price:            cand.Price,
		RideDistanceKm:   cand.RideDistanceKm,
		RideMinutes:      cand.RideMinutes,
		PickupDistanceKm: cand.PickupDistanceKm,
		PickupMinutes:    cand.PickupMinutes,
		Rating:           cand.Rating,
		PickupAddress:    cand.PickupAddress,
		DropoffAddress:   cand.DropoffAddress,
		Source:           cand.Source,
		RawSample:        truncate(raw, rawSampleLimit),
		DetectedAt:       p.clk.Now(),
	}

	p.col.OfferEmitted()
	zap.L().Info("pipeline: offer detected",
		zap.String("id", offer.ID),
		zap.String("vendor", string(offer.Vendor)),
		zap.Float64("price", offer.Price),
		zap.Float64("ride_km", offer.RideDistanceKm),
		zap.String("source", string(offer.Source)),
	)

	p.consumer.OfferDetected(offer)
	p.tracker.Arm(offer.Vendor)
}

func (p *Pipeline) dropPending() {
	if p.pend != nil {
		p.pend.timer.Stop()
		p.pend = nil
	}
}

// maybeRaster kicks off the capture fallback when a monitored vendor's window
// is on screen but the accessibility tree delivered nothing extractable,
// whether unreadable or garbled past parsing. Capture and recognition run
// off-loop; the result re-enters through rasterCh.
func (p *Pipeline) maybeRaster(ctx context.Context, ev observer.Event) {
	if p.fallback == nil {
		return
	}
	v := p.reg.DetectSource(ev.Source)
	if v == model.VendorUnknown {
		return
	}
	prof, ok := p.reg.Profile(v)
	if !ok || !prof.Monitored {
		return
	}

	p.col.RasterAttempt()
	crop := prof.CropStartFraction
	go func() {
		text, err := p.fallback.Recognize(ctx, crop)
		select {
		case p.rasterCh <- rasterResult{vendor: v, text: text, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (p *Pipeline) handleRasterResult(res rasterResult) {
	if res.err != nil {
		if !eris.Is(res.err, raster.ErrCoolingDown) {
			p.col.RasterFailure()
			zap.L().Warn("pipeline: raster fallback failed", zap.Error(res.err))
		}
		return
	}

	text, ok := p.norm.Clean(res.text)
	if !ok || len(text) < p.opts.MinTextLen {
		p.col.Discarded()
		return
	}

	cand := p.extractCandidate(text, nil, res.vendor, model.SourceRaster)
	if cand == nil {
		p.col.CandidateRejected()
		return
	}
	p.tracker.ClearTrip()
	p.schedule(cand, text, model.EventContentChanged)
}

// joinNodeText merges an event's flat text with its structured node text so
// normalization and classification see everything the screen showed.
func joinNodeText(ev observer.Event) string {
	if len(ev.Nodes) == 0 {
		return ev.Text
	}
	var b strings.Builder
	b.WriteString(ev.Text)
	for _, n := range ev.Nodes {
		if n.Text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(n.Text)
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
