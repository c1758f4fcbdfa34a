// Package monitoring aggregates pipeline counters for the status endpoint.
package monitoring

import "sync"

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	EventsSeen           uint64 `json:"events_seen"`
	Discarded            uint64 `json:"discarded"`
	CandidatesRejected   uint64 `json:"candidates_rejected"`
	OffersEmitted        uint64 `json:"offers_emitted"`
	DuplicatesSuppressed uint64 `json:"duplicates_suppressed"`
	RasterAttempts       uint64 `json:"raster_attempts"`
	RasterFailures       uint64 `json:"raster_failures"`
	OffersAccepted       uint64 `json:"offers_accepted"`
}

// Collector counts pipeline outcomes. Safe for concurrent use: the pipeline
// goroutine writes while the status endpoint reads.
type Collector struct {
	mu sync.Mutex
	s  Snapshot
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) EventSeen() { c.inc(func(s *Snapshot) { s.EventsSeen++ }) }

func (c *Collector) Discarded() { c.inc(func(s *Snapshot) { s.Discarded++ }) }

func (c *Collector) CandidateRejected() { c.inc(func(s *Snapshot) { s.CandidatesRejected++ }) }

func (c *Collector) OfferEmitted() { c.inc(func(s *Snapshot) { s.OffersEmitted++ }) }

func (c *Collector) DuplicateSuppressed() { c.inc(func(s *Snapshot) { s.DuplicatesSuppressed++ }) }

func (c *Collector) RasterAttempt() { c.inc(func(s *Snapshot) { s.RasterAttempts++ }) }

func (c *Collector) RasterFailure() { c.inc(func(s *Snapshot) { s.RasterFailures++ }) }

func (c *Collector) OfferAccepted() { c.inc(func(s *Snapshot) { s.OffersAccepted++ }) }

// Snapshot returns a copy of the current counters.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s
}

func (c *Collector) inc(f func(*Snapshot)) {
	c.mu.Lock()
	f(&c.s)
	c.mu.Unlock()
}
