package monitoring

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectorCounts(t *testing.T) {
	c := New()

	c.EventSeen()
	c.EventSeen()
	c.Discarded()
	c.CandidateRejected()
	c.OfferEmitted()
	c.DuplicateSuppressed()
	c.RasterAttempt()
	c.RasterFailure()
	c.OfferAccepted()

	s := c.Snapshot()
	assert.Equal(t, uint64(2), s.EventsSeen)
	assert.Equal(t, uint64(1), s.Discarded)
	assert.Equal(t, uint64(1), s.CandidatesRejected)
	assert.Equal(t, uint64(1), s.OffersEmitted)
	assert.Equal(t, uint64(1), s.DuplicatesSuppressed)
	assert.Equal(t, uint64(1), s.RasterAttempts)
	assert.Equal(t, uint64(1), s.RasterFailures)
	assert.Equal(t, uint64(1), s.OffersAccepted)
}

func TestCollectorConcurrent(t *testing.T) {
	c := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.EventSeen()
			_ = c.Snapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(50), c.Snapshot().EventsSeen)
}
