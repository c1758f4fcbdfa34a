// Package dedupe suppresses repeated detections of the same on-screen offer.
//
// The same card is re-read on every accessibility refresh and every OCR pass,
// so identical offers arrive in streaks. A quantized fingerprint absorbs the
// jitter between those reads: prices within half a currency unit and
// distances within 100m hash identically, and addresses are case- and
// diacritic-folded so tree text and OCR text agree.
package dedupe

import (
	"container/list"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/facebookgo/clock"

	"github.com/farescout/farescout/internal/classify"
	"github.com/farescout/farescout/internal/model"
)

// Fingerprint is a derived dedup key. Never exposed downstream.
type Fingerprint string

// FingerprintOf derives the dedup key for a candidate.
func FingerprintOf(c *model.Candidate) Fingerprint {
	return Fingerprint(fmt.Sprintf("%s|%.1f|%.1f|%.1f|%s|%s",
		c.Vendor,
		quantize(c.Price, 0.5),
		quantize(c.RideDistanceKm, 0.1),
		quantize(c.PickupDistanceKm, 0.1),
		foldAddress(c.PickupAddress),
		foldAddress(c.DropoffAddress),
	))
}

func quantize(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}

// foldAddress lowercases, strips diacritics, and collapses punctuation so
// the same street hashes identically across capture paths.
func foldAddress(s string) string {
	folded := classify.Fold(s)
	var b strings.Builder
	lastSpace := true
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
		} else if !lastSpace {
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

type entry struct {
	fp       Fingerprint
	lastSeen time.Time
}

// Cache is a bounded, insertion-ordered fingerprint cache with a TTL.
// Owned by a single pipeline goroutine; not safe for concurrent use.
type Cache struct {
	clk      clock.Clock
	ttl      time.Duration
	capacity int
	order    *list.List // oldest insertion at front
	index    map[Fingerprint]*list.Element
}

// NewCache returns a cache with the given capacity and freshness window.
func NewCache(clk clock.Clock, capacity int, ttl time.Duration) *Cache {
	return &Cache{
		clk:      clk,
		ttl:      ttl,
		capacity: capacity,
		order:    list.New(),
		index:    make(map[Fingerprint]*list.Element, capacity),
	}
}

// Seen records the fingerprint and reports whether a fresh copy was already
// present — in which case the caller suppresses emission (same offer still on
// screen) and the entry's timestamp is refreshed. Expired entries are pruned
// on every call; insertion beyond capacity evicts the oldest entries first.
func (c *Cache) Seen(fp Fingerprint) bool {
	now := c.clk.Now()
	c.prune(now)

	if el, ok := c.index[fp]; ok {
		el.Value.(*entry).lastSeen = now
		return true
	}

	el := c.order.PushBack(&entry{fp: fp, lastSeen: now})
	c.index[fp] = el
	for c.order.Len() > c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.index, oldest.Value.(*entry).fp)
	}
	return false
}

// Len returns the live entry count.
func (c *Cache) Len() int {
	return c.order.Len()
}

func (c *Cache) prune(now time.Time) {
	cutoff := now.Add(-c.ttl)
	var next *list.Element
	for el := c.order.Front(); el != nil; el = next {
		next = el.Next()
		if el.Value.(*entry).lastSeen.After(cutoff) {
			continue
		}
		c.order.Remove(el)
		delete(c.index, el.Value.(*entry).fp)
	}
}
