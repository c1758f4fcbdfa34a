// Package observer defines the inbound event port: the external collaborator
// that watches another app's screen and delivers content-change events.
package observer

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/farescout/farescout/internal/model"
)

// Event is one screen-content event from the host platform.
type Event struct {
	Kind   model.EventKind `json:"kind"`
	Source string          `json:"source,omitempty"`
	Text   string          `json:"text,omitempty"`
	Nodes  []model.Node    `json:"nodes,omitempty"`
	At     time.Time       `json:"at,omitempty"`
}

// Observer is the inbound port. The channel closes when the source ends.
type Observer interface {
	Events() <-chan Event
}

// Stream reads newline-delimited JSON events from a reader — the transport
// used by the capture bridge and by recorded replay logs.
type Stream struct {
	r   io.Reader
	out chan Event
}

// NewStream wraps a reader in a streaming observer.
func NewStream(r io.Reader) *Stream {
	return &Stream{r: r, out: make(chan Event, 16)}
}

// Events returns the event channel. Closed after Run returns.
func (s *Stream) Events() <-chan Event {
	return s.out
}

// Run decodes events until EOF or context cancellation. Malformed lines are
// logged and skipped; a capture bridge glitch must not kill the stream.
func (s *Stream) Run(ctx context.Context) error {
	defer close(s.out)

	scanner := bufio.NewScanner(s.r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			zap.L().Warn("observer: skipping malformed event", zap.Error(err))
			continue
		}
		if ev.At.IsZero() {
			ev.At = time.Now()
		}

		select {
		case s.out <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return eris.Wrap(err, "observer: read stream")
	}
	return nil
}
