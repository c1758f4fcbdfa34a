package observer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farescout/farescout/internal/model"
)

func TestStreamDecodesEvents(t *testing.T) {
	input := `{"kind":"window_appeared","source":"com.taxis99.driver","text":"Nova corrida"}
{"kind":"content_changed","text":"R$ 18,50","nodes":[{"label":"Valor","text":"R$ 18,50"}]}
{"kind":"click","text":"Aceitar"}
`
	s := NewStream(strings.NewReader(input))

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	var events []Event
	for ev := range s.Events() {
		events = append(events, ev)
	}
	require.NoError(t, <-done)

	require.Len(t, events, 3)
	assert.Equal(t, model.EventWindowAppeared, events[0].Kind)
	assert.Equal(t, "com.taxis99.driver", events[0].Source)
	assert.False(t, events[0].At.IsZero(), "missing timestamps default to now")
	require.Len(t, events[1].Nodes, 1)
	assert.Equal(t, "Valor", events[1].Nodes[0].Label)
	assert.Equal(t, model.EventClick, events[2].Kind)
}

func TestStreamSkipsMalformedLines(t *testing.T) {
	input := "not json at all\n{\"kind\":\"click\",\"text\":\"Aceitar\"}\n\n"
	s := NewStream(strings.NewReader(input))

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	var events []Event
	for ev := range s.Events() {
		events = append(events, ev)
	}
	require.NoError(t, <-done)
	require.Len(t, events, 1)
	assert.Equal(t, model.EventClick, events[0].Kind)
}

func TestStreamKeepsExplicitTimestamp(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	input := `{"kind":"click","text":"Aceitar","at":"2026-03-14T09:30:00Z"}` + "\n"
	s := NewStream(strings.NewReader(input))

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	ev := <-s.Events()
	require.NoError(t, <-done)
	assert.True(t, ev.At.Equal(at))
}
