package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanDiscardsSelfEcho(t *testing.T) {
	n := New()

	_, ok := n.Clean("FareScout\nR$ 18,50\nVale a pena? Sim\nR$/km 2,57")
	assert.False(t, ok, "overlay echo must be discarded")
}

func TestCleanKeepsCardWithSingleMarkerWord(t *testing.T) {
	n := New()

	// One marker alone is not proof of self-echo; the matching line is
	// dropped but the card survives.
	out, ok := n.Clean("FareScout\nNova corrida\nR$ 18,50")
	require.True(t, ok)
	assert.Equal(t, "Nova corrida\nR$ 18,50", out)
}

func TestCleanStripsGlyphsAndCollapsesWhitespace(t *testing.T) {
	n := New()

	out, ok := n.Clean("→ 5,2 km ★\t\tR$   23,10")
	require.True(t, ok)
	assert.Equal(t, "5,2 km R$ 23,10", out)
}

func TestCleanPreservesLineBreaks(t *testing.T) {
	n := New()

	out, ok := n.Clean("R$ 18,50\r\n12 min (5.2 km)\r\nAceitar")
	require.True(t, ok)
	assert.Equal(t, "R$ 18,50\n12 min (5.2 km)\nAceitar", out)
}

func TestCleanEmpty(t *testing.T) {
	n := New()

	_, ok := n.Clean("")
	assert.False(t, ok)

	_, ok = n.Clean("   \n\t  ")
	assert.False(t, ok)
}

func TestCleanDropsNoiseLines(t *testing.T) {
	n := New()

	out, ok := n.Clean("Arraste para mover\nR$ 18,50\nToque para fechar")
	require.True(t, ok)
	assert.Equal(t, "R$ 18,50", out)
}
