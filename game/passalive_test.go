package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPassAliveMask(t *testing.T) {
	t.Run("two-eyed chain is pass-alive", func(t *testing.T) {
		p := position(t, 0,
			"X.X",
			"XXX",
			"X.X")
		mask := p.passAliveMask(Black)
		for i, c := range p.board {
			if c == Black {
				require.True(t, mask[i], "Every stone of a two-eyed chain should be pass-alive")
			}
		}
	})

	t.Run("chain with one eye is not", func(t *testing.T) {
		p := position(t, 0,
			"X.X..",
			"XXX..",
			".....",
			".....",
			".....")
		// One real eye at B5; the outside region has empty points that are
		// not liberties of the chain, so it is not vital.
		mask := p.passAliveMask(Black)
		require.False(t, mask[int(MoveAt(0, 0, 5))], "A one-eyed chain should not be pass-alive")
	})

	t.Run("empty board has no pass-alive chains", func(t *testing.T) {
		p := NewPosition(5, 7.5)
		require.NotContains(t, p.passAliveMask(Black), true)
		require.NotContains(t, p.passAliveMask(White), true)
	})
}

func TestAllSettled(t *testing.T) {
	t.Run("fully decided board", func(t *testing.T) {
		p := position(t, 7.5,
			".X.X.",
			"XXXXX",
			"XXXXX",
			"OOOOO",
			".O.O.")
		require.True(t, p.AllSettled(), "Both sides alive with all territory enclosed")
	})

	t.Run("open board is contested", func(t *testing.T) {
		p := position(t, 7.5,
			".X.X.",
			"XXXXX",
			".....",
			"OOOOO",
			".O.O.")
		require.False(t, p.AllSettled(), "The middle row is enclosed by both colors")
	})

	t.Run("empty board is contested", func(t *testing.T) {
		p := NewPosition(5, 7.5)
		require.False(t, p.AllSettled(), "Nothing is decided on an empty board")
	})
}
