package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/chessplay/internal/board"
)

// shuffle plays knight moves back and forth, reaching the starting
// position again after four plies with no pawn move, capture, or
// castling in between — the textbook repetition case.
func TestRepetitionDetectedAfterKnightShuffle(t *testing.T) {
	pos := board.NewPosition()
	rt := &repetitionTracker{}
	rt.seed(pos, nil)

	moves := []string{"g1f3", "g8f6", "f3g1", "f6g8"}
	for i, s := range moves {
		m, err := board.ParseMove(s, pos)
		require.NoErrorf(t, err, "move %d (%s)", i, s)

		irr := isIrreversibleMove(pos, m)
		pos.DoMove(m)
		rt.push(pos.Hash, irr)

		if i < len(moves)-1 {
			assert.False(t, rt.isRepeated(), "position should not repeat before the shuffle completes")
		}
	}

	assert.True(t, rt.isRepeated(), "returning to the starting position via a knight shuffle must be detected as a repeat")
}

func TestRepetitionResetByPawnMove(t *testing.T) {
	pos := board.NewPosition()
	rt := &repetitionTracker{}
	rt.seed(pos, nil)

	playLAN := func(s string) board.Move {
		m, err := board.ParseMove(s, pos)
		require.NoError(t, err)
		irr := isIrreversibleMove(pos, m)
		pos.DoMove(m)
		rt.push(pos.Hash, irr)
		return m
	}

	playLAN("g1f3")
	playLAN("g8f6")
	playLAN("f3g1")
	playLAN("f6g8")
	require.True(t, rt.isRepeated())

	// An irreversible pawn move clears the repetition boundary; the
	// earlier occurrence of the starting position is no longer visible.
	playLAN("e2e4")
	assert.False(t, rt.isRepeated(), "a pawn move must reset the repetition boundary")
}

func TestRepetitionTrackerPushPopSymmetric(t *testing.T) {
	pos := board.NewPosition()
	rt := &repetitionTracker{}
	rt.seed(pos, nil)

	before := len(rt.hashes)
	m, err := board.ParseMove("e2e4", pos)
	require.NoError(t, err)

	irr := isIrreversibleMove(pos, m)
	pos.DoMove(m)
	rt.push(pos.Hash, irr)
	assert.Equal(t, before+1, len(rt.hashes))

	rt.pop(irr)
	assert.Equal(t, before, len(rt.hashes), "pop must exactly undo push")
}
