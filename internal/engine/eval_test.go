package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/chessplay/internal/board"
)

func TestEvaluateStartingPositionIsBalanced(t *testing.T) {
	pos := board.NewPosition()
	assert.Zero(t, Evaluate(pos), "starting position should evaluate to 0 for the side to move")
}

func TestEvaluateIsSideToMoveRelative(t *testing.T) {
	fen := "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1"
	white, err := board.ParseFEN(fen)
	require.NoError(t, err)

	blackFEN := "4k3/8/8/8/8/8/4P3/4K3 b - - 0 1"
	black, err := board.ParseFEN(blackFEN)
	require.NoError(t, err)

	assert.Equal(t, Evaluate(white), -Evaluate(black),
		"evaluation must flip sign with side to move for an identical board")
}

func TestEvaluateFavorsMaterialAdvantage(t *testing.T) {
	up, err := board.ParseFEN("4k3/8/8/8/8/8/4Q3/4K3 w - - 0 1")
	require.NoError(t, err)
	even, err := board.ParseFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)

	assert.Greater(t, Evaluate(up), Evaluate(even), "a lone extra queen should score strictly better")
}

func TestPhaseRangeEndgameVsMiddlegame(t *testing.T) {
	start := board.NewPosition()
	kk, err := board.ParseFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)

	assert.Greater(t, kk.Phase(), start.Phase(), "a bare king ending must report a higher phase than the starting position")
}
