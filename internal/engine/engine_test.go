package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/chessplay/internal/board"
)

func searchSync(t *testing.T, eng *Engine, pos *board.Position, limits UCILimits) (board.Move, []SearchInfo) {
	t.Helper()

	infoCh := make(chan SearchInfo, 256)
	bestMoveCh := make(chan board.Move, 1)

	if !eng.Go(pos, nil, limits, infoCh, bestMoveCh) {
		t.Fatal("Go() refused to start while idle")
	}

	var infos []SearchInfo
	var best board.Move
	done := false
	for !done {
		select {
		case info, ok := <-infoCh:
			if ok {
				infos = append(infos, info)
			}
		case m := <-bestMoveCh:
			best = m
			done = true
		}
	}
	return best, infos
}

func TestSearchBasic(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16)

	move, infos := searchSync(t, eng, pos, UCILimits{Depth: 4})
	assert.NotEqual(t, board.NoMove, move, "search returned NoMove for starting position")
	assert.NotEmpty(t, infos, "expected at least one info update")
	t.Logf("best move: %s", move.String())
}

func TestSearchRefusesConcurrentGo(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16)

	infoCh := make(chan SearchInfo, 256)
	bestMoveCh := make(chan board.Move, 1)
	require.True(t, eng.Go(pos, nil, UCILimits{MoveTime: 200 * time.Millisecond}, infoCh, bestMoveCh), "first Go() should have started")
	assert.False(t, eng.Go(pos, nil, UCILimits{Depth: 1}, infoCh, bestMoveCh), "second Go() while searching should be refused")

	<-bestMoveCh
}

func TestSearchStopIsCooperative(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16)

	infoCh := make(chan SearchInfo, 256)
	bestMoveCh := make(chan board.Move, 1)
	eng.Go(pos, nil, UCILimits{Infinite: true}, infoCh, bestMoveCh)

	time.Sleep(20 * time.Millisecond)
	eng.Stop()

	select {
	case m := <-bestMoveCh:
		assert.NotEqual(t, board.NoMove, m, "stop on starting position should still report a move")
	default:
		t.Error("Stop() should have joined the worker and produced a bestmove")
	}
}

func TestSearchVariousPositions(t *testing.T) {
	positions := []string{
		board.StartFEN,
		"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3",
		"8/8/8/4k3/8/4K3/4P3/8 w - - 0 1",
	}

	for i, fen := range positions {
		pos, err := board.ParseFEN(fen)
		require.NoErrorf(t, err, "position %d: failed to parse", i)

		eng := NewEngine(16)
		move, _ := searchSync(t, eng, pos, UCILimits{Depth: 5})
		if pos.HasLegalMoves() {
			assert.NotEqualf(t, board.NoMove, move, "position %d: search returned NoMove despite legal moves", i)
		}
	}
}

func TestHashResizeSurvivesNewGame(t *testing.T) {
	eng := NewEngine(16)
	eng.ResizeHash(4)

	pos := board.NewPosition()
	move, _ := searchSync(t, eng, pos, UCILimits{Depth: 3})
	assert.NotEqual(t, board.NoMove, move, "search after a hash resize must still produce a legal move")
}

func TestTranspositionTableRoundTrip(t *testing.T) {
	tt := NewTranspositionTable(1)
	pos := board.NewPosition()

	_, ok := tt.Probe(pos.Hash)
	assert.False(t, ok, "expected miss on empty table")

	tt.Store(pos.Hash, 4, 123, Exact, board.NewMove(board.E2, board.E4))
	entry, ok := tt.Probe(pos.Hash)
	require.True(t, ok, "expected hit after store")
	assert.Equal(t, int16(123), entry.Score)
	assert.Equal(t, uint8(4), entry.Depth)
	assert.Equal(t, Exact, entry.Type)
}
