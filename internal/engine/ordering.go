package engine

import "github.com/hailam/chessplay/internal/board"

// Move ordering priority bands, per §4.4 step 6: TT move first, then
// killers offset above eval, then captures offset above eval, then eval.
const (
	ttMoveScore  = 1 << 30
	killerOffset = 600
	captureOffset = 300
)

// MoveOrderer holds the per-search killer-move table. Killer moves live
// inside SearchData (per-search), not shared across searches.
type MoveOrderer struct {
	killers [MaxPly][2]board.Move
}

// NewMoveOrderer creates an empty move orderer.
func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// Clear resets the killer table for a new search.
func (mo *MoveOrderer) Clear() {
	for i := range mo.killers {
		mo.killers[i][0] = board.NoMove
		mo.killers[i][1] = board.NoMove
	}
}

// ScoreMoves assigns an ordering score to every move in moves, per
// §4.4 step 6: the TT move gets the top score, killers score
// killerOffset+eval, captures score captureOffset+eval, everything
// else scores eval.
func (mo *MoveOrderer) ScoreMoves(pos *board.Position, moves *board.MoveList, ply int, ttMove board.Move) []int {
	scores := make([]int, moves.Len())
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		scores[i] = mo.scoreMove(pos, m, ply, ttMove)
	}
	return scores
}

func (mo *MoveOrderer) scoreMove(pos *board.Position, m board.Move, ply int, ttMove board.Move) int {
	if m == ttMove {
		return ttMoveScore
	}

	eval := EvaluateMove(pos, m)

	if m == mo.killers[ply][0] || m == mo.killers[ply][1] {
		return killerOffset + eval
	}

	if m.IsCapture() {
		return captureOffset + eval
	}

	return eval
}

// UpdateKillers records a quiet cutoff move as a killer at ply,
// shifting the previous first killer down.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly {
		return
	}
	if mo.killers[ply][0] == m {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

// PickMove selects the best-scoring move among moves[index:] and swaps
// it into index, per §4.4 step 6's per-slot selection sort.
func PickMove(moves *board.MoveList, scores []int, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}
