package engine

import "github.com/hailam/chessplay/internal/board"

const repetitionTableSize = 8191

// isIrreversibleMove reports whether m, played from pos, cannot be
// reversed back into pos by any later move: a pawn move, a capture, or
// castling. The repetition walk never looks back past such a move.
func isIrreversibleMove(pos *board.Position, m board.Move) bool {
	if m.IsCapture() || m.IsCastling() {
		return true
	}
	return pos.PieceAt(m.From()).Type() == board.Pawn
}

// repetitionTracker is the hash-indexed counter table of §4.4: a fixed
// 8191-slot occupancy count plus the line of hashes seen since the most
// recent irreversible move, used to confirm a genuine repeat rather than
// a hash collision across an unrelated part of the game.
type repetitionTracker struct {
	counts      [repetitionTableSize]int8
	hashes      []uint64
	resetPoints []int
}

func (rt *repetitionTracker) slot(hash uint64) uint64 {
	return hash % repetitionTableSize
}

// boundary returns the earliest index in hashes that a repeat may be
// compared against: the position right after the most recent
// irreversible move, or the start of the tracked line if none occurred.
func (rt *repetitionTracker) boundary() int {
	if len(rt.resetPoints) == 0 {
		return 0
	}
	return rt.resetPoints[len(rt.resetPoints)-1]
}

// push enters a position reached by playing a move, per do_move.
func (rt *repetitionTracker) push(hash uint64, irreversible bool) {
	if irreversible {
		rt.resetPoints = append(rt.resetPoints, len(rt.hashes))
	}
	rt.hashes = append(rt.hashes, hash)
	rt.counts[rt.slot(hash)]++
}

// pop exits the most recently entered position, per undo_move.
func (rt *repetitionTracker) pop(irreversible bool) {
	n := len(rt.hashes) - 1
	rt.counts[rt.slot(rt.hashes[n])]--
	rt.hashes = rt.hashes[:n]
	if irreversible {
		rt.resetPoints = rt.resetPoints[:len(rt.resetPoints)-1]
	}
}

// isRepeated reports whether the most recently pushed position has
// occurred before, at an even ply distance, since the last irreversible
// move. The counter table gives an O(1) pre-check; the walk confirms it
// against the tracked line rather than trusting a possible hash clash.
func (rt *repetitionTracker) isRepeated() bool {
	n := len(rt.hashes)
	if n == 0 {
		return false
	}
	h := rt.hashes[n-1]
	if rt.counts[rt.slot(h)] < 2 {
		return false
	}
	b := rt.boundary()
	for i := n - 3; i >= b; i -= 2 {
		if rt.hashes[i] == h {
			return true
		}
	}
	return false
}

// seed populates the tracker with the game history preceding pos, per
// §4.4: undoing the provided move list recovers each prior position so
// it is visible to the in-search repetition check, ending with pos
// itself pushed last.
func (rt *repetitionTracker) seed(pos *board.Position, gameMoves []board.Move) {
	k := len(gameMoves)
	hashes := make([]uint64, k+1)
	irr := make([]bool, k+1)

	p := pos.Copy()
	hashes[k] = p.Hash
	for i := k - 1; i >= 0; i-- {
		m := gameMoves[i]
		p.UndoMove(m)
		hashes[i] = p.Hash
		irr[i+1] = isIrreversibleMove(p, m)
	}
	irr[0] = true

	for j := 0; j <= k; j++ {
		rt.push(hashes[j], irr[j])
	}
}
