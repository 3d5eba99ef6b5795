// Package engine implements the chess AI search engine.
package engine

import "github.com/hailam/chessplay/internal/board"

// Piece values in centipawns, indexed by board.PieceType.
const (
	PawnValue   = 100
	KnightValue = 325
	BishopValue = 350
	RookValue   = 500
	QueenValue  = 1000
	KingValue   = 10000
)

var pieceValues = [7]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, KingValue, 0}

// Piece-square tables, one per piece type, with separate
// midgame/endgame tables for pawns and kings. Values are written from Black's own
// perspective (square 0 = a1 is nearest Black's promotion rank); White
// reads the table mirrored vertically (sq XOR 56).
var pawnPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 25, 25, 10, 5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -20, -20, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var pawnEndgamePST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	80, 80, 80, 80, 80, 80, 80, 80,
	50, 50, 50, 50, 50, 50, 50, 50,
	30, 30, 30, 30, 30, 30, 30, 30,
	15, 15, 15, 15, 15, 15, 15, 15,
	5, 5, 5, 5, 5, 5, 5, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightPST = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var bishopPST = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var rookPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

var queenPST = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 0, 5, 5, 5, 5, 0, -5,
	-10, 5, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

var kingMidgamePST = [64]int{
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	20, 20, 0, 0, 0, 0, 20, 20,
	20, 30, 10, 0, 0, 10, 30, 20,
}

var kingEndgamePST = [64]int{
	-50, -40, -30, -20, -20, -30, -40, -50,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-50, -30, -30, -30, -30, -30, -30, -50,
}

var pstMg = [6][64]int{pawnPST, knightPST, bishopPST, rookPST, queenPST, kingMidgamePST}
var pstEg = [6][64]int{pawnEndgamePST, knightPST, bishopPST, rookPST, queenPST, kingEndgamePST}

// Light/dark square masks for the bishop-pair bonus.
const (
	lightSquareMask board.Bitboard = 0x55AA55AA55AA55AA
	darkSquareMask  board.Bitboard = 0xAA55AA55AA55AA55
)

const (
	bishopPairBonus   = PawnValue / 2
	kingPawnDistUnit  = 16
	kingPawnDistClamp = 5
)

// pstSquare mirrors sq vertically for White so both colors read the
// same Black-oriented table.
func pstSquare(sq board.Square, c board.Color) board.Square {
	if c == board.White {
		return sq ^ 56
	}
	return sq
}

// Evaluate returns the static evaluation of the position in centipawns
// from the side-to-move's perspective.
func Evaluate(pos *board.Position) int {
	var mg, eg int

	for c := board.White; c <= board.Black; c++ {
		sign := 1
		if c == board.Black {
			sign = -1
		}

		for pt := board.Pawn; pt <= board.King; pt++ {
			bb := pos.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()

				if pt != board.King {
					mg += sign * pieceValues[pt]
					eg += sign * pieceValues[pt]
				}

				pstSq := pstSquare(sq, c)
				mg += sign * pstMg[pt][pstSq]
				eg += sign * pstEg[pt][pstSq]
			}
		}

		bishops := pos.Pieces[c][board.Bishop]
		if bishops&lightSquareMask != 0 && bishops&darkSquareMask != 0 {
			mg += sign * bishopPairBonus
			eg += sign * bishopPairBonus
		}

		if dist, ok := closestPawnDistance(pos, c); ok {
			eg += sign * kingPawnDistUnit * dist
		}
	}

	phase := pos.Phase()
	score := (mg*(256-phase) + eg*phase) / 256

	if pos.SideToMove == board.Black {
		return -score
	}
	return score
}

// closestPawnDistance returns the smallest Chebyshev distance from c's
// king to any of c's own pawns, clamped to 0..5, and whether c has any
// pawns at all.
func closestPawnDistance(pos *board.Position, c board.Color) (int, bool) {
	pawns := pos.Pieces[c][board.Pawn]
	if pawns == 0 {
		return 0, false
	}

	kingSq := pos.KingSquare[c]
	best := kingPawnDistClamp + 1
	for bb := pawns; bb != 0; {
		sq := bb.PopLSB()
		d := chebyshevDistance(kingSq, sq)
		if d < best {
			best = d
		}
	}
	if best > kingPawnDistClamp {
		best = kingPawnDistClamp
	}
	return best, true
}

// chebyshevDistance is max(|file diff|, |rank diff|) — the number of
// king moves needed to travel between two squares.
func chebyshevDistance(a, b board.Square) int {
	df := int(a.File()) - int(b.File())
	if df < 0 {
		df = -df
	}
	dr := int(a.Rank()) - int(b.Rank())
	if dr < 0 {
		dr = -dr
	}
	if df > dr {
		return df
	}
	return dr
}

// EvaluateMove scores a move for ordering purposes only: PST delta at
// the target square minus PST delta at the origin, plus capture_score
// via static exchange evaluation when the move is a capture.
func EvaluateMove(pos *board.Position, m board.Move) int {
	us := pos.SideToMove
	from, to := m.From(), m.To()
	pt := pos.PieceAt(from).Type()

	targetPT := pt
	promoBonus := 0
	if m.IsPromotion() {
		targetPT = board.Queen
		promoBonus = QueenValue - PawnValue
	}

	score := pstMg[targetPT][pstSquare(to, us)] - pstMg[pt][pstSquare(from, us)] + promoBonus

	if m.IsCapture() {
		score += captureScore(pos, m)
	}
	return score
}

// captureScore approximates the material result of a capture sequence
// on the target square, per §4.3's capture_score rule.
func captureScore(pos *board.Position, m board.Move) int {
	from, to := m.From(), m.To()
	attackerValue := pieceValues[pos.PieceAt(from).Type()]

	victimValue := PawnValue
	if !m.IsEnPassant() {
		victimValue = pieceValues[pos.PieceAt(to).Type()]
	}

	promoBonus := 0
	if m.IsPromotion() {
		promoBonus = QueenValue - PawnValue
	}

	if attackerValue < RookValue && victimValue >= RookValue {
		return victimValue + promoBonus
	}

	pc := pos.Copy()
	pc.DoMove(m)
	result := victimValue - exchangeResult(pc, to)
	pc.UndoMove(m)
	return result + promoBonus
}

// exchangeResult recursively plays the least-valuable-attacker-first
// exchange sequence on sq and returns the net material gain (never below
// zero) for the side to move, i.e. the side that may recapture on sq.
func exchangeResult(pos *board.Position, sq board.Square) int {
	side := pos.SideToMove
	attackerSq, attacker := leastValuableAttacker(pos, sq, side)
	if attackerSq == board.NoSquare {
		return 0
	}

	victimValue := pieceValues[pos.PieceAt(sq).Type()]

	var m board.Move
	if attacker.Type() == board.Pawn && (sq.Rank() == 0 || sq.Rank() == 7) {
		m = board.NewPromotionCapture(attackerSq, sq, board.Queen)
	} else {
		m = board.NewCapture(attackerSq, sq)
	}

	pos.DoMove(m)
	gain := victimValue - exchangeResult(pos, sq)
	pos.UndoMove(m)

	if gain < 0 {
		gain = 0
	}
	return gain
}

// leastValuableAttacker finds the cheapest piece of side attacking sq.
// Returns board.NoSquare if side has no attacker.
func leastValuableAttacker(pos *board.Position, sq board.Square, side board.Color) (board.Square, board.Piece) {
	occupied := pos.AllOccupied

	pawns := pos.Pieces[side][board.Pawn] & board.PawnAttacks(sq, side.Other())
	if pawns != 0 {
		return pawns.LSB(), board.NewPiece(board.Pawn, side)
	}

	knights := pos.Pieces[side][board.Knight] & board.KnightAttacks(sq)
	if knights != 0 {
		return knights.LSB(), board.NewPiece(board.Knight, side)
	}

	bishopAtt := board.BishopAttacks(sq, occupied)
	bishops := pos.Pieces[side][board.Bishop] & bishopAtt
	if bishops != 0 {
		return bishops.LSB(), board.NewPiece(board.Bishop, side)
	}

	rookAtt := board.RookAttacks(sq, occupied)
	rooks := pos.Pieces[side][board.Rook] & rookAtt
	if rooks != 0 {
		return rooks.LSB(), board.NewPiece(board.Rook, side)
	}

	queens := pos.Pieces[side][board.Queen] & (bishopAtt | rookAtt)
	if queens != 0 {
		return queens.LSB(), board.NewPiece(board.Queen, side)
	}

	king := pos.Pieces[side][board.King] & board.KingAttacks(sq)
	if king != 0 {
		return king.LSB(), board.NewPiece(board.King, side)
	}

	return board.NoSquare, board.NoPiece
}

// MVVLVA returns the move-ordering surrogate value for a capturing
// move: value of the most valuable victim minus value of the attacker,
// so cheap attackers taking expensive victims sort first.
func MVVLVA(pos *board.Position, m board.Move) int {
	attacker := pos.PieceAt(m.From())

	victimType := board.Pawn
	if !m.IsEnPassant() {
		victimType = pos.PieceAt(m.To()).Type()
	}

	return pieceValues[victimType] - pieceValues[attacker.Type()]
}
