package board

import "fmt"

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSideCastle != 0 {
		s += "K"
	}
	if cr&WhiteQueenSideCastle != 0 {
		s += "Q"
	}
	if cr&BlackKingSideCastle != 0 {
		s += "k"
	}
	if cr&BlackQueenSideCastle != 0 {
		s += "q"
	}
	return s
}

// CanCastle returns true if the given side can castle in the given direction.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	if c == White {
		if kingSide {
			return cr&WhiteKingSideCastle != 0
		}
		return cr&WhiteQueenSideCastle != 0
	}
	if kingSide {
		return cr&BlackKingSideCastle != 0
	}
	return cr&BlackQueenSideCastle != 0
}

// noEnPassant is the packed EnPassant field value meaning "no en passant
// square": the presence bit (0x08) is clear.
const noEnPassant uint8 = 0

// IrreversibleState is the per-ply record of everything do_move cannot
// recover by pattern-matching the move alone. Position keeps a stack of
// these; index 0 is the state right after FEN parse.
type IrreversibleState struct {
	CastlingRights CastlingRights // 4 bits: K (bit 0), Q (bit 1), k (bit 2), q (bit 3)
	EnPassant      uint8          // top bit = present, low 3 bits = file
	HalfMoveClock  int            // plies since last pawn move/capture
	CapturedPiece  Piece          // piece removed by the move that led here, or NoPiece
}

func packEnPassant(sq Square) uint8 {
	if sq == NoSquare {
		return noEnPassant
	}
	return 0x08 | uint8(sq.File())
}

func (s IrreversibleState) enPassantPresent() bool {
	return s.EnPassant&0x08 != 0
}

func (s IrreversibleState) enPassantFile() int {
	return int(s.EnPassant & 0x07)
}

// Position represents a complete chess position: piece-centric bitboards,
// a redundant square-centric projection, and a stack of irreversible
// state that do_move/undo_move push and pop in lockstep.
type Position struct {
	Pieces      [2][6]Bitboard // [Color][PieceType]
	Occupied    [2]Bitboard
	AllOccupied Bitboard
	board       [64]Piece // square-centric projection, kept in sync with Pieces

	SideToMove     Color
	FullMoveNumber int
	Hash           uint64
	KingSquare     [2]Square
	Checkers       Bitboard

	irr []IrreversibleState
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	pos, _ := ParseFEN(StartFEN)
	return pos
}

// Copy creates a deep copy of the position, including the irreversible
// state stack.
func (p *Position) Copy() *Position {
	newPos := *p
	newPos.irr = make([]IrreversibleState, len(p.irr))
	copy(newPos.irr, p.irr)
	return &newPos
}

// top returns the current (top-of-stack) irreversible state.
func (p *Position) top() *IrreversibleState {
	return &p.irr[len(p.irr)-1]
}

// StartNewIrreversibleState pushes a duplicate of the current state.
// Must be called exactly once before any irreversible mutation a move
// performs (castling rights, en passant, halfmove clock, captured piece).
func (p *Position) StartNewIrreversibleState() {
	p.irr = append(p.irr, *p.top())
}

// BacktrackIrreversibleState pops one state. Precondition: the caller has
// already reversed the reversible board changes of the matching move.
func (p *Position) BacktrackIrreversibleState() {
	p.irr = p.irr[:len(p.irr)-1]
}

// CastlingRights returns the current castling rights.
func (p *Position) CastlingRights() CastlingRights {
	return p.top().CastlingRights
}

// HasCastlingRight reports whether the given side may castle the given way.
func (p *Position) HasCastlingRight(c Color, kingSide bool) bool {
	return p.top().CastlingRights.CanCastle(c, kingSide)
}

// EnPassantPresent reports whether an en passant capture is available.
func (p *Position) EnPassantPresent() bool {
	return p.top().enPassantPresent()
}

// EnPassantSquare returns the en passant target square, or NoSquare.
func (p *Position) EnPassantSquare() Square {
	s := p.top()
	if !s.enPassantPresent() {
		return NoSquare
	}
	// Rank is implied by side to move: White to move -> rank 6 (Black just
	// double-pushed), Black to move -> rank 3.
	rank := 2
	if p.SideToMove == White {
		rank = 5
	}
	return NewSquare(s.enPassantFile(), rank)
}

// HalfMoveClock returns the 50-move-rule ply counter.
func (p *Position) HalfMoveClock() int {
	return p.top().HalfMoveClock
}

// CapturedPiece returns the piece captured by the move that produced the
// current irreversible state, or NoPiece.
func (p *Position) CapturedPiece() Piece {
	return p.top().CapturedPiece
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	return p.board[sq]
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return p.AllOccupied&SquareBB(sq) == 0
}

// NumberOfPieces returns the count of a given piece on the board.
func (p *Position) NumberOfPieces(piece Piece) int {
	if piece == NoPiece {
		return 0
	}
	return p.Pieces[piece.Color()][piece.Type()].PopCount()
}

// PlacePiece places a piece on a square, clearing it first if occupied,
// and updates both board projections plus the Zobrist hash.
func (p *Position) PlacePiece(sq Square, piece Piece) {
	if !p.IsEmpty(sq) {
		p.RemovePiece(sq)
	}
	if piece == NoPiece {
		return
	}
	c, pt := piece.Color(), piece.Type()
	bb := SquareBB(sq)

	p.Pieces[c][pt] |= bb
	p.Occupied[c] |= bb
	p.AllOccupied |= bb
	p.board[sq] = piece
	p.Hash ^= ZobristPiece(c, pt, sq)

	if pt == King {
		p.KingSquare[c] = sq
	}
}

// RemovePiece removes whatever piece sits on sq and returns it.
func (p *Position) RemovePiece(sq Square) Piece {
	piece := p.board[sq]
	if piece == NoPiece {
		return NoPiece
	}
	c, pt := piece.Color(), piece.Type()
	bb := SquareBB(sq)

	p.Pieces[c][pt] &^= bb
	p.Occupied[c] &^= bb
	p.AllOccupied &^= bb
	p.board[sq] = NoPiece
	p.Hash ^= ZobristPiece(c, pt, sq)

	return piece
}

func (p *Position) movePieceQuiet(from, to Square) {
	piece := p.board[from]
	c, pt := piece.Color(), piece.Type()
	fromBB, toBB := SquareBB(from), SquareBB(to)
	moveBB := fromBB | toBB

	p.Pieces[c][pt] ^= moveBB
	p.Occupied[c] ^= moveBB
	p.AllOccupied ^= moveBB
	p.board[from] = NoPiece
	p.board[to] = piece
	p.Hash ^= ZobristPiece(c, pt, from) ^ ZobristPiece(c, pt, to)

	if pt == King {
		p.KingSquare[c] = to
	}
}

func (p *Position) updateOccupied() {
	p.Occupied[White] = Empty
	p.Occupied[Black] = Empty
	for pt := Pawn; pt <= King; pt++ {
		p.Occupied[White] |= p.Pieces[White][pt]
		p.Occupied[Black] |= p.Pieces[Black][pt]
	}
	p.AllOccupied = p.Occupied[White] | p.Occupied[Black]
}

func (p *Position) findKings() {
	p.KingSquare[White] = p.Pieces[White][King].LSB()
	p.KingSquare[Black] = p.Pieces[Black][King].LSB()
}

func (p *Position) rebuildBoard() {
	for sq := A1; sq <= H8; sq++ {
		p.board[sq] = NoPiece
	}
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				p.board[sq] = NewPiece(pt, c)
			}
		}
	}
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	s := "\n"
	for rank := 7; rank >= 0; rank-- {
		s += fmt.Sprintf("%d  ", rank+1)
		for file := 0; file < 8; file++ {
			sq := NewSquare(file, rank)
			piece := p.PieceAt(sq)
			if piece == NoPiece {
				s += ". "
			} else {
				s += piece.String() + " "
			}
		}
		s += "\n"
	}
	s += "\n   a b c d e f g h\n\n"
	s += fmt.Sprintf("Side to move: %s\n", p.SideToMove)
	s += fmt.Sprintf("Castling: %s\n", p.CastlingRights())
	s += fmt.Sprintf("En passant: %s\n", p.EnPassantSquare())
	s += fmt.Sprintf("Half-move clock: %d\n", p.HalfMoveClock())
	s += fmt.Sprintf("Full move: %d\n", p.FullMoveNumber)
	s += fmt.Sprintf("Hash: %016x\n", p.Hash)
	return s
}

// Validate checks basic structural invariants (§3) that cheap FEN
// parsing does not enforce by construction.
func (p *Position) Validate() error {
	if p.Pieces[White][King].PopCount() != 1 {
		return fmt.Errorf("white must have exactly one king")
	}
	if p.Pieces[Black][King].PopCount() != 1 {
		return fmt.Errorf("black must have exactly one king")
	}
	if p.Occupied[White]&p.Occupied[Black] != 0 {
		return fmt.Errorf("white and black occupancy overlap")
	}
	return nil
}

// InCheck returns true if the side to move is in check.
func (p *Position) InCheck() bool {
	return p.Checkers != 0
}

// Material returns the material balance (positive favors white).
func (p *Position) Material() int {
	score := 0
	for pt := Pawn; pt < King; pt++ {
		score += p.Pieces[White][pt].PopCount() * PieceValue[pt]
		score -= p.Pieces[Black][pt].PopCount() * PieceValue[pt]
	}
	return score
}

// Phase returns an integer 0..256 interpolating between midgame (0) and
// a bare-king endgame (256), per §4.1.
func (p *Position) Phase() int {
	weights := [6]int{0, 1, 1, 2, 4, 0}
	const n = 24 // 4*1 (knight) + 4*1 (bishop) + 4*2 (rook) + 2*4 (queen)

	present := 0
	for pt := Knight; pt <= Queen; pt++ {
		present += weights[pt] * (p.Pieces[White][pt].PopCount() + p.Pieces[Black][pt].PopCount())
	}
	missing := n - present
	if missing < 0 {
		missing = 0
	}
	return (256*missing + n/2) / n
}

// EqualForRepetition reports whether two positions are equivalent for
// threefold-repetition purposes: side to move, castling rights, en
// passant presence/square, and every piece bitboard match. Fullmove
// counter, halfmove clock, captured piece and stack history are excluded.
func (p *Position) EqualForRepetition(o *Position) bool {
	if p.SideToMove != o.SideToMove {
		return false
	}
	if p.CastlingRights() != o.CastlingRights() {
		return false
	}
	if p.EnPassantSquare() != o.EnPassantSquare() {
		return false
	}
	return p.Pieces == o.Pieces
}

// ComputePinned computes pieces pinned to the king for the side to move.
func (p *Position) ComputePinned() Bitboard {
	us := p.SideToMove
	them := us.Other()
	ksq := p.KingSquare[us]
	pinned := Bitboard(0)

	snipers := RookAttacks(ksq, 0) & (p.Pieces[them][Rook] | p.Pieces[them][Queen])
	for snipers != 0 {
		sq := snipers.PopLSB()
		blockers := Between(sq, ksq) & p.AllOccupied
		if blockers.PopCount() == 1 && blockers&p.Occupied[us] != 0 {
			pinned |= blockers
		}
	}

	snipers = BishopAttacks(ksq, 0) & (p.Pieces[them][Bishop] | p.Pieces[them][Queen])
	for snipers != 0 {
		sq := snipers.PopLSB()
		blockers := Between(sq, ksq) & p.AllOccupied
		if blockers.PopCount() == 1 && blockers&p.Occupied[us] != 0 {
			pinned |= blockers
		}
	}

	return pinned
}

// HasNonPawnMaterial returns true if the side to move has non-pawn
// material. Used to avoid null-move pruning in pawn-only endgames where
// zugzwang makes the heuristic unsound.
func (p *Position) HasNonPawnMaterial() bool {
	us := p.SideToMove
	return p.Pieces[us][Knight]|p.Pieces[us][Bishop]|p.Pieces[us][Rook]|p.Pieces[us][Queen] != 0
}

// castlingMask[sq] is ANDed into the current castling rights whenever a
// move touches sq (as origin or destination), clearing the rights tied
// to a king or rook leaving, or a rook being captured on, its home
// square. Untouched squares carry AllCastling, a no-op mask.
var castlingMask [64]CastlingRights

func init() {
	for sq := range castlingMask {
		castlingMask[sq] = AllCastling
	}
	castlingMask[E1] &^= WhiteKingSideCastle | WhiteQueenSideCastle
	castlingMask[A1] &^= WhiteQueenSideCastle
	castlingMask[H1] &^= WhiteKingSideCastle
	castlingMask[E8] &^= BlackKingSideCastle | BlackQueenSideCastle
	castlingMask[A8] &^= BlackQueenSideCastle
	castlingMask[H8] &^= BlackKingSideCastle
}

func kingCastleRookSquares(c Color) (from, to Square) {
	if c == White {
		return H1, F1
	}
	return H8, F8
}

func queenCastleRookSquares(c Color) (from, to Square) {
	if c == White {
		return A1, D1
	}
	return A8, D8
}

// DoMove applies a pseudo-legal move to the position: it pushes a fresh
// irreversible state, updates bitboards/board/hash for the move's
// effect (including castling rook relocation, en passant capture and
// target square, and promotion), adjusts castling rights and the
// halfmove clock, and flips side to move. The caller is responsible for
// legality (DoMove does not check for leaving the king in check).
func (p *Position) DoMove(m Move) {
	us := p.SideToMove
	from, to := m.From(), m.To()
	pt := p.board[from].Type()

	p.StartNewIrreversibleState()
	s := p.top()

	if s.enPassantPresent() {
		p.Hash ^= ZobristEnPassant(s.enPassantFile())
		s.EnPassant = noEnPassant
	}

	captured := NoPiece
	switch m.Type() {
	case EnPassantCapture:
		capSq := NewSquare(to.File(), from.Rank())
		captured = p.RemovePiece(capSq)
		p.movePieceQuiet(from, to)
	case KingCastle:
		p.movePieceQuiet(from, to)
		rookFrom, rookTo := kingCastleRookSquares(us)
		p.movePieceQuiet(rookFrom, rookTo)
	case QueenCastle:
		p.movePieceQuiet(from, to)
		rookFrom, rookTo := queenCastleRookSquares(us)
		p.movePieceQuiet(rookFrom, rookTo)
	case KnightPromotion, BishopPromotion, RookPromotion, QueenPromotion:
		p.RemovePiece(from)
		p.PlacePiece(to, NewPiece(m.Promotion(), us))
	case KnightPromotionCapture, BishopPromotionCapture, RookPromotionCapture, QueenPromotionCapture:
		captured = p.RemovePiece(to)
		p.RemovePiece(from)
		p.PlacePiece(to, NewPiece(m.Promotion(), us))
	case Capture:
		captured = p.RemovePiece(to)
		p.movePieceQuiet(from, to)
	case DoublePawnPush:
		p.movePieceQuiet(from, to)
		epSq := NewSquare(from.File(), (from.Rank()+to.Rank())/2)
		s.EnPassant = packEnPassant(epSq)
		p.Hash ^= ZobristEnPassant(epSq.File())
	default:
		p.movePieceQuiet(from, to)
	}
	s.CapturedPiece = captured

	newRights := s.CastlingRights & castlingMask[from] & castlingMask[to]
	if newRights != s.CastlingRights {
		p.Hash ^= ZobristCastling(s.CastlingRights)
		p.Hash ^= ZobristCastling(newRights)
		s.CastlingRights = newRights
	}

	if pt == Pawn || captured != NoPiece {
		s.HalfMoveClock = 0
	} else {
		s.HalfMoveClock++
	}

	if us == Black {
		p.FullMoveNumber++
	}

	p.SideToMove = us.Other()
	p.Hash ^= ZobristSideToMove()
	p.UpdateCheckers()
}

// UndoMove reverses the exact effect of the DoMove call that produced
// the current irreversible state, restoring bitboards, board, hash,
// castling rights, en passant, halfmove clock, fullmove number and
// side to move.
func (p *Position) UndoMove(m Move) {
	them := p.SideToMove
	us := them.Other()
	p.SideToMove = us
	p.Hash ^= ZobristSideToMove()

	if us == Black {
		p.FullMoveNumber--
	}

	current := p.top()
	prev := p.irr[len(p.irr)-2]
	captured := current.CapturedPiece

	if prev.CastlingRights != current.CastlingRights {
		p.Hash ^= ZobristCastling(current.CastlingRights)
		p.Hash ^= ZobristCastling(prev.CastlingRights)
	}
	if current.enPassantPresent() {
		p.Hash ^= ZobristEnPassant(current.enPassantFile())
	}
	if prev.enPassantPresent() {
		p.Hash ^= ZobristEnPassant(prev.enPassantFile())
	}

	from, to := m.From(), m.To()
	switch m.Type() {
	case EnPassantCapture:
		p.movePieceQuiet(to, from)
		capSq := NewSquare(to.File(), from.Rank())
		p.PlacePiece(capSq, captured)
	case KingCastle:
		p.movePieceQuiet(to, from)
		rookFrom, rookTo := kingCastleRookSquares(us)
		p.movePieceQuiet(rookTo, rookFrom)
	case QueenCastle:
		p.movePieceQuiet(to, from)
		rookFrom, rookTo := queenCastleRookSquares(us)
		p.movePieceQuiet(rookTo, rookFrom)
	case KnightPromotion, BishopPromotion, RookPromotion, QueenPromotion:
		p.RemovePiece(to)
		p.PlacePiece(from, NewPiece(Pawn, us))
	case KnightPromotionCapture, BishopPromotionCapture, RookPromotionCapture, QueenPromotionCapture:
		p.RemovePiece(to)
		p.PlacePiece(from, NewPiece(Pawn, us))
		p.PlacePiece(to, captured)
	case Capture:
		p.movePieceQuiet(to, from)
		p.PlacePiece(to, captured)
	default:
		p.movePieceQuiet(to, from)
	}

	p.BacktrackIrreversibleState()
	p.UpdateCheckers()
}

// nullMoveUndo stores state for unmake of a null move.
type nullMoveUndo struct {
	hash uint64
}

// DoNullMove flips the side to move and clears en passant, pushing a
// fresh irreversible state. Used by null-move pruning.
func (p *Position) DoNullMove() nullMoveUndo {
	undo := nullMoveUndo{hash: p.Hash}

	p.StartNewIrreversibleState()
	s := p.top()
	if s.enPassantPresent() {
		p.Hash ^= ZobristEnPassant(s.enPassantFile())
		s.EnPassant = noEnPassant
	}
	s.CapturedPiece = NoPiece

	p.SideToMove = p.SideToMove.Other()
	p.Hash ^= ZobristSideToMove()
	p.UpdateCheckers()

	return undo
}

// UndoNullMove undoes a null move.
func (p *Position) UndoNullMove(u nullMoveUndo) {
	p.BacktrackIrreversibleState()
	p.SideToMove = p.SideToMove.Other()
	p.Hash = u.hash
	p.UpdateCheckers()
}
