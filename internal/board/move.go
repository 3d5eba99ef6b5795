package board

import "fmt"

// MoveType tags a Move with the specific thing it does to the board.
// The tag alone is enough to recover is_capture/is_promotion/is_castling
// without consulting the position, which keeps undo cheap.
type MoveType uint8

const (
	Other MoveType = iota
	DoublePawnPush
	KingCastle
	QueenCastle
	Capture
	EnPassantCapture
	KnightPromotion
	BishopPromotion
	RookPromotion
	QueenPromotion
	KnightPromotionCapture
	BishopPromotionCapture
	RookPromotionCapture
	QueenPromotionCapture
)

// promotionType maps a promotion MoveType tag (capture or not) to the
// PieceType it produces.
var promotionType = [14]PieceType{
	Pawn, Pawn, Pawn, Pawn, Pawn, Pawn, // Other..EnPassantCapture: not promotions
	Knight, Bishop, Rook, Queen,
	Knight, Bishop, Rook, Queen,
}

// Move encodes a chess move in 16 bits:
// bits 0-5:   from square (0-63)
// bits 6-11:  to square (0-63)
// bits 12-15: MoveType tag
type Move uint16

// NoMove represents an invalid or null move.
const NoMove Move = 0

func pack(from, to Square, t MoveType) Move {
	return Move(from) | Move(to)<<6 | Move(t)<<12
}

// NewMove creates a quiet, non-special move.
func NewMove(from, to Square) Move {
	return pack(from, to, Other)
}

// NewDoublePawnPush creates a two-square pawn push (sets en passant).
func NewDoublePawnPush(from, to Square) Move {
	return pack(from, to, DoublePawnPush)
}

// NewCapture creates a plain (non-promotion, non-en-passant) capture.
func NewCapture(from, to Square) Move {
	return pack(from, to, Capture)
}

// NewEnPassant creates an en passant capture move.
func NewEnPassant(from, to Square) Move {
	return pack(from, to, EnPassantCapture)
}

// NewKingCastle creates a kingside castling move (king's own movement).
func NewKingCastle(from, to Square) Move {
	return pack(from, to, KingCastle)
}

// NewQueenCastle creates a queenside castling move (king's own movement).
func NewQueenCastle(from, to Square) Move {
	return pack(from, to, QueenCastle)
}

// NewPromotion creates a non-capturing promotion move.
func NewPromotion(from, to Square, promo PieceType) Move {
	return pack(from, to, promotionMoveType(promo, false))
}

// NewPromotionCapture creates a capturing promotion move.
func NewPromotionCapture(from, to Square, promo PieceType) Move {
	return pack(from, to, promotionMoveType(promo, true))
}

func promotionMoveType(promo PieceType, capture bool) MoveType {
	var base MoveType
	switch promo {
	case Knight:
		base = KnightPromotion
	case Bishop:
		base = BishopPromotion
	case Rook:
		base = RookPromotion
	case Queen:
		base = QueenPromotion
	}
	if capture {
		return base + (KnightPromotionCapture - KnightPromotion)
	}
	return base
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// Type returns the move's tag.
func (m Move) Type() MoveType {
	return MoveType(m >> 12)
}

// Promotion returns the promoted-to piece type. Only meaningful when
// IsPromotion() is true.
func (m Move) Promotion() PieceType {
	return promotionType[m.Type()]
}

// IsPromotion reports whether the move promotes a pawn.
func (m Move) IsPromotion() bool {
	t := m.Type()
	return t >= KnightPromotion && t <= QueenPromotionCapture
}

// IsCapture reports whether the move removes an enemy piece.
func (m Move) IsCapture() bool {
	switch m.Type() {
	case Capture, EnPassantCapture, KnightPromotionCapture, BishopPromotionCapture, RookPromotionCapture, QueenPromotionCapture:
		return true
	default:
		return false
	}
}

// IsCastling reports whether the move is a king/queen side castle.
func (m Move) IsCastling() bool {
	t := m.Type()
	return t == KingCastle || t == QueenCastle
}

// IsEnPassant reports whether the move is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Type() == EnPassantCapture
}

// IsDoublePawnPush reports whether the move is a two-square pawn push.
func (m Move) IsDoublePawnPush() bool {
	return m.Type() == DoublePawnPush
}

// IsQuiet reports whether the move is not a capture.
func (m Move) IsQuiet() bool {
	return !m.IsCapture()
}

// String returns the UCI long-algebraic form of the move (e.g. "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}

	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(m.Promotion().Char())
	}
	return s
}

// ParseMove parses a UCI long-algebraic move string against a position,
// recovering the correct MoveType tag by consulting the board.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("no piece at %s", from)
	}
	pt := piece.Type()
	captures := !pos.IsEmpty(to)

	if len(s) == 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
		if captures {
			return NewPromotionCapture(from, to, promo), nil
		}
		return NewPromotion(from, to, promo), nil
	}

	if pt == King {
		if from == E1 && to == G1 || from == E8 && to == G8 {
			return NewKingCastle(from, to), nil
		}
		if from == E1 && to == C1 || from == E8 && to == C8 {
			return NewQueenCastle(from, to), nil
		}
	}

	if pt == Pawn {
		if to == pos.EnPassantSquare() {
			return NewEnPassant(from, to), nil
		}
		if abs(to.Rank()-from.Rank()) == 2 {
			return NewDoublePawnPush(from, to), nil
		}
	}

	if captures {
		return NewCapture(from, to), nil
	}
	return NewMove(from, to), nil
}

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set sets the move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}
