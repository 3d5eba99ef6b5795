package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string and returns a Position. It rejects
// malformed input (wrong field count, bad characters, out-of-range
// en passant rank) but does not enforce chess legality.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return nil, fmt.Errorf("%w: need at least 4 fields, got %d", ErrMalformedFEN, len(parts))
	}

	pos := &Position{FullMoveNumber: 1}
	pos.KingSquare[White] = NoSquare
	pos.KingSquare[Black] = NoSquare
	for sq := A1; sq <= H8; sq++ {
		pos.board[sq] = NoPiece
	}

	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, err
	}

	switch parts[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return nil, fmt.Errorf("%w: invalid side to move: %s", ErrMalformedFEN, parts[1])
	}

	castling, err := parseCastlingRights(parts[2])
	if err != nil {
		return nil, err
	}

	var enPassant uint8 = noEnPassant
	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid en passant square: %s", ErrMalformedFEN, parts[3])
		}
		if sq.Rank() != 2 && sq.Rank() != 5 {
			return nil, fmt.Errorf("%w: en passant square must be on rank 3 or 6: %s", ErrMalformedFEN, parts[3])
		}
		enPassant = packEnPassant(sq)
	}

	halfMove := 0
	if len(parts) > 4 {
		halfMove, err = strconv.Atoi(parts[4])
		if err != nil || halfMove < 0 {
			return nil, fmt.Errorf("%w: invalid half-move clock: %s", ErrMalformedFEN, parts[4])
		}
	}

	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil || fmn < 1 {
			return nil, fmt.Errorf("%w: invalid full-move number: %s", ErrMalformedFEN, parts[5])
		}
		pos.FullMoveNumber = fmn
	}

	pos.updateOccupied()
	pos.findKings()
	pos.irr = []IrreversibleState{{
		CastlingRights: castling,
		EnPassant:      enPassant,
		HalfMoveClock:  halfMove,
		CapturedPiece:  NoPiece,
	}}
	pos.Hash = pos.computeHash()
	pos.UpdateCheckers()

	return pos, nil
}

func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: need 8 ranks, got %d", ErrMalformedFEN, len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("%w: too many squares in rank %d", ErrMalformedFEN, rank+1)
			}
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			piece := PieceFromChar(byte(c))
			if piece == NoPiece {
				return fmt.Errorf("%w: invalid piece character: %c", ErrMalformedFEN, c)
			}
			sq := NewSquare(file, rank)
			c, pt := piece.Color(), piece.Type()
			bb := SquareBB(sq)
			pos.Pieces[c][pt] |= bb
			pos.board[sq] = piece
			file++
		}

		if file != 8 {
			return fmt.Errorf("%w: invalid number of squares in rank %d: got %d", ErrMalformedFEN, rank+1, file)
		}
	}

	return nil
}

func parseCastlingRights(castling string) (CastlingRights, error) {
	if castling == "-" {
		return NoCastling, nil
	}

	var cr CastlingRights
	seen := map[rune]bool{}
	for _, c := range castling {
		if seen[c] {
			return 0, fmt.Errorf("%w: duplicate castling character: %c", ErrMalformedFEN, c)
		}
		seen[c] = true
		switch c {
		case 'K':
			cr |= WhiteKingSideCastle
		case 'Q':
			cr |= WhiteQueenSideCastle
		case 'k':
			cr |= BlackKingSideCastle
		case 'q':
			cr |= BlackQueenSideCastle
		default:
			return 0, fmt.Errorf("%w: invalid castling character: %c", ErrMalformedFEN, c)
		}
	}
	return cr, nil
}

// ToFEN returns the FEN representation of the position.
func (p *Position) ToFEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			sq := NewSquare(file, rank)
			piece := p.PieceAt(sq)
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(p.CastlingRights().String())

	sb.WriteByte(' ')
	sb.WriteString(p.EnPassantSquare().String())

	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.HalfMoveClock()))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber))

	return sb.String()
}

// computeHash computes the Zobrist hash for the position from scratch.
// Used only at parse time; do_move/undo_move maintain Hash incrementally.
func (p *Position) computeHash() uint64 {
	var hash uint64

	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				hash ^= zobristPiece[c][pt][sq]
			}
		}
	}

	if p.SideToMove == Black {
		hash ^= zobristSideToMove
	}
	hash ^= zobristCastling[p.CastlingRights()]
	if p.EnPassantPresent() {
		hash ^= zobristEnPassant[p.top().enPassantFile()]
	}

	return hash
}
