package board

import "errors"

// ErrMalformedFEN is returned by ParseFEN when the input does not parse
// as a syntactically valid FEN string. It does not indicate an illegal
// chess position — create_from_fen rejects malformed text but does not
// enforce chess legality (per §4.1).
var ErrMalformedFEN = errors.New("malformed FEN")

// ErrInvalidMove marks a long-algebraic token that does not correspond to
// any legal move; the UCI position handler reports it when it drops a
// command for that reason. ParseMove does not check legality and returns
// its own parse errors.
var ErrInvalidMove = errors.New("invalid move")
