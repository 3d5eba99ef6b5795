package engine

import (
	"sync"
	"time"

	"github.com/hailam/chessplay/internal/board"
)

// Search-window and ply bounds shared across the engine package, per §4.4.
const (
	Infinity  = 32767
	MateScore = Infinity
	MaxPly    = 128

	futilityMargin = 175
)

// RunningFlag is the mutex-guarded boolean the UCI interface thread and
// the search worker share, per §5's concurrency model. stop and quit
// acquire the mutex, clear it, and join the worker; the worker polls it
// at the top of every negamax/quiescence call.
type RunningFlag struct {
	mu      sync.Mutex
	running bool
}

// Set assigns the flag under lock.
func (r *RunningFlag) Set(v bool) {
	r.mu.Lock()
	r.running = v
	r.mu.Unlock()
}

// Get reads the flag under lock.
func (r *RunningFlag) Get() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// SearchArgument is the contract handed to RunSearch by the UCI
// collaborator: the position to search, the moves already played in the
// game (for repetition detection), the go-command limits, the two
// output channels, and the shared running flag.
type SearchArgument struct {
	Pos        *board.Position
	GameMoves  []board.Move
	Limits     UCILimits
	TT         *TranspositionTable
	InfoCh     chan<- SearchInfo
	BestMoveCh chan<- board.Move
	Running    *RunningFlag
}

// SearchInfo mirrors one UCI `info` line.
type SearchInfo struct {
	Depth      int
	Nodes      uint64
	NPS        uint64
	TimeMS     int64
	ScoreCP    int
	MateIn     int
	IsMate     bool
	LowerBound bool
}

// Searcher owns all per-search mutable state: the position being
// searched, the transposition table it shares with no one else while a
// search runs, the killer table, and the repetition tracker. Killer
// tables and repetition counters live here, not in the transposition
// table, per §5.
type Searcher struct {
	pos     *board.Position
	tt      *TranspositionTable
	orderer *MoveOrderer
	rep     *repetitionTracker

	limits  UCILimits
	running *RunningFlag

	nodes        uint64
	startTime    time.Time
	stopTime     time.Time
	timed        bool
	lastBestMove board.Move
}

// NewSearcher creates a Searcher bound to tt. A fresh Searcher (and thus
// a fresh killer table and repetition tracker) is created for every
// search.
func NewSearcher(tt *TranspositionTable) *Searcher {
	return &Searcher{
		tt:      tt,
		orderer: NewMoveOrderer(),
		rep:     &repetitionTracker{},
	}
}

// Nodes returns the number of nodes visited by the most recent search.
func (s *Searcher) Nodes() uint64 { return s.nodes }

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// mateDistanceInMoves converts a mate-bound score into UCI's "mate in N
// full moves", signed by which side delivers it.
func mateDistanceInMoves(score int) int {
	if score > 0 {
		plies := Infinity - score
		return (plies + 1) / 2
	}
	plies := Infinity + score
	return -((plies + 1) / 2)
}

// RunSearch is the iterative-deepening entry point (`run_search`). It
// runs synchronously on the calling goroutine; Engine.Go runs it on the
// single worker goroutine and Engine.Stop joins it after clearing
// arg.Running.
func RunSearch(arg *SearchArgument) {
	s := NewSearcher(arg.TT)
	s.pos = arg.Pos
	s.limits = arg.Limits
	s.running = arg.Running
	s.rep.seed(arg.Pos, arg.GameMoves)

	s.startTime = time.Now()
	s.stopTime, s.timed = AllocateTime(arg.Limits, arg.Pos.SideToMove, arg.Pos.Phase(), s.startTime)

	if arg.Limits.Perft > 0 {
		arg.Pos.Perft(arg.Limits.Perft)
		arg.Running.Set(false)
		sendBestMove(arg.BestMoveCh, board.NoMove)
		return
	}

	rootMoves := arg.Pos.GeneratePseudoLegalMoves()
	anyLegal := false
	for i := 0; i < rootMoves.Len() && !anyLegal; i++ {
		anyLegal = arg.Pos.IsLegal(rootMoves.Get(i))
	}
	if !anyLegal {
		arg.Running.Set(false)
		sendBestMove(arg.BestMoveCh, board.NoMove)
		return
	}

	maxDepth := MaxPly
	if arg.Limits.Depth > 0 && !arg.Limits.Infinite && arg.Limits.Mate == 0 {
		maxDepth = arg.Limits.Depth
		if maxDepth > MaxPly {
			maxDepth = MaxPly
		}
	}

	bestMove := board.NoMove
	for depth := 1; depth <= maxDepth; depth++ {
		if !arg.Running.Get() {
			break
		}

		move, score, foundMate, completed := s.rootSearch(depth, arg.Limits.Mate)
		if move != board.NoMove {
			bestMove = move
		}

		elapsed := time.Since(s.startTime)
		info := SearchInfo{
			Depth:  depth,
			Nodes:  s.nodes,
			TimeMS: elapsed.Milliseconds(),
		}
		if elapsed > 0 {
			info.NPS = uint64(float64(s.nodes) / elapsed.Seconds())
		}
		if absInt(score) >= Infinity-MaxPly {
			info.IsMate = true
			info.MateIn = mateDistanceInMoves(score)
		} else {
			info.ScoreCP = score
		}
		if !completed {
			info.LowerBound = true
		}
		sendInfo(arg.InfoCh, info)

		if !completed {
			break
		}
		if foundMate {
			break
		}
	}

	arg.Running.Set(false)
	sendBestMove(arg.BestMoveCh, bestMove)
}

func sendInfo(ch chan<- SearchInfo, info SearchInfo) {
	if ch != nil {
		ch <- info
	}
}

func sendBestMove(ch chan<- board.Move, m board.Move) {
	if ch != nil {
		ch <- m
	}
}

// rootSearch performs one iterative-deepening iteration at depth,
// returning the best move found, its score, whether a mate within the
// requested bound was found, and whether the iteration ran to
// completion. completed is false when cancelled mid-iteration; the
// move and score then reflect only the root moves fully searched
// before cancellation (the interrupted move is not scored), and when
// none was, the interrupted move itself is returned as the fallback
// bestmove.
func (s *Searcher) rootSearch(depth int, mateLimit int) (bestMove board.Move, bestScore int, foundMate bool, completed bool) {
	alpha, beta := -Infinity, Infinity
	bestScore = -Infinity
	bestMove = board.NoMove

	moves := s.pos.GeneratePseudoLegalMoves()
	scores := s.orderer.ScoreMoves(s.pos, moves, 0, s.lastBestMove)

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		m := moves.Get(i)
		if !s.pos.IsLegal(m) {
			continue
		}

		irr := isIrreversibleMove(s.pos, m)
		s.pos.DoMove(m)
		s.rep.push(s.pos.Hash, irr)
		score := -s.negamax(depth-1, 1, -beta, -alpha)
		s.rep.pop(irr)
		s.pos.UndoMove(m)

		if !s.running.Get() {
			if bestMove == board.NoMove {
				bestMove = m
			}
			s.lastBestMove = bestMove
			return bestMove, bestScore, false, false
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
		}
		if score > alpha {
			alpha = score
		}

		if mateLimit > 0 && bestScore >= Infinity-MaxPly {
			foundMate = true
			break
		}
	}

	s.lastBestMove = bestMove
	return bestMove, bestScore, foundMate, true
}

// shouldStop performs step 1's periodic checks: a clock read every 8192
// nodes when timed, a node-budget check, and reports whether running has
// since been cleared by any of these or by an external stop.
func (s *Searcher) shouldStop() bool {
	if s.nodes&8191 == 0 && s.timed && time.Now().After(s.stopTime) {
		s.running.Set(false)
	}
	if s.limits.Nodes > 0 && s.nodes >= s.limits.Nodes {
		s.running.Set(false)
	}
	return !s.running.Get()
}

// negamax implements §4.4's nine-step negamax with alpha-beta, null-move
// pruning, futility/reverse-futility pruning, and TT-move/killer/capture
// move ordering scored by EvaluateMove.
func (s *Searcher) negamax(depth, ply, alpha, beta int) int {
	if ply > MaxPly {
		s.running.Set(false)
	}
	if s.shouldStop() {
		return alpha
	}
	s.nodes++

	if ply > 0 && s.rep.isRepeated() {
		return 0
	}

	hash := s.pos.Hash
	entry, found := s.tt.Probe(hash)
	if found && int(entry.Depth) >= depth {
		score := AdjustScoreFromTT(int(entry.Score), ply)
		switch entry.Type {
		case Exact:
			return score
		case Cut:
			if score >= beta {
				return score
			}
		case AllAlphaUnchanged:
			if score <= alpha {
				return score
			}
		}
	}

	if depth <= 0 {
		return s.quiescence(ply, alpha, beta)
	}

	inCheck := s.pos.InCheck()

	if !inCheck && depth > 4 && s.pos.HasNonPawnMaterial() {
		undo := s.pos.DoNullMove()
		score := -s.negamax(depth-4, ply+1, -beta, -alpha)
		s.pos.UndoNullMove(undo)
		if !s.running.Get() {
			return alpha
		}
		if score >= beta {
			return beta
		}
	}

	ttMove := board.NoMove
	if found && entry.Type == Exact {
		ttMove = entry.BestMove
	}

	moves := s.pos.GeneratePseudoLegalMoves()
	scores := s.orderer.ScoreMoves(s.pos, moves, ply, ttMove)

	pruningEligible := !inCheck && absInt(alpha) < Infinity-MaxPly && absInt(beta) < Infinity-MaxPly

	bestScore := -Infinity
	bestMove := board.NoMove
	nodeType := AllAlphaUnchanged
	legalMoves := 0

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		m := moves.Get(i)
		if !s.pos.IsLegal(m) {
			continue
		}
		legalMoves++

		if pruningEligible && m.IsQuiet() {
			eval := Evaluate(s.pos)
			if eval+futilityMargin*depth <= alpha {
				return eval
			}
			if eval-futilityMargin*depth >= beta {
				return eval - futilityMargin*depth
			}
		}

		irr := isIrreversibleMove(s.pos, m)
		s.pos.DoMove(m)
		s.rep.push(s.pos.Hash, irr)
		score := -s.negamax(depth-1, ply+1, -beta, -alpha)
		s.rep.pop(irr)
		s.pos.UndoMove(m)

		if !s.running.Get() {
			return alpha
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
		}
		if score > alpha {
			alpha = score
			nodeType = Exact
		}
		if alpha >= beta {
			if m.IsQuiet() {
				s.orderer.UpdateKillers(m, ply)
			}
			nodeType = Cut
			break
		}
	}

	if legalMoves == 0 {
		if inCheck {
			return -Infinity + ply
		}
		return 0
	}

	if s.running.Get() {
		s.tt.Store(hash, depth, AdjustScoreToTT(bestScore, ply), nodeType, bestMove)
	}

	return bestScore
}

// quiescence implements §4.4's seven-step capture-only search.
func (s *Searcher) quiescence(ply, alpha, beta int) int {
	if ply > MaxPly {
		s.running.Set(false)
	}
	if s.shouldStop() {
		return alpha
	}
	s.nodes++

	if s.rep.isRepeated() {
		return 0
	}

	hash := s.pos.Hash
	entry, found := s.tt.Probe(hash)
	if found {
		score := AdjustScoreFromTT(int(entry.Score), ply)
		switch entry.Type {
		case Exact:
			return score
		case Cut:
			if score >= beta {
				return score
			}
		case AllAlphaUnchanged:
			if score <= alpha {
				return score
			}
		}
	}

	inCheck := s.pos.InCheck()
	standPat := Evaluate(s.pos)
	if standPat >= beta && !inCheck {
		return standPat
	}
	origAlpha := alpha
	if standPat > alpha {
		alpha = standPat
	}

	captures := s.pos.GenerateCaptures()
	scores := make([]int, captures.Len())
	for i := 0; i < captures.Len(); i++ {
		scores[i] = EvaluateMove(s.pos, captures.Get(i))
	}

	bestScore := standPat
	bestMove := board.NoMove
	anyLegal := false

	for i := 0; i < captures.Len(); i++ {
		PickMove(captures, scores, i)
		m := captures.Get(i)
		if !s.pos.IsLegal(m) {
			continue
		}
		anyLegal = true

		irr := isIrreversibleMove(s.pos, m)
		s.pos.DoMove(m)
		s.rep.push(s.pos.Hash, irr)
		score := -s.quiescence(ply+1, -beta, -alpha)
		s.rep.pop(irr)
		s.pos.UndoMove(m)

		if !s.running.Get() {
			return alpha
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}

	if !anyLegal && !s.pos.HasLegalMoves() {
		if inCheck {
			return -Infinity + ply
		}
		return 0
	}

	if s.running.Get() {
		nodeType := AllAlphaUnchanged
		if bestScore > origAlpha {
			nodeType = Exact
		}
		if alpha >= beta {
			nodeType = Cut
		}
		s.tt.Store(hash, 0, AdjustScoreToTT(bestScore, ply), nodeType, bestMove)
	}

	return bestScore
}
