// Package engine implements the chess AI search engine.
package engine

import (
	"sync"

	"github.com/hailam/chessplay/internal/board"
)

// Engine is the UCI collaborator's handle onto the single search worker,
// per §5: one foreground interface thread (the UCI loop, owning this
// Engine) and at most one worker goroutine running RunSearch at a time.
type Engine struct {
	tt      *TranspositionTable
	running *RunningFlag

	mu     sync.Mutex // guards wg/active against concurrent Go/Stop calls
	wg     sync.WaitGroup
	active bool
}

// NewEngine creates an engine with a transposition table sized to
// hashSizeMB megabytes.
func NewEngine(hashSizeMB int) *Engine {
	return &Engine{
		tt:      NewTranspositionTable(hashSizeMB),
		running: &RunningFlag{},
	}
}

// ResizeHash reallocates the transposition table. Per §5, this is only
// valid when no search is in flight; the UCI command loop drops
// `ucinewgame`/`setoption` entirely while IsSearching is true, so its
// handlers never call this concurrently with a search.
func (e *Engine) ResizeHash(sizeMB int) {
	e.tt.Resize(sizeMB)
}

// HashFull returns the permille of the transposition table in use.
func (e *Engine) HashFull() int {
	return e.tt.HashFull()
}

// IsSearching reports whether a search is currently running.
func (e *Engine) IsSearching() bool {
	return e.running.Get()
}

// Go starts a search on a new worker goroutine and returns immediately;
// per §6, a `go` received while a search is running is ignored. The
// caller retains ownership of infoCh/bestMoveCh and should drain them.
func (e *Engine) Go(pos *board.Position, gameMoves []board.Move, limits UCILimits, infoCh chan<- SearchInfo, bestMoveCh chan<- board.Move) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active {
		return false
	}

	e.running.Set(true)
	e.active = true
	e.wg.Add(1)

	arg := &SearchArgument{
		Pos:        pos,
		GameMoves:  gameMoves,
		Limits:     limits,
		TT:         e.tt,
		InfoCh:     infoCh,
		BestMoveCh: bestMoveCh,
		Running:    e.running,
	}

	go func() {
		defer e.wg.Done()
		RunSearch(arg)
		e.mu.Lock()
		e.active = false
		e.mu.Unlock()
	}()

	return true
}

// Stop clears the running flag and joins the worker, per §6's `stop`.
// The worker emits bestmove on exit; Stop itself sends nothing.
func (e *Engine) Stop() {
	e.running.Set(false)
	e.wg.Wait()
}

// Quit stops any running search and frees the transposition table, per
// §6's `quit`.
func (e *Engine) Quit() {
	e.Stop()
	e.tt = nil
}
