// Package uci implements the Universal Chess Interface protocol
// described in §6: a line-oriented command loop that owns the single
// foreground thread and hands searches off to the one worker goroutine
// inside engine.Engine.
package uci

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/engine"
	"github.com/hailam/chessplay/internal/session"
)

const (
	minHashMB = 1
	maxHashMB = 32768
)

// UCI implements the command loop. It owns the only board.Position
// mutated during a search and the sole *engine.Engine, per §5: the
// interface thread must not probe the TT or touch the position while a
// worker search is in flight.
type UCI struct {
	engine *engine.Engine
	log    *zap.SugaredLogger
	rec    *session.Recorder
	seq    uint64

	position  *board.Position
	gameMoves []board.Move

	hashMB int
}

// New creates a UCI handler around eng, starting with the initial
// position.
func New(eng *engine.Engine, log *zap.SugaredLogger, hashMB int) *UCI {
	return &UCI{
		engine:   eng,
		log:      log,
		position: board.NewPosition(),
		hashMB:   hashMB,
	}
}

// Run reads commands from stdin until "quit" or EOF.
func (u *UCI) Run() {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		// §5: commands other than stop and quit are dropped while a
		// search is running, rather than serviced or used to force a stop.
		if u.engine.IsSearching() && cmd != "stop" && cmd != "quit" {
			continue
		}

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			fmt.Println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleQuit()
			return
		case "setoption":
			u.handleSetOption(args)
		case "d":
			fmt.Println(u.position.String())
		case "perft":
			u.handlePerft(args)
		default:
			// Unknown commands are silently ignored, per §7.
		}
	}
	u.handleQuit()
}

func (u *UCI) handleUCI() {
	fmt.Println("id name chessplay-uci")
	fmt.Println("id author chessplay")
	fmt.Println()
	fmt.Printf("option name Hash type spin default %d min %d max %d\n", u.hashMB, minHashMB, maxHashMB)
	fmt.Println("uciok")
}

func (u *UCI) handleNewGame() {
	u.engine.ResizeHash(u.hashMB)
	u.position = board.NewPosition()
	u.gameMoves = nil
}

// handlePosition implements:
//
//	position startpos [moves ...]
//	position fen <6 fields> [moves ...]
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	var newPos *board.Position
	var moveStart int
	switch args[0] {
	case "startpos":
		newPos = board.NewPosition()
		moveStart = 1
	case "fen":
		fenEnd := len(args)
		for i := 1; i < len(args); i++ {
			if args[i] == "moves" {
				fenEnd = i
				break
			}
		}
		if fenEnd-1 < 6 {
			return
		}
		fenStr := strings.Join(args[1:fenEnd], " ")
		pos, err := board.ParseFEN(fenStr)
		if err != nil {
			u.log.Debugw("invalid FEN in position command", "fen", fenStr, "error", err)
			return
		}
		newPos = pos
		moveStart = fenEnd
	default:
		return
	}

	// Validate the whole move list against the scratch position before
	// committing anything: an invalid token must drop the command
	// entirely, per §7, rather than leave a partially applied position.
	var newMoves []board.Move
	for i := moveStart; i < len(args); i++ {
		if args[i] == "moves" {
			continue
		}
		move, err := board.ParseMove(args[i], newPos)
		if err != nil {
			u.log.Debugw("invalid move token in position command", "token", args[i], "error", err)
			return
		}
		if !newPos.GenerateLegalMoves().Contains(move) {
			u.log.Debugw("invalid move token in position command", "token", args[i], "error", board.ErrInvalidMove)
			return
		}
		newMoves = append(newMoves, move)
		newPos.DoMove(move)
	}

	u.position = newPos
	u.gameMoves = newMoves
}

// handleGo parses the go-command limits per §6 and starts a search on
// the engine's single worker goroutine, draining its info/bestmove
// channels on a dedicated goroutine of its own so the interface thread
// keeps reading stdin.
func (u *UCI) handleGo(args []string) {
	limits := parseGoOptions(args)

	infoCh := make(chan engine.SearchInfo, 64)
	bestMoveCh := make(chan board.Move, 1)

	pos := u.position.Copy()
	gameMoves := append([]board.Move(nil), u.gameMoves...)

	if !u.engine.Go(pos, gameMoves, limits, infoCh, bestMoveCh) {
		// A `go` received while a search is already running is ignored.
		return
	}

	go func() {
		for info := range infoCh {
			sendInfo(info)
		}
	}()

	go func() {
		best := <-bestMoveCh
		fmt.Printf("bestmove %s\n", best.String())
		u.recordGo(pos, gameMoves, best)
		close(infoCh)
	}()
}

func (u *UCI) recordGo(pos *board.Position, gameMoves []board.Move, best board.Move) {
	if u.rec == nil {
		return
	}
	moveStrs := make([]string, len(gameMoves))
	for i, m := range gameMoves {
		moveStrs[i] = m.String()
	}
	u.seq++
	rec := session.Record{
		FEN:      pos.ToFEN(),
		Moves:    moveStrs,
		BestMove: best.String(),
	}
	if err := u.rec.Append(u.seq, rec); err != nil {
		u.log.Warnw("session log append failed", "error", err)
	}
}

// parseGoOptions parses the limits named in §6's `go` command table.
func parseGoOptions(args []string) engine.UCILimits {
	var limits engine.UCILimits

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "infinite":
			limits.Infinite = true
		case "depth":
			if i+1 < len(args) {
				limits.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "nodes":
			if i+1 < len(args) {
				n, _ := strconv.ParseUint(args[i+1], 10, 64)
				limits.Nodes = n
				i++
			}
		case "mate":
			if i+1 < len(args) {
				limits.Mate, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "movestogo":
			if i+1 < len(args) {
				limits.MovesToGo, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "movetime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				limits.MoveTime = time.Duration(ms) * time.Millisecond
				i++
			}
		case "wtime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				limits.Time[board.White] = time.Duration(ms) * time.Millisecond
				i++
			}
		case "btime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				limits.Time[board.Black] = time.Duration(ms) * time.Millisecond
				i++
			}
		case "winc":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				limits.Inc[board.White] = time.Duration(ms) * time.Millisecond
				i++
			}
		case "binc":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				limits.Inc[board.Black] = time.Duration(ms) * time.Millisecond
				i++
			}
		case "perft":
			if i+1 < len(args) {
				limits.Perft, _ = strconv.Atoi(args[i+1])
				i++
			}
		}
	}

	return limits
}

// sendInfo prints one `info` line in the exact key order of §6: depth
// nodes [score cp|mate] [lowerbound] nps time.
func sendInfo(info engine.SearchInfo) {
	var b strings.Builder
	fmt.Fprintf(&b, "info depth %d nodes %d", info.Depth, info.Nodes)

	if info.IsMate {
		fmt.Fprintf(&b, " score mate %d", info.MateIn)
	} else {
		fmt.Fprintf(&b, " score cp %d", info.ScoreCP)
	}

	if info.LowerBound {
		b.WriteString(" lowerbound")
	}

	fmt.Fprintf(&b, " nps %d time %d", info.NPS, info.TimeMS)

	fmt.Println(b.String())
}

// handleStop implements §6's `stop`: clear running, join the worker.
// The worker's own goroutine (started in handleGo) prints bestmove.
func (u *UCI) handleStop() {
	u.engine.Stop()
}

func (u *UCI) handleQuit() {
	u.engine.Stop()
	u.engine.Quit()
	if u.rec != nil {
		u.rec.Close()
	}
}

// handleSetOption implements §6: only Hash is exposed. SessionLog is a
// chessplay-specific addition gating the optional diagnostic recorder;
// every other option name is silently ignored.
func (u *UCI) handleSetOption(args []string) {
	name, value := parseSetOption(args)

	switch strings.ToLower(name) {
	case "hash":
		mb, err := strconv.Atoi(value)
		if err != nil || mb < minHashMB || mb > maxHashMB {
			return
		}
		u.hashMB = mb
		u.engine.ResizeHash(mb)
		u.log.Infow("hash table resized", "size", humanize.Bytes(uint64(mb)*1024*1024))
	case "sessionlog":
		if value == "" {
			return
		}
		rec, err := session.Open(value)
		if err != nil {
			u.log.Warnw("failed to open session log", "path", value, "error", err)
			return
		}
		if u.rec != nil {
			u.rec.Close()
		}
		u.rec = rec
	}
}

func parseSetOption(args []string) (name, value string) {
	readingName, readingValue := false, false
	for _, arg := range args {
		switch arg {
		case "name":
			readingName, readingValue = true, false
		case "value":
			readingName, readingValue = false, true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}
	return name, value
}

func (u *UCI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		depth, _ = strconv.Atoi(args[0])
	}

	start := time.Now()
	nodes := u.position.Perft(depth)
	elapsed := time.Since(start)

	fmt.Printf("Nodes: %d\n", nodes)
	fmt.Printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		fmt.Printf("NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
}
