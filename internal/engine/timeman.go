package engine

import (
	"math"
	"time"

	"github.com/hailam/chessplay/internal/board"
)

// UCILimits mirrors the UCI `go` command's parameters, the search
// argument's flags and limits per §4.4.
type UCILimits struct {
	Infinite  bool
	Depth     int
	Mate      int
	MovesToGo int
	Perft     int
	Nodes     uint64
	Time      [2]time.Duration
	Inc       [2]time.Duration
	MoveTime  time.Duration
}

// AllocateTime computes the stop deadline for a search per §4.4's time
// allocation formula, called once per search. timed is false when no
// time field was set at all, meaning the search is untimed.
func AllocateTime(limits UCILimits, us board.Color, phase int, now time.Time) (stopTime time.Time, timed bool) {
	if limits.MoveTime > 0 {
		return now.Add(limits.MoveTime), true
	}

	if limits.Time[us] == 0 && limits.Inc[us] == 0 {
		return time.Time{}, false
	}

	t := float64(limits.Time[us].Milliseconds()) + float64(limits.Inc[us].Milliseconds())

	var allocated float64
	if limits.MovesToGo == 1 {
		secs := t / 1000
		allocated = t * math.Pow(secs, 1.1) / math.Pow(secs+1, 1.1)
	} else {
		max := limits.MovesToGo
		if max <= 0 || max > 40 {
			max = 40
		}
		divisor := (float64(max)*float64(256-phase) + 8*float64(phase)) / 256
		if divisor < 1 {
			divisor = 1
		}
		allocated = t / divisor
	}

	if allocated < 0 {
		allocated = 0
	}
	return now.Add(time.Duration(allocated * float64(time.Millisecond))), true
}
