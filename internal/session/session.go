// Package session provides an optional append-only diagnostic log of
// the positions searched and the moves returned for them. It is purely
// additive: the UCI layer writes to it after each go/bestmove pair but
// never reads it back during search, so it cannot influence search
// results or violate the rule that the transposition table must not
// survive a restart.
package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
)

// Record is one logged position/search pair.
type Record struct {
	FEN       string    `json:"fen"`
	Moves     []string  `json:"moves"`
	BestMove  string    `json:"best_move"`
	Depth     int       `json:"depth"`
	Nodes     uint64    `json:"nodes"`
	ScoreCP   int       `json:"score_cp"`
	IsMate    bool      `json:"is_mate"`
	MateIn    int       `json:"mate_in"`
	Timestamp time.Time `json:"timestamp"`
}

// Recorder appends Records to a Badger-backed log at a path given by
// `setoption name SessionLog value <path>`. A nil *Recorder is valid
// and every method on it is a no-op, so the UCI layer can hold one
// unconditionally and only allocate it once SessionLog is set.
type Recorder struct {
	db *badger.DB
}

// Open creates or opens the log directory at path.
func Open(path string) (*Recorder, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Recorder{db: db}, nil
}

// Close releases the underlying database. Safe to call on a nil
// Recorder.
func (r *Recorder) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// key derives a record key from the position's FEN and the sequence
// number, so records are ordered by insertion but collide on neither
// FEN content nor game replay. xxhash, not the Zobrist hash, keys
// these records: the two hashes serve unrelated concerns and must
// never be confused.
func key(fen string, seq uint64) []byte {
	h := xxhash.Sum64String(fen)
	return []byte(fmt.Sprintf("%020d-%016x", seq, h))
}

// Append records rec under an increasing sequence number. A nil
// Recorder silently discards the record.
func (r *Recorder) Append(seq uint64, rec Record) error {
	if r == nil || r.db == nil {
		return nil
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(rec.FEN, seq), data)
	})
}

// All returns every recorded entry, in key order, for post-mortem
// inspection. Not used by the engine itself; exported for tooling
// that wants to read a session log back out.
func (r *Recorder) All() ([]Record, error) {
	if r == nil || r.db == nil {
		return nil, nil
	}

	var records []Record
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var rec Record
				if err := json.Unmarshal(val, &rec); err != nil {
					return err
				}
				records = append(records, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return records, err
}
