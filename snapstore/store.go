// Package snapstore holds exactly one snapshot generation of prototype
// records and serves it efficiently. A snapshot is replaced wholesale: a
// failed Replace never partially applies, and individual records are never
// evicted or mutated after being placed into a generation.
package snapstore

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	c "github.com/F88/promidas-sub002/codec"
)

// MaxDataSizeLimit is the absolute ceiling for Config.MaxDataSizeBytes.
// Construction fails when configured above it.
const MaxDataSizeLimit int64 = 30 << 20 // 30 MiB

// Config limits a store.
type Config struct {
	TTL              time.Duration // must be > 0
	MaxDataSizeBytes int64         // must be in (0, MaxDataSizeLimit]
}

// Stats describes the current snapshot.
type Stats struct {
	Size          int           // number of records
	CachedAt      time.Time     // zero if never populated
	DataSizeBytes int64         // estimated serialized size
	RemainingTTL  time.Duration // never negative
	Expired       bool          // never populated, or TTL elapsed
}

// Options configure a store. All fields are required.
type Options[V any] struct {
	Config
	Identify func(V) int64 // extracts the unique record id
	Codec    c.Codec[V]    // used only to estimate serialized size
}

// Store holds one snapshot generation: a growable array of records in
// insertion order plus an index from id to array position. Both are swapped
// together on Replace, so lookups are O(1) and listing is O(n) without
// re-deriving order. Safe for concurrent use.
type Store[V any] struct {
	mu       sync.RWMutex
	records  []V
	index    map[int64]int
	cachedAt time.Time
	dataSize int64

	cfg      Config
	identify func(V) int64
	enc      c.Codec[V]
	now      func() time.Time
}

// New builds an empty store. The empty store reports Expired until the first
// successful Replace.
func New[V any](opts Options[V]) (*Store[V], error) {
	if opts.Identify == nil {
		return nil, fmt.Errorf("snapstore: identify func is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("snapstore: codec is required")
	}
	if opts.TTL <= 0 {
		return nil, fmt.Errorf("snapstore: ttl must be positive, got %v", opts.TTL)
	}
	if opts.MaxDataSizeBytes <= 0 {
		return nil, fmt.Errorf("snapstore: max data size must be positive, got %d", opts.MaxDataSizeBytes)
	}
	if opts.MaxDataSizeBytes > MaxDataSizeLimit {
		return nil, fmt.Errorf("snapstore: max data size %d exceeds limit %d", opts.MaxDataSizeBytes, MaxDataSizeLimit)
	}

	return &Store[V]{
		index:    make(map[int64]int),
		cfg:      opts.Config,
		identify: opts.Identify,
		enc:      opts.Codec,
		now:      time.Now,
	}, nil
}

// Replace validates records and, only if validation passes, atomically swaps
// the whole snapshot. Duplicate ids are deduplicated last-write-wins: the
// later record's value replaces the earlier one's, keeping its position in
// insertion order. On any error the store is left exactly as it was.
func (s *Store[V]) Replace(records []V) (Stats, error) {
	// Validation phase: build the candidate generation off to the side.
	recs := make([]V, 0, len(records))
	index := make(map[int64]int, len(records))
	for _, rec := range records {
		id := s.identify(rec)
		if pos, ok := index[id]; ok {
			recs[pos] = rec // last write wins
			continue
		}
		index[id] = len(recs)
		recs = append(recs, rec)
	}

	var size int64
	for _, rec := range recs {
		b, err := s.enc.Encode(rec)
		if err != nil {
			return Stats{}, &SizeEstimateError{Cause: err}
		}
		size += int64(len(b))
	}
	if size > s.cfg.MaxDataSizeBytes {
		return Stats{}, &SizeExceededError{DataSize: size, MaxDataSize: s.cfg.MaxDataSizeBytes}
	}

	// Commit phase.
	now := s.now()
	s.mu.Lock()
	s.records = recs
	s.index = index
	s.cachedAt = now
	s.dataSize = size
	s.mu.Unlock()

	return s.Stats(), nil
}

// Get returns the record with the given id, or false if absent.
func (s *Store[V]) Get(id int64) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.index[id]
	if !ok {
		var zero V
		return zero, false
	}
	return s.records[pos], true
}

// All returns the records of the current generation in insertion order.
// The returned slice is the caller's to keep.
func (s *Store[V]) All() []V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]V, len(s.records))
	copy(out, s.records)
	return out
}

// IDs returns the record ids of the current generation in insertion order.
func (s *Store[V]) IDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int64, len(s.records))
	for i, rec := range s.records {
		out[i] = s.identify(rec)
	}
	return out
}

// Len returns the number of records in the current generation.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Random returns one uniformly selected record, or false if the store is
// empty.
func (s *Store[V]) Random() (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.records) == 0 {
		var zero V
		return zero, false
	}
	return s.records[rand.Intn(len(s.records))], true
}

// RandomSample returns up to n distinct records in random order. If n is at
// least the current size, all records are returned in random order. A
// non-positive n or an empty store yields an empty result.
func (s *Store[V]) RandomSample(n int) []V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || len(s.records) == 0 {
		return nil
	}
	if n > len(s.records) {
		n = len(s.records)
	}
	out := make([]V, 0, n)
	for _, i := range rand.Perm(len(s.records))[:n] {
		out = append(out, s.records[i])
	}
	return out
}

// Stats computes the current snapshot stats. RemainingTTL is clamped at
// zero; Expired is true when never populated or when the TTL has elapsed.
func (s *Store[V]) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Size:          len(s.records),
		CachedAt:      s.cachedAt,
		DataSizeBytes: s.dataSize,
	}
	if s.cachedAt.IsZero() {
		st.Expired = true
		return st
	}
	remaining := s.cfg.TTL - s.now().Sub(s.cachedAt)
	if remaining <= 0 {
		st.Expired = true
		return st
	}
	st.RemainingTTL = remaining
	return st
}

// Config returns the effective TTL and size-ceiling configuration.
func (s *Store[V]) Config() Config { return s.cfg }
