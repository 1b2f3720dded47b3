package snapstore

import (
	"errors"
	"testing"
	"time"

	c "github.com/F88/promidas-sub002/codec"
)

type prototype struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func identify(p prototype) int64 { return p.ID }

// fixedSizeCodec encodes every record to n bytes, making size checks exact.
type fixedSizeCodec struct{ n int }

func (f fixedSizeCodec) Encode(prototype) ([]byte, error) { return make([]byte, f.n), nil }
func (f fixedSizeCodec) Decode([]byte) (prototype, error) { return prototype{}, nil }

// failingCodec fails to encode any record named "boom".
type failingCodec struct{ err error }

func (f failingCodec) Encode(p prototype) ([]byte, error) {
	if p.Name == "boom" {
		return nil, f.err
	}
	return c.JSON[prototype]{}.Encode(p)
}
func (f failingCodec) Decode(b []byte) (prototype, error) { return c.JSON[prototype]{}.Decode(b) }

func newTestStore(t *testing.T, cfg Config, enc c.Codec[prototype]) *Store[prototype] {
	t.Helper()
	if cfg.TTL == 0 {
		cfg.TTL = time.Minute
	}
	if cfg.MaxDataSizeBytes == 0 {
		cfg.MaxDataSizeBytes = 1 << 20
	}
	if enc == nil {
		enc = c.JSON[prototype]{}
	}
	s, err := New[prototype](Options[prototype]{
		Config:   cfg,
		Identify: identify,
		Codec:    enc,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNewValidation(t *testing.T) {
	base := Options[prototype]{
		Config:   Config{TTL: time.Minute, MaxDataSizeBytes: 1 << 20},
		Identify: identify,
		Codec:    c.JSON[prototype]{},
	}

	cases := []struct {
		name   string
		mutate func(*Options[prototype])
	}{
		{"zero ttl", func(o *Options[prototype]) { o.TTL = 0 }},
		{"negative ttl", func(o *Options[prototype]) { o.TTL = -time.Second }},
		{"zero max size", func(o *Options[prototype]) { o.MaxDataSizeBytes = 0 }},
		{"max size above limit", func(o *Options[prototype]) { o.MaxDataSizeBytes = MaxDataSizeLimit + 1 }},
		{"nil identify", func(o *Options[prototype]) { o.Identify = nil }},
		{"nil codec", func(o *Options[prototype]) { o.Codec = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := base
			tc.mutate(&opts)
			if _, err := New[prototype](opts); err == nil {
				t.Fatalf("New should fail for %s", tc.name)
			}
		})
	}

	if _, err := New[prototype](base); err != nil {
		t.Fatalf("New with valid options: %v", err)
	}
}

func TestReplaceAndLookups(t *testing.T) {
	s := newTestStore(t, Config{}, nil)

	st, err := s.Replace([]prototype{{ID: 1, Name: "alpha"}, {ID: 2, Name: "beta"}})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if st.Size != 2 || st.Expired {
		t.Fatalf("stats after replace: %+v", st)
	}

	if got, ok := s.Get(2); !ok || got.Name != "beta" {
		t.Fatalf("Get(2) = %+v, %v", got, ok)
	}
	if _, ok := s.Get(99); ok {
		t.Fatalf("Get(99) should miss")
	}

	all := s.All()
	if len(all) != 2 || all[0].ID != 1 || all[1].ID != 2 {
		t.Fatalf("All order: %+v", all)
	}
	ids := s.IDs()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("IDs order: %v", ids)
	}
	if s.Len() != len(all) {
		t.Fatalf("Len %d != len(All) %d", s.Len(), len(all))
	}
}

func TestReplaceDuplicateLastWriteWins(t *testing.T) {
	s := newTestStore(t, Config{}, nil)

	st, err := s.Replace([]prototype{
		{ID: 1, Name: "a"},
		{ID: 2, Name: "c"},
		{ID: 1, Name: "b"},
	})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if st.Size != 2 {
		t.Fatalf("size = %d, want 2 (distinct ids)", st.Size)
	}
	if got, _ := s.Get(1); got.Name != "b" {
		t.Fatalf("Get(1).Name = %q, want later record %q", got.Name, "b")
	}
	// First occurrence keeps its position in insertion order.
	ids := s.IDs()
	if ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("IDs order after dedupe: %v", ids)
	}
}

func TestReplaceSizeExceededLeavesStoreUntouched(t *testing.T) {
	s := newTestStore(t, Config{MaxDataSizeBytes: 150}, fixedSizeCodec{n: 100})
	s.now = func() time.Time { return time.Unix(1000, 0) }

	if _, err := s.Replace([]prototype{{ID: 1}}); err != nil {
		t.Fatalf("initial Replace: %v", err)
	}
	before := s.Stats()

	_, err := s.Replace([]prototype{{ID: 1}, {ID: 2}})
	var se *SizeExceededError
	if !errors.As(err, &se) {
		t.Fatalf("want SizeExceededError, got %v", err)
	}
	if se.DataSize != 200 || se.MaxDataSize != 150 {
		t.Fatalf("error sizes: %+v", se)
	}

	if after := s.Stats(); after != before {
		t.Fatalf("stats changed by failed Replace: before=%+v after=%+v", before, after)
	}
	if got, ok := s.Get(1); !ok || got.ID != 1 {
		t.Fatalf("previous snapshot lost: %+v, %v", got, ok)
	}
	if _, ok := s.Get(2); ok {
		t.Fatalf("rejected record must not be visible")
	}
}

func TestReplaceEstimateFailureLeavesStoreUntouched(t *testing.T) {
	cause := errors.New("unencodable")
	s := newTestStore(t, Config{}, failingCodec{err: cause})
	s.now = func() time.Time { return time.Unix(1000, 0) }

	if _, err := s.Replace([]prototype{{ID: 1, Name: "ok"}}); err != nil {
		t.Fatalf("initial Replace: %v", err)
	}
	before := s.Stats()

	_, err := s.Replace([]prototype{{ID: 2, Name: "boom"}})
	var ee *SizeEstimateError
	if !errors.As(err, &ee) {
		t.Fatalf("want SizeEstimateError, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("estimate error should wrap cause")
	}

	if after := s.Stats(); after != before {
		t.Fatalf("stats changed by failed Replace: before=%+v after=%+v", before, after)
	}
}

func TestStatsTTL(t *testing.T) {
	s := newTestStore(t, Config{TTL: time.Second}, nil)
	base := time.Unix(1000, 0)
	s.now = func() time.Time { return base }

	// Never populated => expired, zero remaining.
	st := s.Stats()
	if !st.Expired || st.RemainingTTL != 0 || !st.CachedAt.IsZero() {
		t.Fatalf("empty store stats: %+v", st)
	}

	if _, err := s.Replace([]prototype{{ID: 1}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	st = s.Stats()
	if st.Expired || st.RemainingTTL != time.Second {
		t.Fatalf("fresh stats: %+v", st)
	}

	s.now = func() time.Time { return base.Add(400 * time.Millisecond) }
	st = s.Stats()
	if st.Expired || st.RemainingTTL != 600*time.Millisecond {
		t.Fatalf("mid-TTL stats: %+v", st)
	}

	// Exactly at the TTL boundary counts as expired.
	s.now = func() time.Time { return base.Add(time.Second) }
	if st = s.Stats(); !st.Expired || st.RemainingTTL != 0 {
		t.Fatalf("boundary stats: %+v", st)
	}

	s.now = func() time.Time { return base.Add(1100 * time.Millisecond) }
	if st = s.Stats(); !st.Expired || st.RemainingTTL != 0 {
		t.Fatalf("stale stats: %+v", st)
	}
}

func TestRandom(t *testing.T) {
	s := newTestStore(t, Config{}, nil)

	if _, ok := s.Random(); ok {
		t.Fatalf("Random on empty store should report absent")
	}

	if _, err := s.Replace([]prototype{{ID: 1}, {ID: 2}, {ID: 3}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	for i := 0; i < 10; i++ {
		got, ok := s.Random()
		if !ok || got.ID < 1 || got.ID > 3 {
			t.Fatalf("Random returned %+v, %v", got, ok)
		}
	}
}

func TestRandomSample(t *testing.T) {
	s := newTestStore(t, Config{}, nil)

	if got := s.RandomSample(3); len(got) != 0 {
		t.Fatalf("sample from empty store: %v", got)
	}

	if _, err := s.Replace([]prototype{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	if got := s.RandomSample(0); len(got) != 0 {
		t.Fatalf("n=0 should yield empty sample: %v", got)
	}
	if got := s.RandomSample(-1); len(got) != 0 {
		t.Fatalf("n<0 should yield empty sample: %v", got)
	}

	// n >= size returns every record exactly once.
	got := s.RandomSample(10)
	if len(got) != 4 {
		t.Fatalf("full sample length = %d, want 4", len(got))
	}
	seen := make(map[int64]bool, len(got))
	for _, p := range got {
		if seen[p.ID] {
			t.Fatalf("duplicate id %d in sample", p.ID)
		}
		seen[p.ID] = true
	}

	// Partial sample holds n distinct members.
	got = s.RandomSample(2)
	if len(got) != 2 {
		t.Fatalf("partial sample length = %d, want 2", len(got))
	}
	if got[0].ID == got[1].ID {
		t.Fatalf("partial sample has duplicate id %d", got[0].ID)
	}
}

func TestAllReturnsIndependentSlice(t *testing.T) {
	s := newTestStore(t, Config{}, nil)
	if _, err := s.Replace([]prototype{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	all := s.All()
	all[0] = prototype{ID: 99, Name: "mutated"}

	if got, _ := s.Get(1); got.Name != "a" {
		t.Fatalf("caller mutation leaked into store: %+v", got)
	}
}

func TestConfigView(t *testing.T) {
	cfg := Config{TTL: 42 * time.Second, MaxDataSizeBytes: 321}
	s := newTestStore(t, cfg, nil)
	if got := s.Config(); got != cfg {
		t.Fatalf("Config() = %+v, want %+v", got, cfg)
	}
}
