package promidas

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	c "github.com/F88/promidas-sub002/codec"
	"github.com/F88/promidas-sub002/snapstore"
)

// flightKey is the single coalescing key: the repository holds one snapshot,
// so all fetch-and-store cycles share one flight.
const flightKey = "snapshot"

type repository[V any] struct {
	source Source[V]
	store  *snapstore.Store[V]
	log    Logger

	group    singleflight.Group
	inflight atomic.Bool

	paramsMu sync.Mutex
	params   FetchParams

	listeners listenerSet
}

func newRepository[V any](opts Options[V]) (*repository[V], error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("promidas: source is required")
	}
	if opts.Identify == nil {
		return nil, fmt.Errorf("promidas: identify func is required")
	}

	var enc c.Codec[V] = opts.Codec
	if enc == nil {
		enc = c.JSON[V]{}
	}

	store, err := snapstore.New[V](snapstore.Options[V]{
		Config: snapstore.Config{
			TTL:              coalesce(opts.TTL, DefaultTTL),
			MaxDataSizeBytes: coalesce[int64](opts.MaxDataSizeBytes, DefaultMaxDataSizeBytes),
		},
		Identify: opts.Identify,
		Codec:    enc,
	})
	if err != nil {
		return nil, err
	}

	params := DefaultFetchParams()
	if opts.DefaultParams != nil {
		params = *opts.DefaultParams
	}

	return &repository[V]{
		source: opts.Source,
		store:  store,
		log:    coalesce[Logger](opts.Logger, NopLogger{}),
		params: params,
	}, nil
}

func (r *repository[V]) Setup(ctx context.Context, params FetchParams) (Stats, error) {
	// Remember params before coalescing so Refresh repeats this query shape
	// even if this call attaches to an already in-flight fetch.
	r.paramsMu.Lock()
	r.params = params
	r.paramsMu.Unlock()

	return r.fetchAndStore(ctx, OpSetup, params)
}

func (r *repository[V]) Refresh(ctx context.Context) (Stats, error) {
	r.paramsMu.Lock()
	params := r.params
	r.paramsMu.Unlock()

	return r.fetchAndStore(ctx, OpRefresh, params)
}

// fetchAndStore is the coalesced fetch-and-store cycle shared by Setup and
// Refresh. Callers that arrive while a fetch is in flight attach to it and
// receive its settled outcome; the Source is invoked exactly once per group.
func (r *repository[V]) fetchAndStore(ctx context.Context, op Operation, params FetchParams) (Stats, error) {
	r.listeners.notifyStarted(op)

	v, err, shared := r.group.Do(flightKey, func() (any, error) {
		r.inflight.Store(true)
		defer r.inflight.Store(false)

		records, err := r.source.Fetch(ctx, params)
		if err != nil {
			ferr := asFetchError(err)
			r.log.Warn("fetch failed", Fields{
				"op":     op,
				"source": r.source.String(),
				"kind":   ferr.Kind,
				"err":    ferr,
			})
			r.listeners.notifyFailed(op, ferr)
			return nil, ferr
		}

		st, err := r.store.Replace(records)
		if err != nil {
			r.log.Warn("snapshot replace rejected", Fields{"op": op, "err": err})
			r.listeners.notifyFailed(op, err)
			return nil, err
		}

		stats := Stats{Stats: st}
		r.log.Debug("snapshot replaced", Fields{
			"op":   op,
			"size": st.Size,
			"data": st.DataSizeBytes,
		})
		r.listeners.notifyCompleted(op, stats)
		return stats, nil
	})
	if err != nil {
		return Stats{}, err
	}
	if shared {
		r.log.Debug("attached to in-flight fetch", Fields{"op": op})
	}
	return v.(Stats), nil
}

func (r *repository[V]) GetByID(id int64) (V, bool) { return r.store.Get(id) }

func (r *repository[V]) GetAllFromSnapshot() []V { return r.store.All() }

func (r *repository[V]) GetPrototypeIDsFromSnapshot() []int64 { return r.store.IDs() }

func (r *repository[V]) GetRandom() (V, bool) { return r.store.Random() }

func (r *repository[V]) GetRandomSample(n int) []V { return r.store.RandomSample(n) }

func (r *repository[V]) GetStats() Stats {
	return Stats{
		Stats:           r.store.Stats(),
		RefreshInFlight: r.inflight.Load(),
	}
}

func (r *repository[V]) GetConfig() Config { return r.store.Config() }

func (r *repository[V]) Analyze() Report {
	return Report{
		Stats:  r.GetStats(),
		Config: r.GetConfig(),
	}
}

func (r *repository[V]) Subscribe(l Listener) func() { return r.listeners.add(l) }

func (r *repository[V]) Teardown() { r.listeners.clear() }
