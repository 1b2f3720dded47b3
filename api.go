package promidas

import (
	"context"
	"time"

	c "github.com/F88/promidas-sub002/codec"
	"github.com/F88/promidas-sub002/snapstore"
)

// FetchParams is the request shape handed to the Source. Setup records the
// params it was called with so that Refresh can repeat the same query.
type FetchParams struct {
	Offset int
	Limit  int
	IDs    []int64 // optional identifier filter; nil => no filter
}

// Source fetches prototypes from the remote source. Implementations must
// return all failure modes as errors (ideally *FetchError) and never panic
// past their own boundary. See the httpsource package for an HTTP-backed
// implementation.
type Source[V any] interface {
	Fetch(ctx context.Context, params FetchParams) ([]V, error)
	// String returns a description of the source, used in logs.
	String() string
}

// Config is the effective store configuration.
type Config = snapstore.Config

// Stats describes the current snapshot plus repository state.
type Stats struct {
	snapstore.Stats
	RefreshInFlight bool
}

// Report is the result of Analyze: a combined view of snapshot stats and the
// effective configuration.
type Report struct {
	Stats  Stats
	Config Config
}

// Repository is the read/write surface of the snapshot cache.
// All methods are safe for concurrent use. Reads never initiate a fetch and
// never fail for upstream reasons.
type Repository[V any] interface {
	// Setup records params as the remembered fetch parameters (always,
	// regardless of coalescing or outcome), then performs a coalesced
	// fetch-and-store cycle. On failure the snapshot is left untouched.
	Setup(ctx context.Context, params FetchParams) (Stats, error)

	// Refresh performs a coalesced fetch-and-store cycle using the
	// remembered fetch parameters (or the configured defaults if Setup was
	// never called). It does not alter the remembered parameters.
	Refresh(ctx context.Context) (Stats, error)

	// Reads (snapshot only).
	GetByID(id int64) (V, bool)
	GetAllFromSnapshot() []V
	GetPrototypeIDsFromSnapshot() []int64
	GetRandom() (V, bool)
	GetRandomSample(n int) []V
	GetStats() Stats
	GetConfig() Config
	Analyze() Report

	// Subscribe registers a listener for operation notifications and returns
	// an idempotent cancel func. Listeners are invoked synchronously in
	// registration order.
	Subscribe(l Listener) (cancel func())

	// Teardown releases all listener subscriptions. Idempotent; safe to call
	// when notifications were never enabled.
	Teardown()
}

// Options tune the repository. Source and Identify are required; the rest
// have sensible defaults.
type Options[V any] struct {
	// Required
	Source   Source[V]
	Identify func(V) int64 // extracts the unique prototype id

	Codec            c.Codec[V]    // size estimation; nil => codec.JSON[V]
	Logger           Logger        // nil => NopLogger
	TTL              time.Duration // 0 => DefaultTTL; must be > 0
	MaxDataSizeBytes int64         // 0 => DefaultMaxDataSizeBytes; capped by snapstore.MaxDataSizeLimit
	DefaultParams    *FetchParams  // used by Refresh before any Setup; nil => DefaultFetchParams()
}

// New builds a Repository with an empty snapshot. The snapshot is considered
// expired until the first successful Setup or Refresh.
func New[V any](opts Options[V]) (Repository[V], error) {
	return newRepository[V](opts)
}
