package promidas

import "time"

const (
	// DefaultTTL is applied when Options.TTL is zero.
	DefaultTTL = 10 * time.Minute
	// DefaultMaxDataSizeBytes is applied when Options.MaxDataSizeBytes is
	// zero. The hard ceiling is snapstore.MaxDataSizeLimit.
	DefaultMaxDataSizeBytes = 5 << 20
	// DefaultFetchLimit is the page size used when no fetch parameters were
	// ever supplied.
	DefaultFetchLimit = 100
)

// DefaultFetchParams returns the parameter set Refresh falls back to when
// Setup was never called and Options.DefaultParams is nil.
func DefaultFetchParams() FetchParams {
	return FetchParams{Limit: DefaultFetchLimit}
}

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
