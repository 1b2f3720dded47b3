// Package promidas implements an in-process, snapshot-based cache for a
// paginated collection of prototypes fetched from a remote source. The cache
// is populated by an initial Setup and periodic Refresh calls; all reads are
// served from the in-memory snapshot and never touch the network.
//
// Components:
//   - Source[V]: fetches prototypes from the remote source (e.g. httpsource).
//   - snapstore.Store[V]: holds one snapshot generation with atomic
//     whole-snapshot replacement, a hard size ceiling, and O(1) point lookup.
//   - Repository[V]: coalesces concurrent Setup/Refresh calls into at most
//     one outstanding fetch and writes successful results into the store.
//
// Coalescing: concurrent Setup/Refresh calls share a single physical fetch
// and all observe the same settled outcome. Calls that do not overlap each
// trigger their own fetch.
//
// Failure policy: fetch failures, size-ceiling rejections, and
// size-estimation failures are returned as values and leave the snapshot
// untouched. Only invalid construction parameters produce an error from New.
package promidas
