// Package discovery implements the event and group discovery engine:
// predicate filtering, free-text relevance, proximity and relevance
// ranking, and the query coordinator that composes them.
//
// Every operation in this package is a pure function over an immutable
// record snapshot. Nothing here performs I/O, retains state between
// calls, or returns errors: malformed per-record data (a garbage price
// string, a missing coordinate pair) excludes that single record and
// filtering continues. This makes the package safe to call concurrently
// from multiple goroutines on the same snapshot, and safe to re-invoke
// on every keystroke or map-region change without invalidation concerns.
package discovery
