// Package cache provides the persistent key-value capability backing
// the fingerprint store.
//
// The contract is deliberately small: fetch, put, delete, keyed by
// string, with values surviving across runs. The fingerprint mapping
// lives under a single fixed key, so the backend never needs range
// queries or transactions spanning keys.
//
// Two implementations:
//   - SQLite: durable storage, WAL mode, single-writer connection pool
//   - Memory: process-lifetime storage for tests and cache-less runs
package cache
