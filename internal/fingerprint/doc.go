// Package fingerprint decides whether build artifacts are stale.
//
// The package keeps one fingerprint record per artifact path: the
// modification time last trusted as fresh, a dynamic flag for paths
// with no backing file, a sticky forced flag, and the set of paths the
// artifact depends on. The Evaluator combines four signals into a
// single rebuild decision:
//
//   - a force-rebuild key carried in the artifact's own data
//   - an asset-kind classification supplied by the host pipeline
//   - a comparison of the current and recorded modification times
//   - recursive staleness of the artifact's dependencies
//
// # Critical Patterns
//
// CP-1: First-Seen Conservatism
//   - Dependency edges are often registered before the depending
//     artifact is itself evaluated, which creates its record early.
//   - A record that has not survived a full evaluation cycle is never
//     trusted for a timestamp comparison; the first evaluation answers
//     "stale" and flips the seen flag so the next one can trust it.
//
// CP-2: Absence Is Data
//   - A missing file is not an error. Its record is marked dynamic and
//     its staleness derives only from its dependencies.
//   - A missing or undecodable persisted cache loads as empty.
//
// CP-3: Deterministic Persistence
//   - The flushed envelope sorts dependency lists and relies on Go's
//     sorted map-key encoding, so identical stores produce identical
//     bytes.
//
// The Store serializes all record access under a mutex so a host that
// parallelizes evaluation stays correct; racing first-seen flips are
// idempotent and both racers correctly report stale.
package fingerprint
