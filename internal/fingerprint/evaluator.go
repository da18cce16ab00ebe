package fingerprint

import "log/slog"

// Artifact is the narrow view of a host artifact the evaluator needs.
// The host pipeline supplies identity, output configuration, asset
// classification, and the data map inspected for override keys; the
// evaluator never parses content or enumerates dependencies itself.
type Artifact interface {
	Path() string
	IsWritable() bool
	IsAssetKind() bool
	OverrideData() map[string]any
}

// Evaluator answers "should this artifact be rebuilt?" against a
// Store. One evaluation pass per run; dependency edges may be
// registered on the store while the pass is in flight.
type Evaluator struct {
	store *Store
	log   *slog.Logger
}

// NewEvaluator creates an Evaluator over the given store.
func NewEvaluator(store *Store) *Evaluator {
	return &Evaluator{store: store, log: store.log}
}

// ShouldRebuild reports whether the artifact must be rebuilt this run.
//
// Decision order:
//  1. Artifacts not written as output never need a decision.
//  2. A recognized force-rebuild key in the artifact's data wins.
//  3. Asset-kind artifacts are always rebuilt, regardless of cache
//     state.
//  4. Everything else falls through to the staleness check.
func (e *Evaluator) ShouldRebuild(a Artifact) bool {
	if !a.IsWritable() {
		return false
	}
	if ForcedByData(a.OverrideData()) {
		e.log.Debug("rebuild forced by artifact data", "path", a.Path())
		return true
	}
	if a.IsAssetKind() {
		e.log.Debug("rebuild forced for asset-kind artifact", "path", a.Path())
		return true
	}
	return e.IsStale(a.Path())
}

// IsStale reports whether the artifact at path is stale, recursing
// through its dependency set. Each call is one query: the visited set
// guarding against dependency cycles is scoped to it.
func (e *Evaluator) IsStale(path string) bool {
	return e.isStale(NormalizePath(path), make(map[string]bool))
}

// isStale implements the staleness rules for an already-normalized
// path.
//
// A path already on the visited set contributes false: an artifact
// cannot make itself stale through a dependency cycle, and evaluation
// must terminate on whatever graph the host registered. Staleness from
// nodes outside the cycle still propagates normally.
func (e *Evaluator) isStale(path string, visited map[string]bool) bool {
	if visited[path] {
		return false
	}
	visited[path] = true

	v := e.store.view(path)

	// Never seen at all: always build, and leave behind a record that
	// the next run can trust.
	if !v.exists {
		e.store.markSeen(path)
		e.log.Debug("stale: first sighting", "path", path)
		return true
	}

	if v.forced {
		e.log.Debug("stale: forced override", "path", path)
		return true
	}

	// Steady state: a file-backed record that survived a full cycle is
	// trusted for a direct timestamp comparison.
	if !v.dynamic && v.seen {
		modified := e.store.modTime(path).After(v.lastModified)
		if modified {
			e.log.Debug("stale: file modified", "path", path)
		}
		return modified
	}

	// The record exists but predates any evaluation of this path: it
	// was created as a side effect of a dependency registration, so
	// its cached timestamp cannot be trusted yet. Answer stale and
	// flip the flag so the next evaluation can trust it.
	if !v.seen {
		e.store.markSeen(path)
		e.log.Debug("stale: record not yet trusted", "path", path)
		return true
	}

	// Dynamic record: no file to compare, staleness is inherited from
	// the dependency set.
	for _, dep := range v.deps {
		if e.isStale(dep, visited) {
			e.log.Debug("stale: dependency stale", "path", path, "dependency", dep)
			return true
		}
	}
	return false
}
