package fingerprint

import (
	"sort"
	"time"
)

// Record is the cached fingerprint for a single artifact path.
//
// Exactly one Record exists per distinct path. Records are created
// lazily on first reference, either as the subject of a staleness
// query or as the target of a dependency edge, and live until the
// store is cleared.
type Record struct {
	// Path identifies the artifact. Assigned by the host pipeline and
	// treated as opaque (NFC-normalized before use as a map key).
	Path string

	// LastModified is the modification time recorded when this record
	// was last trusted as fresh. For paths with no backing file it
	// holds the clock time at creation.
	LastModified time.Time

	// Dynamic is true when no filesystem-backed file exists for the
	// path. Dynamic records are never timestamp-compared; their
	// staleness derives only from their dependencies.
	Dynamic bool

	// SeenBefore becomes true once the record has survived at least
	// one full evaluation after creation. Until then its cached
	// timestamp cannot be trusted (see CP-1 in the package doc).
	SeenBefore bool

	// Forced is a sticky override requesting unconditional staleness.
	Forced bool

	// Dependencies holds the paths this artifact depends on.
	// Set semantics: insertion is idempotent, order is not defined.
	Dependencies map[string]struct{}
}

func newRecord(path string, lastModified time.Time, dynamic, forced bool) *Record {
	return &Record{
		Path:         path,
		LastModified: lastModified,
		Dynamic:      dynamic,
		Forced:       forced,
		Dependencies: make(map[string]struct{}),
	}
}

// addDependency inserts dep into the dependency set. Idempotent.
func (r *Record) addDependency(dep string) {
	r.Dependencies[dep] = struct{}{}
}

// DependencyList returns the dependency paths in sorted order.
// Sorting keeps recursive evaluation and persistence deterministic.
func (r *Record) DependencyList() []string {
	if len(r.Dependencies) == 0 {
		return nil
	}
	deps := make([]string, 0, len(r.Dependencies))
	for dep := range r.Dependencies {
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	return deps
}
