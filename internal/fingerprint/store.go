package fingerprint

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/rebake/internal/cache"
)

// Store owns the in-memory path-to-record mapping and its persistence
// lifecycle. Construct one per run with NewStore, call Load at run
// start, and Flush once at run end.
//
// All record access is serialized under an internal mutex, so a host
// that parallelizes artifact evaluation can share one Store. Pointers
// returned by Get and GetOrCreate must only be mutated through Store
// methods.
type Store struct {
	mu          sync.Mutex
	cache       cache.Cache
	fs          FS
	incremental bool
	now         func() time.Time
	runTokens   RunTokenGenerator
	log         *slog.Logger

	records map[string]*Record
	loaded  bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the wall clock. Used by tests and hosts that
// need reproducible "file absent" timestamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithRunTokenGenerator overrides the run token generator used by
// Flush. Defaults to UUIDv7Generator.
func WithRunTokenGenerator(g RunTokenGenerator) StoreOption {
	return func(s *Store) { s.runTokens = g }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) StoreOption {
	return func(s *Store) { s.log = log }
}

// NewStore creates a Store backed by the given persistent cache and
// filesystem capability. When incremental is false, Flush leaves the
// persisted cache untouched.
func NewStore(c cache.Cache, fs FS, incremental bool, opts ...StoreOption) *Store {
	s := &Store{
		cache:       c,
		fs:          fs,
		incremental: incremental,
		now:         time.Now,
		runTokens:   UUIDv7Generator{},
		log:         slog.Default(),
		records:     make(map[string]*Record),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load populates the store from the persistent cache. Memoized: only
// the first call reads the cache; later calls are no-ops.
//
// A missing persisted entry is a cold start. An undecodable entry is
// also a cold start: a corrupt cache costs one full rebuild, which is
// always a correct answer.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return nil
	}

	data, ok, err := s.cache.Fetch(CacheKey)
	if err != nil {
		return fmt.Errorf("fetch fingerprint cache: %w", err)
	}
	if ok {
		records, runID, decodeErr := unmarshalRecords(data)
		if decodeErr != nil {
			s.log.Warn("discarding undecodable fingerprint cache", "error", decodeErr)
		} else {
			// Merge: records already created this run win, consistent
			// with first-creation-wins everywhere else.
			for path, rec := range records {
				if _, exists := s.records[path]; !exists {
					s.records[path] = rec
				}
			}
			s.log.Debug("fingerprint cache loaded", "records", len(records), "run_id", runID)
		}
	} else {
		s.log.Debug("fingerprint cache empty, starting cold")
	}

	s.loaded = true
	return nil
}

// GetOrCreate returns the record for path, creating it if absent.
//
// A new record gets LastModified from the file's current modification
// time, or the current clock time when no file exists (in which case
// the record is marked dynamic). Existing records are returned
// verbatim; the forced argument is ignored for them.
func (s *Store) GetOrCreate(path string, forced bool) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateLocked(NormalizePath(path), forced)
}

func (s *Store) getOrCreateLocked(path string, forced bool) *Record {
	if rec, ok := s.records[path]; ok {
		return rec
	}

	lastModified, err := s.fs.ModTime(path)
	dynamic := err != nil
	if dynamic {
		lastModified = s.now()
	}

	rec := newRecord(path, lastModified, dynamic, forced)
	s.records[path] = rec
	s.log.Debug("fingerprint record created",
		"path", path, "dynamic", dynamic, "forced", forced)
	return rec
}

// Get returns the record for path, if one exists.
func (s *Store) Get(path string) (*Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[NormalizePath(path)]
	return rec, ok
}

// AddDependency records that path depends on dep, creating the record
// for path if absent. Idempotent.
func (s *Store) AddDependency(path, dep string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.getOrCreateLocked(NormalizePath(path), false)
	rec.addDependency(NormalizePath(dep))
}

// ForceOverride marks path as unconditionally stale for this and all
// future runs until the cache is cleared, creating the record if
// absent. Independent of timestamp comparisons.
func (s *Store) ForceOverride(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.getOrCreateLocked(NormalizePath(path), true)
	rec.Forced = true
}

// Len reports the number of known records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Flush writes the current mapping to the persistent cache as a single
// batched write. No-op when incremental mode is disabled.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.incremental {
		s.log.Debug("incremental mode disabled, skipping flush")
		return nil
	}

	runID := s.runTokens.Generate()
	data, err := marshalRecords(s.records, runID)
	if err != nil {
		return err
	}
	if err := s.cache.Put(CacheKey, data); err != nil {
		return fmt.Errorf("persist fingerprint cache: %w", err)
	}
	s.log.Debug("fingerprint cache flushed", "records", len(s.records), "run_id", runID)
	return nil
}

// Clear discards the in-memory mapping and deletes the persisted
// entry. Subsequent queries behave like a first-ever cold run.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*Record)
	s.loaded = false
	if err := s.cache.Delete(CacheKey); err != nil {
		return fmt.Errorf("delete fingerprint cache: %w", err)
	}
	s.log.Debug("fingerprint cache cleared")
	return nil
}

// recordView is an immutable snapshot of one record's decision-relevant
// state, taken under the store lock for the evaluator.
type recordView struct {
	exists       bool
	forced       bool
	dynamic      bool
	seen         bool
	lastModified time.Time
	deps         []string
}

// view snapshots the record for an already-normalized path.
func (s *Store) view(path string) recordView {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[path]
	if !ok {
		return recordView{}
	}
	return recordView{
		exists:       true,
		forced:       rec.Forced,
		dynamic:      rec.Dynamic,
		seen:         rec.SeenBefore,
		lastModified: rec.LastModified,
		deps:         rec.DependencyList(),
	}
}

// markSeen flips SeenBefore on the record for an already-normalized
// path. Creates the record if absent, so a never-seen path ends up
// with a record that can be trusted on its next evaluation.
func (s *Store) markSeen(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.getOrCreateLocked(path, false)
	rec.SeenBefore = true
}

// modTime returns the current modification time for an
// already-normalized path, substituting the current clock time when
// the file is absent. The substitute compares greater than any
// previously recorded mtime, so the next comparison naturally answers
// "modified" instead of propagating a lookup failure.
func (s *Store) modTime(path string) time.Time {
	t, err := s.fs.ModTime(path)
	if err != nil {
		return s.now()
	}
	return t
}
