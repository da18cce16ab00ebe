package fingerprint

import (
	"io"
	"io/fs"
	"log/slog"
	"testing"
	"time"

	"github.com/roach88/rebake/internal/cache"
)

// baseTime anchors all fake mtimes and clocks.
var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeFS is an in-memory FS for tests. Paths absent from the map do
// not exist.
type fakeFS struct {
	mtimes map[string]time.Time
}

func newFakeFS() *fakeFS {
	return &fakeFS{mtimes: make(map[string]time.Time)}
}

func (f *fakeFS) set(path string, t time.Time) {
	f.mtimes[path] = t
}

func (f *fakeFS) remove(path string) {
	delete(f.mtimes, path)
}

func (f *fakeFS) ModTime(path string) (time.Time, error) {
	t, ok := f.mtimes[path]
	if !ok {
		return time.Time{}, fs.ErrNotExist
	}
	return t, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestStore builds a store over a memory cache with a fixed clock
// and deterministic run tokens.
func newTestStore(t *testing.T, fs FS, incremental bool) (*Store, *cache.Memory) {
	t.Helper()
	mem := cache.NewMemory()
	s := NewStore(mem, fs, incremental,
		WithClock(fixedClock(baseTime)),
		WithRunTokenGenerator(NewFixedGenerator("run-1", "run-2", "run-3")),
		WithLogger(quietLogger()),
	)
	return s, mem
}

// testArtifact satisfies Artifact for evaluator tests.
type testArtifact struct {
	path     string
	writable bool
	asset    bool
	data     map[string]any
}

func (a *testArtifact) Path() string                 { return a.path }
func (a *testArtifact) IsWritable() bool             { return a.writable }
func (a *testArtifact) IsAssetKind() bool            { return a.asset }
func (a *testArtifact) OverrideData() map[string]any { return a.data }
