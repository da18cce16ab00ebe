package fingerprint

import (
	"os"
	"time"

	"golang.org/x/text/unicode/norm"
)

// FS is the filesystem capability the engine needs: modification-time
// lookup. Absence of a file is reported as an error from ModTime and
// treated by callers as a data condition, never a failure.
//
// Implemented by OSFS (production) and test fakes.
type FS interface {
	ModTime(path string) (time.Time, error)
}

// OSFS reads modification times from the host filesystem via os.Stat.
type OSFS struct{}

// ModTime returns the modification time of the file at path.
func (OSFS) ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// NormalizePath returns path in Unicode NFC form.
//
// Artifact paths arrive from manifests and host pipelines that may
// spell the same logical path in NFD (macOS) or NFC form. Normalizing
// before any map access guarantees one record per logical path.
func NormalizePath(path string) string {
	return norm.NFC.String(path)
}
