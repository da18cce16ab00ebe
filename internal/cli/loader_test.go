package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rebake.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadManifest_Valid(t *testing.T) {
	path := writeManifest(t, `
artifacts:
  - path: content/index.md
    dependencies: [layouts/base.html]
    data:
      title: Home
      regenerate: true
  - path: assets/logo.svg
    asset: true
  - path: drafts/wip.md
    output: false
`)

	manifest, errs := LoadManifest(path)
	require.Empty(t, errs)
	require.Len(t, manifest.Artifacts, 3)

	page := manifest.Artifacts[0]
	assert.Equal(t, "content/index.md", page.Path())
	assert.True(t, page.IsWritable(), "output defaults to true when omitted")
	assert.False(t, page.IsAssetKind())
	assert.Equal(t, []string{"layouts/base.html"}, page.Dependencies)
	assert.Equal(t, true, page.OverrideData()["regenerate"])

	assert.True(t, manifest.Artifacts[1].IsAssetKind())
	assert.False(t, manifest.Artifacts[2].IsWritable())
}

func TestLoadManifest_Empty(t *testing.T) {
	path := writeManifest(t, "")

	manifest, errs := LoadManifest(path)
	require.Empty(t, errs)
	assert.Empty(t, manifest.Artifacts)
}

func TestLoadManifest_NotFound(t *testing.T) {
	_, errs := LoadManifest(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), ErrCodeNotFound)
}

func TestLoadManifest_InvalidYAML(t *testing.T) {
	path := writeManifest(t, "artifacts: [unterminated")

	_, errs := LoadManifest(path)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), ErrCodeParse)
}

func TestLoadManifest_UnknownField(t *testing.T) {
	path := writeManifest(t, `
artifacts:
  - path: a.md
    rebuild_me: true
`)

	_, errs := LoadManifest(path)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), ErrCodeParse)
}

func TestLoadManifest_SchemaViolation(t *testing.T) {
	// An empty dependency passes the YAML decode but violates the CUE
	// schema's !="" constraint.
	path := writeManifest(t, `
artifacts:
  - path: a.md
    dependencies: [""]
`)

	_, errs := LoadManifest(path)
	require.NotEmpty(t, errs)

	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeSchema, loadErr.Code)
}

func TestLoadManifest_EmptyPathRejected(t *testing.T) {
	path := writeManifest(t, `
artifacts:
  - path: ""
`)

	_, errs := LoadManifest(path)
	require.NotEmpty(t, errs)

	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeSchema, loadErr.Code)
}

func TestLoadManifest_DuplicatePath(t *testing.T) {
	path := writeManifest(t, `
artifacts:
  - path: a.md
  - path: a.md
`)

	_, errs := LoadManifest(path)
	require.Len(t, errs, 1)

	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeDuplicate, loadErr.Code)
}

func TestLoadError_FormatsPosition(t *testing.T) {
	err := &LoadError{Code: ErrCodeGeneric, Message: "boom"}
	assert.Equal(t, "E001: boom", err.Error())
}
