package cli

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"

	"github.com/roach88/rebake/internal/fingerprint"
)

//go:embed schema.cue
var schemaCUE string

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric   = "E001" // Generic/unknown error
	ErrCodeReadError = "E002" // Manifest read error
	ErrCodeParse     = "E003" // YAML parse error
	ErrCodeSchema    = "E004" // Schema violation
	ErrCodeNotFound  = "E005" // Path not found
	ErrCodeDuplicate = "E006" // Duplicate artifact path
)

// LoadError represents an error that occurred during manifest loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Manifest is the run input: the artifacts to evaluate, in order.
type Manifest struct {
	Artifacts []*ManifestArtifact `yaml:"artifacts" json:"artifacts"`
}

// ManifestArtifact is one artifact declaration. It satisfies
// fingerprint.Artifact, so the manifest entry itself is handed to the
// evaluator.
type ManifestArtifact struct {
	ArtifactPath string         `yaml:"path" json:"path"`
	Output       *bool          `yaml:"output" json:"output,omitempty"`
	Asset        bool           `yaml:"asset" json:"asset,omitempty"`
	Data         map[string]any `yaml:"data" json:"data,omitempty"`
	Dependencies []string       `yaml:"dependencies" json:"dependencies,omitempty"`
}

// Path returns the artifact's identifying path.
func (a *ManifestArtifact) Path() string { return a.ArtifactPath }

// IsWritable reports whether the artifact is written as output.
// Omitted in the manifest means true.
func (a *ManifestArtifact) IsWritable() bool { return a.Output == nil || *a.Output }

// IsAssetKind reports the host's asset classification.
func (a *ManifestArtifact) IsAssetKind() bool { return a.Asset }

// OverrideData returns the artifact's data map for override detection.
func (a *ManifestArtifact) OverrideData() map[string]any { return a.Data }

// LoadManifest reads, schema-validates, and decodes a manifest file.
// All schema violations are collected before returning, each carrying
// its source position.
func LoadManifest(path string) (*Manifest, []error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("manifest not found: %s", path)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeReadError, Message: fmt.Sprintf("reading manifest: %v", err)}}
	}

	// Decode first: a syntactically broken manifest gets one parse
	// error instead of a cascade of schema errors.
	manifest := &Manifest{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(manifest); err != nil && !errors.Is(err, io.EOF) {
		return nil, []error{&LoadError{Code: ErrCodeParse, Message: fmt.Sprintf("parsing manifest: %v", err)}}
	}

	if errs := validateSchema(path, data); len(errs) > 0 {
		return nil, errs
	}

	if errs := validateUniquePaths(manifest); len(errs) > 0 {
		return nil, errs
	}

	return manifest, nil
}

// validateSchema unifies the manifest document with the embedded CUE
// schema and converts any violations into positioned LoadErrors.
func validateSchema(path string, data []byte) []error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("compiling manifest schema: %v", err)}}
	}

	file, err := cueyaml.Extract(path, data)
	if err != nil {
		return []error{&LoadError{Code: ErrCodeParse, Message: fmt.Sprintf("parsing manifest: %v", err)}}
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return []error{&LoadError{Code: ErrCodeParse, Message: fmt.Sprintf("building manifest value: %v", err)}}
	}

	unified := schema.Unify(doc)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		var errs []error
		for _, e := range cueerrors.Errors(err) {
			errs = append(errs, &LoadError{
				Code:    ErrCodeSchema,
				Message: e.Error(),
				Pos:     e.Position(),
			})
		}
		return errs
	}

	return nil
}

// validateUniquePaths rejects manifests declaring the same artifact
// twice. Paths are compared in normalized form, so NFC/NFD spellings
// of one logical path collide here instead of silently sharing a
// record.
func validateUniquePaths(m *Manifest) []error {
	var errs []error
	seen := make(map[string]bool, len(m.Artifacts))
	for _, a := range m.Artifacts {
		key := fingerprint.NormalizePath(a.ArtifactPath)
		if seen[key] {
			errs = append(errs, &LoadError{
				Code:    ErrCodeDuplicate,
				Message: fmt.Sprintf("duplicate artifact path: %s", a.ArtifactPath),
			})
			continue
		}
		seen[key] = true
	}
	return errs
}
