package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Stale artifacts found under --fail-on-stale
	ExitCommandError = 2 // Command error (bad manifest, unopenable cache, etc.)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string `json:"status"`         // "ok" or "error"
	Data   any    `json:"data,omitempty"` // success payload
	Error  string `json:"error,omitempty"`
}

// CheckReport is the result of one evaluation pass over a manifest.
type CheckReport struct {
	Manifest string        `json:"manifest"`
	Results  []CheckResult `json:"results"`
	Rebuilds int           `json:"rebuilds"`
	Total    int           `json:"total"`
}

// CheckResult is the rebuild decision for a single artifact.
type CheckResult struct {
	Path    string `json:"path"`
	Rebuild bool   `json:"rebuild"`
}

// Report outputs a check report in the configured format.
func (f *OutputFormatter) Report(r *CheckReport) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   r,
		})
	}
	renderCheckText(f.Writer, r)
	return nil
}

// Message outputs a plain success message in the configured format.
func (f *OutputFormatter) Message(msg string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   msg,
		})
	}
	fmt.Fprintln(f.Writer, msg)
	return nil
}

// renderCheckText writes the human-readable report: one verdict line
// per artifact in manifest order, then a summary.
func renderCheckText(w io.Writer, r *CheckReport) {
	for _, res := range r.Results {
		verdict := "skip"
		if res.Rebuild {
			verdict = "rebuild"
		}
		fmt.Fprintf(w, "%-8s %s\n", verdict, res.Path)
	}
	fmt.Fprintf(w, "\n%d of %d artifacts need rebuilding\n", r.Rebuilds, r.Total)
}
