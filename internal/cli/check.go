package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/rebake/internal/cache"
	"github.com/roach88/rebake/internal/fingerprint"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Incremental bool
	FailOnStale bool

	// Cache overrides the SQLite cache (for testing).
	Cache cache.Cache
	// FS overrides the filesystem capability (for testing).
	FS fingerprint.FS
	// RunTokens overrides the run token generator (for testing).
	RunTokens fingerprint.RunTokenGenerator
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check [manifest]",
		Short: "Decide which artifacts need rebuilding",
		Long: `Evaluate every artifact in the manifest against the fingerprint
cache and report which ones must be rebuilt this run.

The manifest defaults to rebake.yaml in the current directory. The
fingerprint cache is updated at the end of the run unless incremental
mode is disabled with --incremental=false.

Example:
  rebake check
  rebake check site/rebake.yaml --cache /tmp/cache.db --format json
  rebake check --fail-on-stale   # exit 1 if anything is stale (CI)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			manifestPath := "rebake.yaml"
			if len(args) == 1 {
				manifestPath = args[0]
			}
			return runCheck(opts, manifestPath, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Incremental, "incremental", true, "persist fingerprints at end of run")
	cmd.Flags().BoolVar(&opts.FailOnStale, "fail-on-stale", false, "exit with code 1 if any artifact needs rebuilding")

	return cmd
}

func runCheck(opts *CheckOptions, manifestPath string, cmd *cobra.Command) error {
	log := newLogger(opts.RootOptions, cmd)

	manifest, errs := LoadManifest(manifestPath)
	if len(errs) > 0 {
		for _, err := range errs[1:] {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
		return WrapExitError(ExitCommandError, "failed to load manifest", errs[0])
	}
	log.Debug("manifest loaded", "path", manifestPath, "artifacts", len(manifest.Artifacts))

	c := opts.Cache
	if c == nil {
		sqlite, err := cache.Open(opts.CachePath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open fingerprint cache", err)
		}
		defer func() {
			if closeErr := sqlite.Close(); closeErr != nil {
				log.Error("error closing fingerprint cache", "error", closeErr)
			}
		}()
		c = sqlite
	}

	fs := opts.FS
	if fs == nil {
		fs = fingerprint.OSFS{}
	}

	storeOpts := []fingerprint.StoreOption{fingerprint.WithLogger(log)}
	if opts.RunTokens != nil {
		storeOpts = append(storeOpts, fingerprint.WithRunTokenGenerator(opts.RunTokens))
	}
	store := fingerprint.NewStore(c, fs, opts.Incremental, storeOpts...)

	if err := store.Load(); err != nil {
		return WrapExitError(ExitCommandError, "failed to load fingerprint cache", err)
	}

	// Register the declared dependency edges up front. Edges routinely
	// land before their artifact is evaluated; the store's first-seen
	// bookkeeping is what keeps that ordering correct.
	for _, a := range manifest.Artifacts {
		for _, dep := range a.Dependencies {
			store.AddDependency(a.Path(), dep)
		}
	}

	evaluator := fingerprint.NewEvaluator(store)

	report := &CheckReport{Manifest: manifestPath}
	for _, a := range manifest.Artifacts {
		rebuild := evaluator.ShouldRebuild(a)
		if rebuild {
			report.Rebuilds++
		}
		report.Results = append(report.Results, CheckResult{
			Path:    a.Path(),
			Rebuild: rebuild,
		})
	}
	report.Total = len(report.Results)

	if err := store.Flush(); err != nil {
		return WrapExitError(ExitCommandError, "failed to persist fingerprint cache", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if err := formatter.Report(report); err != nil {
		return WrapExitError(ExitCommandError, "failed to write report", err)
	}

	if opts.FailOnStale && report.Rebuilds > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d artifacts need rebuilding", report.Rebuilds))
	}
	return nil
}

// newLogger builds the slog logger for a command invocation, honoring
// the --verbose flag and keeping diagnostics on stderr so JSON output
// stays parseable.
func newLogger(opts *RootOptions, cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
