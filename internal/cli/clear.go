package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/rebake/internal/cache"
	"github.com/roach88/rebake/internal/fingerprint"
)

// ClearOptions holds flags for the clear command.
type ClearOptions struct {
	*RootOptions

	// Cache overrides the SQLite cache (for testing).
	Cache cache.Cache
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClearOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Discard the fingerprint cache",
		Long: `Delete the persisted fingerprint mapping. The next check behaves
like a first-ever cold run: every artifact is considered stale once.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(opts, cmd)
		},
	}

	return cmd
}

func runClear(opts *ClearOptions, cmd *cobra.Command) error {
	log := newLogger(opts.RootOptions, cmd)

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

	store := fingerprint.NewStore(c, fingerprint.OSFS{}, true, fingerprint.WithLogger(log))
	if err := store.Clear(); err != nil {
		return WrapExitError(ExitCommandError, "failed to clear fingerprint cache", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Message("fingerprint cache cleared")
}
