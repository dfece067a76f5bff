package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/zorak1103/docktail/internal/tailer"
)

// addStreamFlags registers the tailing flags on cmd. Shared with tests so
// they can build an isolated flag set instead of mutating the root command.
func addStreamFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("exact", false, "match the container name exactly")
	cmd.Flags().Bool("substring", false, "match containers by name substring (default)")
	cmd.Flags().String("tail", "all", `lines of history to replay before following ("all" or a number)`)
	cmd.Flags().Int("since", 0, "only replay logs from the last N seconds")
	cmd.Flags().Float64("refresh", 1.0, "seconds between rescans for matching containers (substring mode)")
	cmd.Flags().Bool("include-tty", false, "include containers started with a TTY")
	cmd.Flags().Bool("exclude-tty", false, "exclude TTY/interactive containers (default)")
	cmd.MarkFlagsMutuallyExclusive("exact", "substring")
	cmd.MarkFlagsMutuallyExclusive("include-tty", "exclude-tty")
}

// optionsFromCmd reads the flag values into an immutable tailer.Options,
// validating them before the core loop starts. This reads directly from the
// command instead of package globals so tests can drive it with their own
// flag sets.
func optionsFromCmd(cmd *cobra.Command, pattern string) (tailer.Options, error) {
	// GetBool/GetString never return errors when flags are properly defined
	exact, _ := cmd.Flags().GetBool("exact")
	tail, _ := cmd.Flags().GetString("tail")
	since, _ := cmd.Flags().GetInt("since")
	refresh, _ := cmd.Flags().GetFloat64("refresh")
	includeTTY, _ := cmd.Flags().GetBool("include-tty")

	opts := tailer.Options{
		Pattern:    pattern,
		Exact:      exact,
		Tail:       tail,
		Since:      since,
		Refresh:    time.Duration(refresh * float64(time.Second)),
		IncludeTTY: includeTTY,
	}
	if err := opts.Validate(); err != nil {
		return tailer.Options{}, err
	}
	return opts, nil
}
