package cli

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/palimpsest/internal/output"
	"github.com/mrz1836/palimpsest/internal/update"
	plmerr "github.com/mrz1836/palimpsest/pkg/errors"
)

// reclaimCmd recovers from interrupted updates.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var reclaimCmd = &cobra.Command{
	Use:   "reclaim",
	Short: "Recover from interrupted updates",
	Long: `Scan for lock files and write-ahead journals left behind by crashed or
killed update operations and recover each one.

A journal that committed before the crash is completed; anything earlier is
rolled back to the pre-update container. Locks held by live processes are
left alone.

Reclaim runs automatically before every update; run it manually when an
update reports a lock timeout.

Examples:
  palimpsest reclaim
  palimpsest reclaim --stale-after 1m`,
	RunE: runReclaim,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var reclaimStaleAfter time.Duration

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(reclaimCmd)

	reclaimCmd.Flags().DurationVar(&reclaimStaleAfter, "stale-after", 0,
		"treat artifacts older than this as abandoned (default from config)")
}

func runReclaim(cmd *cobra.Command, _ []string) error {
	staleAfter := reclaimStaleAfter
	if staleAfter <= 0 {
		staleAfter = time.Duration(cfg.Update.StaleAfterMinutes) * time.Minute
	}

	dir := filepath.Dir(containerFile())

	result, err := update.Reclaim(dir, staleAfter)
	if err != nil {
		return plmerr.Wrap(err, "reclaiming %s", dir)
	}

	logger.Debug("reclaim in %s: %d locks, %d rolled back, %d completed",
		dir, result.LocksRemoved, result.WALsRolledBack, result.WALsCompleted)

	w := cmd.OutOrStdout()

	if formatter.IsJSON() {
		return writeJSON(w, map[string]any{
			"directory":        dir,
			"locks_removed":    result.LocksRemoved,
			"wals_rolled_back": result.WALsRolledBack,
			"wals_completed":   result.WALsCompleted,
		})
	}

	if result.LocksRemoved == 0 && result.WALsRolledBack == 0 && result.WALsCompleted == 0 {
		output.Info(w, "Nothing to reclaim.")
		return nil
	}

	out(w, "Removed %d stale lock(s), rolled back %d journal(s), completed %d journal(s).\n",
		result.LocksRemoved, result.WALsRolledBack, result.WALsCompleted)
	return nil
}
