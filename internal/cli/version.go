package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/palimpsest/internal/version"
)

// BuildInfo carries version metadata injected at build time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

//nolint:gochecknoglobals // populated by SetVersionInfo from main's ldflags
var buildInfo BuildInfo

// SetVersionInfo records build metadata for the version command.
func SetVersionInfo(info BuildInfo) {
	buildInfo = info
	rootCmd.Version = formatVersion(info)
}

// formatVersion renders build metadata, substituting placeholders for
// anything the build did not inject.
func formatVersion(info BuildInfo) string {
	v := info.Version
	if v == "" {
		v = "dev"
	}
	commit := info.Commit
	if commit == "" {
		commit = "unknown"
	}
	date := info.Date
	if date == "" {
		date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", v, commit, date)
}

// versionCmd prints version information.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display the palimpsest version, commit, and build date.

With --check, also query GitHub for the latest release.

Examples:
  palimpsest version
  palimpsest version --check`,
	RunE: runVersion,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var versionCheck bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check GitHub for a newer release")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	if formatter.IsJSON() {
		payload := map[string]any{
			"version": buildInfo.Version,
			"commit":  buildInfo.Commit,
			"date":    buildInfo.Date,
		}
		if versionCheck {
			latest, err := checkLatestRelease(cmd)
			if err != nil {
				payload["check_error"] = err.Error()
			} else {
				payload["latest"] = latest
				payload["update_available"] = version.IsNewerVersion(buildInfo.Version, latest)
			}
		}
		return writeJSON(w, payload)
	}

	out(w, "palimpsest %s\n", formatVersion(buildInfo))

	if versionCheck {
		latest, err := checkLatestRelease(cmd)
		if err != nil {
			out(w, "Release check failed: %v\n", err)
			return nil
		}
		if version.IsNewerVersion(buildInfo.Version, latest) {
			out(w, "A newer release is available: %s\n", latest)
		} else {
			outln(w, "You are on the latest release.")
		}
	}
	return nil
}

func checkLatestRelease(cmd *cobra.Command) (string, error) {
	ctx, cancel := contextWithTimeout(cmd, 30*time.Second)
	defer cancel()

	release, err := version.GetLatestRelease(ctx, "mrz1836", "palimpsest")
	if err != nil {
		return "", err
	}
	return release.TagName, nil
}
