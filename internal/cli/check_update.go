package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pulselogic/internal/buildinfo"
	"pulselogic/internal/config"
	"pulselogic/internal/logging"
	"pulselogic/internal/updater"
)

// updateChecker is the part of the updater capability the command uses.
type updateChecker interface {
	CheckContext(ctx context.Context) (updater.UpdateInfo, error)
}

var newChecker = func(repo string) (updateChecker, error) {
	env := config.LoadOrDefault()
	if repo == "" {
		repo = env.UpdateRepo
	}
	logCfg := logging.DefaultConfig()
	logCfg.Level = env.LogLevel
	logCfg.Development = env.LogDevelopment
	// Keep stdout for the report, including --json output.
	logCfg.OutputPaths = []string{"stderr"}
	log, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return updater.New(repo, buildinfo.Version, config.NewJSONStore(env.SettingsPath()), log)
}

func newCheckUpdateCmd() *cobra.Command {
	var (
		repo   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "check-update",
		Short: "Check whether a newer pulselogic release is available",
		Long: `Queries the release feed for the newest published version and compares
it with the running build. Nothing is downloaded or installed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			checker, err := newChecker(repo)
			if err != nil {
				return err
			}
			info, err := checker.CheckContext(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			printUpdateInfo(cmd.OutOrStdout(), info)
			return nil
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "release repository as owner/name (default from PULSELOGIC_UPDATE_REPO)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func printUpdateInfo(out io.Writer, info updater.UpdateInfo) {
	fmt.Fprintf(out, "Current version: %s\n", info.CurrentVersion)
	switch {
	case info.LatestVersion == "":
		fmt.Fprintln(out, "No published release found.")
	case !info.Available:
		fmt.Fprintln(out, "Current version is the latest.")
	default:
		fmt.Fprintf(out, "Found newer version: %s (published at %s)\n", info.LatestVersion, info.PublishedAt.Format("2006-01-02"))
		if info.ReleaseNotes != "" {
			fmt.Fprintf(out, "Release notes:\n%s\n", info.ReleaseNotes)
		}
		fmt.Fprintf(out, "Download: %s\n", info.ReleaseURL)
	}
}
