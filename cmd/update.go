package cmd

import (
	"context"
	"fmt"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// updateRepo is the GitHub repository releases are published to.
const updateRepo = "Jason2031/byrbt-bot"

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update byrbt-bot to the latest release",
	Long:  `Check GitHub for a newer byrbt-bot release and replace the running binary with it.`,
	RunE:  runUpdate,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("byrbt-bot %s (built %s)\n", appVersion, appBuildTime)
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	current, err := semver.ParseTolerant(appVersion)
	if err != nil {
		return fmt.Errorf("cannot self-update a '%s' build, install a released version first", appVersion)
	}

	ctx := context.Background()
	repo := selfupdate.ParseSlug(updateRepo)

	latest, found, err := selfupdate.DetectLatest(ctx, repo)
	if err != nil {
		return fmt.Errorf("checking for updates: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s", updateRepo)
	}
	if latest.LessOrEqual(current.String()) {
		fmt.Printf("Already up to date (%s).\n", appVersion)
		return nil
	}

	fmt.Printf("Updating %s -> %s...\n", appVersion, latest.Version())
	if _, err := selfupdate.UpdateSelf(ctx, current.String(), repo); err != nil {
		return fmt.Errorf("updating binary: %w", err)
	}

	fmt.Printf("Updated to %s.\n", latest.Version())
	return nil
}
