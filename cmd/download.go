package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Jason2031/byrbt-bot/tracker"
)

var (
	downloadLocation string
	downloadDir      string
	downloadYes      bool
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:     "download <id>...",
	Aliases: []string{"dl"},
	Short:   "Download torrents and hand them to the client",
	Long: `Fetch the .torrent files for the given torrent ids and register them
with the configured download client.

The client save directory is picked from, in order: --dir, the
location named by --location, the per-category default from config,
and the location named "default".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadLocation, "location", "l", "", "named download location from config")
	downloadCmd.Flags().StringVarP(&downloadDir, "dir", "D", "", "explicit client save directory")
	downloadCmd.Flags().BoolVarP(&downloadYes, "yes", "y", false, "re-download without asking when a torrent is already in history")
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	ids, err := parseTorrentIDs(args)
	if err != nil {
		return err
	}
	return downloadTorrents(context.Background(), ids, downloadLocation, downloadDir, downloadYes)
}

// downloadTorrents is the shared body of download and the shell's dl
// command.
func downloadTorrents(ctx context.Context, ids []int, location, dir string, skipConfirm bool) error {
	ids, err := confirmSeenTorrents(ctx, ids, skipConfirm)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("Nothing to download.")
		return nil
	}

	opts := tracker.DownloadOptions{Location: location, Dir: dir}
	result := operations.DownloadAll(ctx, ids, opts)

	formatter := tracker.NewConsoleFormatter()
	fmt.Print(formatter.FormatDownloadResults(result))

	if len(result.Failed) > 0 {
		return fmt.Errorf("%d of %d downloads failed", len(result.Failed), result.Requested)
	}
	return nil
}

// confirmSeenTorrents warns about ids that are already in the download
// history and asks whether to grab them again.
func confirmSeenTorrents(ctx context.Context, ids []int, skipConfirm bool) ([]int, error) {
	if historyStore == nil || skipConfirm {
		return ids, nil
	}

	kept := make([]int, 0, len(ids))
	reader := bufio.NewReader(os.Stdin)
	for _, id := range ids {
		seen, err := historyStore.Seen(ctx, id)
		if err != nil {
			logger.Warn().Err(err).Int("torrent_id", id).Msg("Failed to check download history")
			kept = append(kept, id)
			continue
		}
		if !seen {
			kept = append(kept, id)
			continue
		}

		fmt.Printf("Torrent %d was downloaded before. Download again? [y/N]: ", id)
		response, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("reading confirmation: %w", err)
		}
		if strings.ToLower(strings.TrimSpace(response)) == "y" {
			kept = append(kept, id)
		} else {
			logger.Info().Int("torrent_id", id).Msg("Skipping previously downloaded torrent")
		}
	}
	return kept, nil
}

func parseTorrentIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid torrent id '%s'", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
