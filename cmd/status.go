package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var removeDeleteData bool

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"tls"},
	Short:   "Show the download client's torrents",
	RunE:    runStatus,
}

// removeCmd represents the remove command
var removeCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"trm"},
	Short:   "Remove a torrent from the download client",
	Long: `Remove a torrent from the download client. The id is the one shown by
status: transmission's numeric id or qBittorrent's info hash.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

// refreshCmd represents the refresh command
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Force a fresh tracker login",
	Long:  `Log into the tracker again, replacing the saved session cookies.`,
	RunE:  runRefresh,
}

func init() {
	removeCmd.Flags().BoolVar(&removeDeleteData, "delete-data", false, "also delete the downloaded data")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(refreshCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	return showClientStatus(context.Background())
}

func runRemove(cmd *cobra.Command, args []string) error {
	return removeClientTorrent(context.Background(), args[0], removeDeleteData)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	if err := operations.Refresh(context.Background()); err != nil {
		return err
	}
	fmt.Println("Logged in, session cookies refreshed.")
	return nil
}

// showClientStatus is shared with the shell's tls command.
func showClientStatus(ctx context.Context) error {
	torrents, err := operations.ClientTorrents(ctx)
	if err != nil {
		return err
	}
	if len(torrents) == 0 {
		fmt.Println("The download client has no torrents.")
		return nil
	}
	fmt.Println(clientTable(torrents))
	return nil
}

// removeClientTorrent is shared with the shell's trm command.
func removeClientTorrent(ctx context.Context, id string, deleteData bool) error {
	if err := operations.RemoveFromClient(ctx, id, deleteData); err != nil {
		return err
	}
	fmt.Printf("Removed torrent %s.\n", id)
	return nil
}
