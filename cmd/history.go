package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Jason2031/byrbt-bot/history"
)

var (
	historyLimit    int
	historyMarkdown string
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded downloads",
	Long: `Show the most recent tracker-to-client handoffs recorded in the local
history database. With --markdown the history is written to a
Markdown file instead of the console.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of records to show (0 for all)")
	historyCmd.Flags().StringVar(&historyMarkdown, "markdown", "", "write the history to a Markdown file")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	return showHistory(context.Background(), historyLimit, historyMarkdown)
}

// showHistory is shared with the shell's history command.
func showHistory(ctx context.Context, limit int, markdownPath string) error {
	if historyStore == nil {
		return fmt.Errorf("history store is not available")
	}

	records, err := historyStore.Recent(ctx, limit)
	if err != nil {
		return err
	}

	if markdownPath != "" {
		f, err := os.Create(markdownPath)
		if err != nil {
			return fmt.Errorf("creating markdown file: %w", err)
		}
		defer f.Close()

		if err := history.WriteMarkdown(f, records); err != nil {
			return fmt.Errorf("writing markdown history: %w", err)
		}
		fmt.Printf("Wrote %d records to %s.\n", len(records), markdownPath)
		return nil
	}

	if len(records) == 0 {
		fmt.Println("No downloads recorded.")
		return nil
	}
	fmt.Println(historyTable(records))
	return nil
}
