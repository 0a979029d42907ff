package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Jason2031/byrbt-bot/tracker"
)

var (
	listCategory string
	listTag      string
	listPage     int
	listFilter   string
	listPreset   string
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List torrents from the tracker",
	Long: `List one page of the tracker's torrent listing, optionally restricted
to a category, a promotion tag, and a client-side filter expression.`,
	RunE: runList,
}

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:     "search <query>...",
	Aliases: []string{"se"},
	Short:   "Search torrents on the tracker",
	Long:    `Search the tracker's torrent listing by free text, with the same category, tag and filter restrictions as list.`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runSearch,
}

func init() {
	for _, cmd := range []*cobra.Command{listCmd, searchCmd} {
		cmd.Flags().StringVarP(&listCategory, "category", "c", "", "category name (e.g. movie, episode, anime)")
		cmd.Flags().StringVarP(&listTag, "tag", "t", "", "promotion tag (e.g. free, twoup)")
		cmd.Flags().IntVarP(&listPage, "page", "p", 0, "result page")
		cmd.Flags().StringVarP(&listFilter, "filter", "f", "", "filter expression")
		cmd.Flags().StringVar(&listPreset, "preset", "", "use a preset filter from config")
		rootCmd.AddCommand(cmd)
	}
}

func runList(cmd *cobra.Command, args []string) error {
	return listTorrents(context.Background(), listCategory, listTag, listPage, "", listFilter, listPreset)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	return listTorrents(context.Background(), listCategory, listTag, listPage, query, listFilter, listPreset)
}

// listTorrents is the shared body of list, search and the shell's
// ls/se commands.
func listTorrents(ctx context.Context, category, tag string, page int, search, filterExpr, preset string) error {
	query, err := buildListingQuery(category, tag, page, search)
	if err != nil {
		return err
	}

	match, err := matchFunc(filterExpr, preset)
	if err != nil {
		return err
	}

	torrents, err := operations.ListTorrents(ctx, query, match)
	if err != nil {
		return err
	}

	if len(torrents) == 0 {
		fmt.Println("No torrents found.")
		return nil
	}

	fmt.Println(listingTable(torrents))
	fmt.Printf("%d torrents\n", len(torrents))
	return nil
}

// buildListingQuery resolves category and promotion names into the
// site's numeric codes.
func buildListingQuery(category, tag string, page int, search string) (tracker.ListingQuery, error) {
	query := tracker.ListingQuery{Page: page, Search: search}

	if category != "" {
		cat, ok := cfg.Category(category)
		if !ok {
			return query, fmt.Errorf("unknown category '%s' (configured: %s)", category, strings.Join(categoryNames(), ", "))
		}
		query.Category = cat.Code
	}

	if tag != "" {
		code, ok := cfg.PromotionCode(tag)
		if !ok {
			return query, fmt.Errorf("unknown promotion tag '%s'", tag)
		}
		query.Promotion = code
	}

	return query, nil
}

func categoryNames() []string {
	names := make([]string, 0, len(cfg.Categories))
	for name := range cfg.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
