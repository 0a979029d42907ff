package cmd

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Jason2031/byrbt-bot/tracker"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// listingTable renders tracker listing rows.
func listingTable(torrents []tracker.Torrent) string {
	headers := []string{"ID", "CATEGORY", "TITLE", "PROMO", "FLAGS", "SIZE", "SEED", "LEECH", "DONE"}
	aligns := []columnAlignment{
		alignRight, alignLeft, alignLeft, alignLeft, alignLeft,
		alignRight, alignRight, alignRight, alignRight,
	}

	rows := make([][]string, 0, len(torrents))
	for _, t := range torrents {
		rows = append(rows, []string{
			strconv.Itoa(t.ID),
			t.Category,
			torrentTitle(t),
			t.Promotion.Label(),
			torrentFlags(t),
			tracker.FormatBytes(t.Size),
			strconv.Itoa(t.Seeders),
			strconv.Itoa(t.Leechers),
			strconv.Itoa(t.Snatched),
		})
	}
	return renderTable(headers, rows, aligns)
}

func torrentTitle(t tracker.Torrent) string {
	if t.Subtitle == "" {
		return t.Title
	}
	return t.Title + "\n" + t.Subtitle
}

func torrentFlags(t tracker.Torrent) string {
	var flags string
	if t.Hot {
		flags += "🔥"
	}
	if t.Seeding {
		flags += "⬆"
	} else if t.Finished {
		flags += "✓"
	}
	return flags
}

// clientTable renders the download client's torrents.
func clientTable(torrents []tracker.ClientTorrent) string {
	headers := []string{"ID", "NAME", "STATUS", "DONE", "RATIO", "SIZE", "ETA"}
	aligns := []columnAlignment{
		alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft,
	}

	rows := make([][]string, 0, len(torrents))
	for _, t := range torrents {
		rows = append(rows, []string{
			t.ID,
			t.Name,
			t.Status,
			strconv.FormatFloat(t.Progress, 'f', 0, 64) + "%",
			strconv.FormatFloat(t.Ratio, 'f', 2, 64),
			tracker.FormatBytes(t.Size),
			t.ETA,
		})
	}
	return renderTable(headers, rows, aligns)
}

// historyTable renders download history records.
func historyTable(records []tracker.DownloadRecord) string {
	headers := []string{"ID", "NAME", "CATEGORY", "SAVE DIR", "CLIENT", "DOWNLOADED"}
	aligns := []columnAlignment{
		alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft,
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			strconv.Itoa(rec.TorrentID),
			rec.Name,
			rec.Category,
			rec.SaveDir,
			rec.Client,
			rec.DownloadedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return renderTable(headers, rows, aligns)
}
