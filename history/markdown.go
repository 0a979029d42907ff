package history

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/Jason2031/byrbt-bot/tracker"
)

// WriteMarkdown renders download records as a Markdown document, for
// the history command's --markdown export.
func WriteMarkdown(w io.Writer, records []tracker.DownloadRecord) error {
	md := markdown.NewMarkdown(w)

	md.H1("Download History")
	md.PlainText("")

	if len(records) == 0 {
		md.PlainText("No downloads recorded.")
		return md.Build()
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		client := rec.Client
		if client == "" {
			client = "-"
		}
		rows = append(rows, []string{
			strconv.Itoa(rec.TorrentID),
			rec.Name,
			rec.Category,
			rec.SaveDir,
			client,
			rec.DownloadedAt.Format("2006-01-02 15:04"),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"ID", "Name", "Category", "Save Dir", "Client", "Downloaded"},
		Rows:   rows,
	})
	md.PlainText("")
	md.PlainText(fmt.Sprintf("%d downloads total.", len(records)))

	return md.Build()
}
