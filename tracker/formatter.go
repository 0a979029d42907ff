package tracker

import (
	"fmt"
	"strings"
)

// ConsoleFormatter provides console output formatting for download
// results and torrent details.
type ConsoleFormatter struct{}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{}
}

// FormatDownloadResults formats a batch download outcome for console
// display.
func (f *ConsoleFormatter) FormatDownloadResults(result BatchDownloadResult) string {
	var sb strings.Builder

	if len(result.Successful) > 0 {
		fmt.Fprintf(&sb, "\nDownloaded (%d):\n\n", len(result.Successful))
		for i, res := range result.Successful {
			isLast := i == len(result.Successful)-1
			prefix := "├"
			if isLast {
				prefix = "╰"
			}

			fmt.Fprintf(&sb, "%s── %s (#%d)\n", prefix, res.Detail.Name, res.Detail.ID)

			indent := "│   "
			if isLast {
				indent = "    "
			}
			if res.Detail.Category != "" {
				fmt.Fprintf(&sb, "%sCategory: %s\n", indent, res.Detail.Category)
			}
			if res.Client != "" {
				target := res.Client
				if res.SaveDir != "" {
					target += " → " + res.SaveDir
				}
				fmt.Fprintf(&sb, "%sClient: %s\n", indent, target)
			} else {
				fmt.Fprintf(&sb, "%sSaved: %s\n", indent, res.TorrentPath)
			}

			if !isLast {
				sb.WriteString("│\n")
			}
		}
	}

	if len(result.Failed) > 0 {
		fmt.Fprintf(&sb, "\nFailed (%d):\n\n", len(result.Failed))
		for i, derr := range result.Failed {
			isLast := i == len(result.Failed)-1
			prefix := "├"
			if isLast {
				prefix = "╰"
			}
			fmt.Fprintf(&sb, "%s── #%d: %v\n", prefix, derr.TorrentID, derr.Err)
		}
	}

	if sb.Len() == 0 {
		return "Nothing downloaded\n"
	}
	sb.WriteString("\n")
	return sb.String()
}

// FormatTorrentDetail formats a single torrent detail for console
// display.
func (f *ConsoleFormatter) FormatTorrentDetail(detail TorrentDetail) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "╰── %s (#%d)\n", detail.Name, detail.ID)
	if detail.Category != "" {
		fmt.Fprintf(&sb, "    Category: %s\n", detail.Category)
	}
	fmt.Fprintf(&sb, "    Download: %s\n", detail.DownloadURL)
	return sb.String()
}

// FormatBytes renders a byte count in human-readable binary units.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
