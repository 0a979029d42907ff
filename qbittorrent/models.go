package qbittorrent

import (
	"fmt"
	"time"
)

// infiniteETA is what qBittorrent reports when it has no estimate.
const infiniteETA = 8640000

// stateLabel maps qBittorrent's torrent states onto the short status
// words the listing tables use.
func stateLabel(state string) string {
	switch state {
	case "downloading", "forcedDL", "metaDL":
		return "Downloading"
	case "stalledDL":
		return "Stalled"
	case "uploading", "stalledUP", "forcedUP":
		return "Seeding"
	case "queuedDL", "queuedUP":
		return "Queued"
	case "pausedDL", "stoppedDL":
		return "Paused"
	case "pausedUP", "stoppedUP":
		return "Done"
	case "checkingDL", "checkingUP", "checkingResumeData":
		return "Checking"
	case "error", "missingFiles":
		return "Error"
	default:
		return state
	}
}

// formatETA renders qBittorrent's ETA seconds the way transmission-remote
// does, so both backends read the same in the status table.
func formatETA(seconds int64) string {
	if seconds <= 0 {
		return "Done"
	}
	if seconds >= infiniteETA {
		return "Unknown"
	}
	d := time.Duration(seconds) * time.Second
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%d days", int(d.Hours())/24)
	case d >= time.Hour:
		return fmt.Sprintf("%d hrs", int(d.Hours()))
	case d >= time.Minute:
		return fmt.Sprintf("%d min", int(d.Minutes()))
	default:
		return fmt.Sprintf("%d sec", int(d.Seconds()))
	}
}
