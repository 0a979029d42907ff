package transmission

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Jason2031/byrbt-bot/tracker"
)

// etaUnits are the duration words transmission-remote prints after a
// number in the ETA column.
var etaUnits = map[string]bool{
	"sec":  true,
	"secs": true,
	"min":  true,
	"mins": true,
	"hrs":  true,
	"days": true,
}

// sizeMultipliers covers the unit column of Have. transmission-remote
// prints SI units; the binary spellings are accepted too.
var sizeMultipliers = map[string]float64{
	"B":   1,
	"kB":  1000,
	"KB":  1000,
	"MB":  1000 * 1000,
	"GB":  1000 * 1000 * 1000,
	"TB":  1000 * 1000 * 1000 * 1000,
	"KiB": 1024,
	"MiB": 1024 * 1024,
	"GiB": 1024 * 1024 * 1024,
	"TiB": 1024 * 1024 * 1024 * 1024,
}

// parseList parses transmission-remote -l output. The columns are
// whitespace-aligned and several of them ("1.23 GB", "2 hrs",
// "Up & Down") contain spaces themselves, so rows are walked token by
// token instead of split at fixed positions.
func parseList(out string) ([]tracker.ClientTorrent, error) {
	var torrents []tracker.ClientTorrent

	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "ID") || strings.HasPrefix(trimmed, "Sum:") {
			continue
		}

		t, err := parseListRow(trimmed)
		if err != nil {
			return nil, fmt.Errorf("parsing transmission-remote output line %q: %w", trimmed, err)
		}
		torrents = append(torrents, t)
	}

	return torrents, nil
}

func parseListRow(line string) (tracker.ClientTorrent, error) {
	f := strings.Fields(line)
	if len(f) < 7 {
		return tracker.ClientTorrent{}, fmt.Errorf("short row")
	}
	i := 0

	// ID, with a trailing * when the torrent has an error
	id := strings.TrimSuffix(f[i], "*")
	if _, err := strconv.Atoi(id); err != nil {
		return tracker.ClientTorrent{}, fmt.Errorf("bad torrent id %q", f[i])
	}
	i++

	// Done percentage, "n/a" before metadata arrives
	var progress float64
	if pct := strings.TrimSuffix(f[i], "%"); pct != f[i] {
		progress, _ = strconv.ParseFloat(pct, 64)
	}
	i++

	// Have: either "None" or value + unit
	var size int64
	if f[i] == "None" {
		i++
	} else {
		if i+1 >= len(f) {
			return tracker.ClientTorrent{}, fmt.Errorf("truncated size column")
		}
		value, err := strconv.ParseFloat(f[i], 64)
		mult, ok := sizeMultipliers[f[i+1]]
		if err != nil || !ok {
			return tracker.ClientTorrent{}, fmt.Errorf("bad size %q %q", f[i], f[i+1])
		}
		size = int64(value * mult)
		i += 2
	}

	// ETA: "Done", "Unknown" etc. are one token, "2 hrs" is two
	eta := f[i]
	i++
	if i < len(f) && etaUnits[f[i]] {
		eta += " " + f[i]
		i++
	}

	// Up, Down, Ratio
	if i+3 >= len(f) {
		return tracker.ClientTorrent{}, fmt.Errorf("truncated rate columns")
	}
	i += 2 // up and down rates are not carried over
	ratio := 0.0
	if f[i] != "None" {
		ratio, _ = strconv.ParseFloat(f[i], 64)
	}
	i++

	// Status, then everything left is the name. "Up & Down" is the one
	// multi-token status transmission prints.
	status := f[i]
	i++
	if status == "Up" && i+1 < len(f) && f[i] == "&" {
		status = "Up & Down"
		i += 2
	}
	name := strings.Join(f[i:], " ")

	return tracker.ClientTorrent{
		ID:       id,
		Name:     name,
		Status:   status,
		Progress: progress,
		Ratio:    ratio,
		Size:     size,
		ETA:      eta,
	}, nil
}
