package history

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Jason2031/byrbt-bot/tracker"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func record(id int, name string, at time.Time) tracker.DownloadRecord {
	return tracker.DownloadRecord{
		TorrentID:    id,
		Name:         name,
		Category:     "电影",
		SaveDir:      "/data/movies",
		Client:       "transmission",
		DownloadedAt: at,
	}
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i, name := range []string{"first", "second", "third"} {
		if err := store.RecordDownload(ctx, record(100+i, name, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("RecordDownload failed: %v", err)
		}
	}

	records, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Recent returned %d records, want 2", len(records))
	}
	// Most recent first.
	if records[0].Name != "third" || records[1].Name != "second" {
		t.Errorf("Recent order = %q, %q; want third, second", records[0].Name, records[1].Name)
	}
	if !records[0].DownloadedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("DownloadedAt = %v, want %v", records[0].DownloadedAt, base.Add(2*time.Hour))
	}
	if records[0].SaveDir != "/data/movies" || records[0].Client != "transmission" {
		t.Errorf("record fields not round-tripped: %+v", records[0])
	}

	all, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Recent(0) returned %d records, want 3", len(all))
	}
}

func TestSeen(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	seen, err := store.Seen(ctx, 42)
	if err != nil {
		t.Fatalf("Seen failed: %v", err)
	}
	if seen {
		t.Error("Seen reported true for an empty store")
	}

	if err := store.RecordDownload(ctx, record(42, "some torrent", time.Now())); err != nil {
		t.Fatalf("RecordDownload failed: %v", err)
	}

	seen, err = store.Seen(ctx, 42)
	if err != nil {
		t.Fatalf("Seen failed: %v", err)
	}
	if !seen {
		t.Error("Seen reported false after recording")
	}
}

func TestWriteMarkdown(t *testing.T) {
	var sb strings.Builder
	records := []tracker.DownloadRecord{
		record(7, "Some.Movie.2024", time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)),
	}

	if err := WriteMarkdown(&sb, records); err != nil {
		t.Fatalf("WriteMarkdown failed: %v", err)
	}

	out := sb.String()
	for _, want := range []string{"# Download History", "Some.Movie.2024", "transmission", "2026-08-20 09:30"} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteMarkdownEmpty(t *testing.T) {
	var sb strings.Builder
	if err := WriteMarkdown(&sb, nil); err != nil {
		t.Fatalf("WriteMarkdown failed: %v", err)
	}
	if !strings.Contains(sb.String(), "No downloads recorded.") {
		t.Errorf("empty markdown output unexpected:\n%s", sb.String())
	}
}
