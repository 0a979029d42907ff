package filter

import (
	"errors"
	"testing"

	"github.com/Jason2031/byrbt-bot/tracker"
)

func sampleTorrent() tracker.Torrent {
	return tracker.Torrent{
		ID:        123456,
		Category:  "电影",
		Title:     "Some.Movie.2024.1080p.BluRay.x264",
		Subtitle:  "中英双语字幕",
		Promotion: tracker.PromotionTwoUpFree,
		Hot:       true,
		Size:      12 << 30, // 12 GiB
		Seeders:   80,
		Leechers:  4,
		Snatched:  200,
	}
}

func TestCompileAndEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		want       bool
	}{
		{
			name:       "title substring",
			expression: `contains(Title, "1080p")`,
			want:       true,
		},
		{
			name:       "case insensitive substring",
			expression: `contains(Title, "BLURAY")`,
			want:       true,
		},
		{
			name:       "size threshold",
			expression: `Size > GB(10)`,
			want:       true,
		},
		{
			name:       "size threshold not met",
			expression: `Size > GB(20)`,
			want:       false,
		},
		{
			name:       "free leech helper",
			expression: `isFree()`,
			want:       true,
		},
		{
			name:       "promotion name",
			expression: `hasPromotion("twoupfree")`,
			want:       true,
		},
		{
			name:       "promotion field",
			expression: `Promotion == "twoupfree"`,
			want:       true,
		},
		{
			name:       "swarm ratio",
			expression: `ratio() >= 20`,
			want:       true,
		},
		{
			name:       "combined",
			expression: `Hot and Seeders > 50 and contains(Title, "x264")`,
			want:       true,
		},
		{
			name:       "category",
			expression: `Category == "电影"`,
			want:       true,
		},
		{
			name:       "not finished",
			expression: `not Finished`,
			want:       true,
		},
	}

	compiler := NewCompiler()
	torrent := sampleTorrent()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := compiler.Compile(tt.expression)
			if err != nil {
				t.Fatalf("Compile(%q) failed: %v", tt.expression, err)
			}
			got, err := f.Evaluate(torrent)
			if err != nil {
				t.Fatalf("Evaluate failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expression, got, tt.want)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name       string
		expression string
	}{
		{name: "empty", expression: ""},
		{name: "blank", expression: "   "},
		{name: "syntax error", expression: "Seeders >"},
		{name: "non boolean result", expression: `1 + 2`},
	}

	compiler := NewCompiler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compiler.Compile(tt.expression)
			if err == nil {
				t.Fatalf("Compile(%q) succeeded, want error", tt.expression)
			}
			var cerr *CompilationError
			if !errors.As(err, &cerr) {
				t.Errorf("error is %T, want *CompilationError", err)
			}
		})
	}
}

func TestRatioWithoutLeechers(t *testing.T) {
	compiler := NewCompiler()
	f, err := compiler.Compile(`ratio() == 7.0`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	torrent := sampleTorrent()
	torrent.Seeders = 7
	torrent.Leechers = 0

	got, err := f.Evaluate(torrent)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !got {
		t.Error("ratio() with zero leechers should equal the seeder count")
	}
}

func TestMatchSwallowsEvaluationErrors(t *testing.T) {
	compiler := NewCompiler()
	// Compiles (undefined variables are allowed) but fails at runtime.
	f, err := compiler.Compile(`NoSuchHelper()`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if f.Match(sampleTorrent()) {
		t.Error("Match should report false when evaluation fails")
	}

	_, err = f.Evaluate(sampleTorrent())
	var eerr *EvaluationError
	if !errors.As(err, &eerr) {
		t.Errorf("Evaluate error is %T, want *EvaluationError", err)
	}
}

func TestCompilerCache(t *testing.T) {
	compiler := NewCompiler(WithCache(2))

	first, err := compiler.Compile(`Seeders > 0`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	second, err := compiler.Compile(`Seeders > 0`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if first != second {
		t.Error("expected the cached filter instance on recompile")
	}
	if compiler.Size() != 1 {
		t.Errorf("cache size = %d, want 1", compiler.Size())
	}

	// Evict the first expression by filling the cache.
	if _, err := compiler.Compile(`Leechers > 0`); err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if _, err := compiler.Compile(`Snatched > 0`); err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if compiler.Size() != 2 {
		t.Errorf("cache size = %d, want 2", compiler.Size())
	}

	compiler.Clear()
	if compiler.Size() != 0 {
		t.Errorf("cache size after Clear = %d, want 0", compiler.Size())
	}
}
