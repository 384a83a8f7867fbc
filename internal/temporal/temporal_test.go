package temporal

import (
	"io"
	"testing"
	"time"

	"cre/internal/config"
	"cre/internal/fragment"
	"cre/internal/logging"
)

func newTestLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{
		Level:  logging.ErrorLevel,
		Format: logging.JSONFormat,
		Output: io.Discard,
	})
}

// testAnalyzer returns an analyzer with a fixed clock and in-memory store.
func testAnalyzer(t *testing.T, now time.Time) *Analyzer {
	t.Helper()
	a := NewAnalyzer(NewMemoryStore(), newTestLogger())
	a.now = func() time.Time { return now }
	return a
}

func temporalCfg() config.TemporalConfig {
	return config.DefaultConfig().Temporal
}

func TestScore_WithinBonusWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cfg := temporalCfg()

	// 30 minutes old, bonus window is 1 hour
	got := Score(now.Add(-30*time.Minute), now, cfg)
	if got != 1.0 {
		t.Errorf("Score within bonus window = %f, want 1.0", got)
	}
}

func TestScore_BeyondMaxAge(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cfg := temporalCfg()

	// 90 days old, max age is 30 days
	got := Score(now.Add(-90*24*time.Hour), now, cfg)
	if got != 0.1 {
		t.Errorf("Score beyond max age = %f, want 0.1", got)
	}
}

func TestScore_DecaysMonotonically(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cfg := temporalCfg()

	day := Score(now.Add(-24*time.Hour), now, cfg)
	week := Score(now.Add(-7*24*time.Hour), now, cfg)
	month := Score(now.Add(-29*24*time.Hour), now, cfg)

	if !(day > week && week > month) {
		t.Errorf("Scores should decay with age: day=%f week=%f month=%f", day, week, month)
	}
	for _, s := range []float64{day, week, month} {
		if s < 0.1 || s > 1.0 {
			t.Errorf("Score %f out of [0.1, 1.0]", s)
		}
	}
}

func TestScore_MissingTimestampHitsFloor(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cfg := temporalCfg()

	// Epoch zero is what a missing timestamp maps to
	got := Score(time.UnixMilli(0).UTC(), now, cfg)
	if got != 0.1 {
		t.Errorf("Score for epoch timestamp = %f, want floor 0.1", got)
	}
}

func TestScore_FutureTimestamp(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cfg := temporalCfg()

	// Clock skew: treat future modifications as just-modified
	got := Score(now.Add(10*time.Minute), now, cfg)
	if got != 1.0 {
		t.Errorf("Score for future timestamp = %f, want 1.0", got)
	}
}

func TestScoreFragment_StoreOverridesStaleMetadata(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	a := testAnalyzer(t, now)
	cfg := config.DefaultConfig()

	frag := &fragment.CodeFragment{
		FilePath: "src/auth/login.go",
		Metadata: fragment.Metadata{
			LastModifiedAt: now.Add(-60 * 24 * time.Hour).UnixMilli(),
		},
	}

	// Metadata alone is long past max age
	if got := a.ScoreFragment(frag, cfg); got != 0.1 {
		t.Fatalf("Stale fragment score = %f, want 0.1", got)
	}

	// Host reports the file was just touched
	if err := a.NotifyModifiedAt("src/auth/login.go", now.Add(-5*time.Minute)); err != nil {
		t.Fatalf("NotifyModifiedAt failed: %v", err)
	}

	if got := a.ScoreFragment(frag, cfg); got != 1.0 {
		t.Errorf("Score after notification = %f, want 1.0", got)
	}
}

func TestScoreFragment_MetadataWinsWhenNewer(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	a := testAnalyzer(t, now)
	cfg := config.DefaultConfig()

	if err := a.NotifyModifiedAt("main.go", now.Add(-20*24*time.Hour)); err != nil {
		t.Fatalf("NotifyModifiedAt failed: %v", err)
	}

	frag := &fragment.CodeFragment{
		FilePath: "main.go",
		Metadata: fragment.Metadata{LastModifiedAt: now.Add(-10 * time.Minute).UnixMilli()},
	}

	if got := a.ScoreFragment(frag, cfg); got != 1.0 {
		t.Errorf("Score = %f, want 1.0 from the newer metadata timestamp", got)
	}
}

func TestRecentlyModifiedFiles(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	a := testAnalyzer(t, now)

	mods := map[string]time.Duration{
		"fresh.go":   -10 * time.Minute,
		"older.go":   -3 * time.Hour,
		"ancient.go": -72 * time.Hour,
	}
	for path, ago := range mods {
		if err := a.NotifyModifiedAt(path, now.Add(ago)); err != nil {
			t.Fatalf("NotifyModifiedAt failed: %v", err)
		}
	}

	recent := a.RecentlyModifiedFiles(24 * time.Hour)
	if len(recent) != 2 {
		t.Fatalf("Got %d recent files, want 2", len(recent))
	}
	if recent[0].Path != "fresh.go" {
		t.Errorf("First entry = %q, want 'fresh.go' (most recent first)", recent[0].Path)
	}
	if recent[1].Path != "older.go" {
		t.Errorf("Second entry = %q, want 'older.go'", recent[1].Path)
	}
}

func TestStats(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	a := testAnalyzer(t, now)

	if err := a.NotifyModifiedAt("new.go", now.Add(-5*time.Minute)); err != nil {
		t.Fatalf("NotifyModifiedAt failed: %v", err)
	}
	if err := a.NotifyModifiedAt("old.go", now.Add(-48*time.Hour)); err != nil {
		t.Fatalf("NotifyModifiedAt failed: %v", err)
	}

	stats := a.Stats()
	if stats.TotalFiles != 2 {
		t.Errorf("TotalFiles = %d, want 2", stats.TotalFiles)
	}
	if stats.RecentFiles != 1 {
		t.Errorf("RecentFiles = %d, want 1", stats.RecentFiles)
	}
	if !stats.Newest.Equal(now.Add(-5 * time.Minute)) {
		t.Errorf("Newest = %v, want %v", stats.Newest, now.Add(-5*time.Minute))
	}
	if !stats.Oldest.Equal(now.Add(-48 * time.Hour)) {
		t.Errorf("Oldest = %v, want %v", stats.Oldest, now.Add(-48*time.Hour))
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	a := NewAnalyzer(NewMemoryStore(), newTestLogger())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = a.NotifyModified("contended.go")
		}
	}()

	for i := 0; i < 100; i++ {
		a.RecentlyModifiedFiles(time.Hour)
		a.Stats()
	}
	<-done
}
