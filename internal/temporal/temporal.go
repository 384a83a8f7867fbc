// Package temporal scores code fragments by modification recency and
// tracks file modification times reported by the host.
package temporal

import (
	"math"
	"sort"
	"sync"
	"time"

	"cre/internal/config"
	"cre/internal/fragment"
	"cre/internal/logging"
)

// floorScore is the minimum temporal relevance. Stale files stay
// discoverable instead of dropping to zero.
const floorScore = 0.1

// Score computes recency relevance for a modification time as of now.
// Modifications inside the bonus window score 1.0, anything older than
// the maximum age scores the floor, and ages in between decay
// exponentially.
func Score(lastModified, now time.Time, cfg config.TemporalConfig) float64 {
	age := now.Sub(lastModified)
	if age < 0 {
		age = 0
	}

	if age < cfg.RecentBonus() {
		return 1.0
	}

	maxAge := cfg.MaxAge()
	if age > maxAge {
		return floorScore
	}

	decayed := math.Exp(-cfg.DecayFactor * age.Seconds() / maxAge.Seconds())
	if decayed < floorScore {
		return floorScore
	}
	if decayed > 1.0 {
		return 1.0
	}
	return decayed
}

// FileActivity is a recorded modification event.
type FileActivity struct {
	Path       string    `json:"path"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// Stats summarizes the tracked modification state.
type Stats struct {
	TotalFiles  int       `json:"totalFiles"`
	RecentFiles int       `json:"recentFiles"` // modified within the last hour
	Oldest      time.Time `json:"oldest,omitempty"`
	Newest      time.Time `json:"newest,omitempty"`
}

// Analyzer scores fragments by recency. Modification notifications go
// through a single-writer lock; reads are concurrent.
type Analyzer struct {
	store  TimestampStore
	logger *logging.Logger

	writeMu sync.Mutex

	// now is replaceable in tests
	now func() time.Time
}

// NewAnalyzer creates a temporal analyzer over the given store.
func NewAnalyzer(store TimestampStore, logger *logging.Logger) *Analyzer {
	return &Analyzer{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// EffectiveLastModified returns the fragment's modification time. When
// the store has a newer modification time for the fragment's file than
// the fragment metadata carries, the store wins: live notifications
// arrive after extraction.
func (a *Analyzer) EffectiveLastModified(frag *fragment.CodeFragment) time.Time {
	lastModified := frag.LastModified()
	if ts, ok := a.store.Get(frag.FilePath); ok && ts.After(lastModified) {
		lastModified = ts
	}
	return lastModified
}

// ScoreFragment computes the temporal score for a fragment.
func (a *Analyzer) ScoreFragment(frag *fragment.CodeFragment, cfg *config.SearchConfig) float64 {
	return Score(a.EffectiveLastModified(frag), a.now().UTC(), cfg.Temporal)
}

// LastModified returns the effective modification time for a path, if known.
func (a *Analyzer) LastModified(path string) (time.Time, bool) {
	return a.store.Get(path)
}

// NotifyModified records a modification for path at the current time.
// Hosts call this instead of the engine watching the filesystem.
func (a *Analyzer) NotifyModified(path string) error {
	return a.NotifyModifiedAt(path, a.now().UTC())
}

// NotifyModifiedAt records a modification for path at an explicit time.
func (a *Analyzer) NotifyModifiedAt(path string, ts time.Time) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	if err := a.store.Set(path, ts); err != nil {
		// Persistence trouble degrades to in-memory knowledge only
		a.logger.Warn("Failed to persist modification timestamp", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return err
	}
	return nil
}

// RecentlyModifiedFiles returns files modified within maxAge, most
// recent first.
func (a *Analyzer) RecentlyModifiedFiles(maxAge time.Duration) []FileActivity {
	cutoff := a.now().UTC().Add(-maxAge)

	var out []FileActivity
	for path, ts := range a.store.All() {
		if ts.Before(cutoff) {
			continue
		}
		out = append(out, FileActivity{Path: path, ModifiedAt: ts})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ModifiedAt.Equal(out[j].ModifiedAt) {
			return out[i].Path < out[j].Path
		}
		return out[i].ModifiedAt.After(out[j].ModifiedAt)
	})

	return out
}

// Stats returns summary statistics over the tracked files.
func (a *Analyzer) Stats() Stats {
	all := a.store.All()
	stats := Stats{TotalFiles: len(all)}

	recentCutoff := a.now().UTC().Add(-time.Hour)
	for _, ts := range all {
		if !ts.Before(recentCutoff) {
			stats.RecentFiles++
		}
		if stats.Oldest.IsZero() || ts.Before(stats.Oldest) {
			stats.Oldest = ts
		}
		if ts.After(stats.Newest) {
			stats.Newest = ts
		}
	}

	return stats
}
