// Package spatial scores code fragments by filesystem proximity to the
// file the user is working in.
package spatial

import (
	"math"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"cre/internal/config"
	"cre/internal/logging"
	"cre/internal/project"
)

const (
	// neutralScore applies when there is no active file to compare against
	neutralScore = 0.5
	// floorScore keeps distant files discoverable
	floorScore = 0.1
)

// PathProximity describes the relationship between two file paths.
type PathProximity struct {
	// Distance is the directory hops up from one path to the shared
	// prefix plus the hops down to the other
	Distance int `json:"distance"`

	// SharedPathDepth counts the leading directory segments in common
	SharedPathDepth int `json:"sharedPathDepth"`

	// IsSameDirectory reports whether both files sit in one directory
	IsSameDirectory bool `json:"isSameDirectory"`

	// IsSameProject reports whether both paths live under the
	// workspace root
	IsSameProject bool `json:"isSameProject"`
}

// Resolver computes spatial proximity scores. It holds an optional
// workspace (for same-project checks and proximity walks) and a
// directory listing cache.
type Resolver struct {
	workspace *project.Info
	logger    *logging.Logger
	cache     *dirCache
}

// NewResolver creates a spatial resolver. The workspace may be nil, in
// which case same-project detection falls back to relative-path checks
// and proximity walks are unavailable.
func NewResolver(workspace *project.Info, logger *logging.Logger) *Resolver {
	return &Resolver{
		workspace: workspace,
		logger:    logger,
		cache:     newDirCache(),
	}
}

// normalizePath cleans a path and converts separators to forward
// slashes. Paths under the workspace root become root-relative.
func (r *Resolver) normalizePath(p string) string {
	p = filepath.ToSlash(filepath.Clean(p))
	if r.workspace != nil && filepath.IsAbs(p) {
		if rel, err := filepath.Rel(r.workspace.Root, p); err == nil {
			rel = filepath.ToSlash(rel)
			if rel != ".." && !strings.HasPrefix(rel, "../") {
				return rel
			}
		}
	}
	return p
}

// inProject reports whether a normalized path belongs to the workspace.
func (r *Resolver) inProject(p string) bool {
	if r.workspace != nil {
		return r.workspace.Contains(p)
	}
	// Without a workspace root, treat non-escaping relative paths as
	// belonging to the ambient project
	return !filepath.IsAbs(p) && p != ".." && !strings.HasPrefix(p, "../")
}

// Proximity computes the path relationship between two files.
func (r *Resolver) Proximity(a, b string) PathProximity {
	na := r.normalizePath(a)
	nb := r.normalizePath(b)

	dirA := splitDirs(na)
	dirB := splitDirs(nb)

	shared := 0
	for shared < len(dirA) && shared < len(dirB) && dirA[shared] == dirB[shared] {
		shared++
	}

	up := len(dirA) - shared
	down := len(dirB) - shared

	return PathProximity{
		Distance:        up + down,
		SharedPathDepth: shared,
		IsSameDirectory: path.Dir(na) == path.Dir(nb),
		IsSameProject:   r.inProject(na) && r.inProject(nb),
	}
}

// Score computes the spatial relevance of fragmentPath relative to the
// active file. An empty active file yields the neutral score.
func (r *Resolver) Score(fragmentPath, activeFilePath string, cfg *config.SearchConfig) float64 {
	if activeFilePath == "" {
		return neutralScore
	}

	nf := r.normalizePath(fragmentPath)
	na := r.normalizePath(activeFilePath)

	if nf == na {
		return 1.0
	}

	prox := r.Proximity(fragmentPath, activeFilePath)

	if prox.IsSameDirectory {
		// A large configured bonus must not push the component past 1.0
		score := 0.8 + cfg.Spatial.SameDirectoryBonus*0.2
		if score > 1.0 {
			return 1.0
		}
		return score
	}

	maxDistance := cfg.Spatial.MaxDistance
	d := prox.Distance
	if d > maxDistance {
		d = maxDistance
	}
	normalized := float64(d) / float64(maxDistance)

	score := math.Exp(-2 * normalized)
	score += float64(prox.SharedPathDepth) * 0.1
	if prox.IsSameProject {
		score += 0.2
	}

	if score < floorScore {
		return floorScore
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}

// FileProximity is a file ranked by spatial closeness to the active file.
type FileProximity struct {
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

// RelevantFilesByProximity walks the workspace and returns up to
// maxResults files closest to the active file, best first. Files at or
// below the floor score are omitted.
func (r *Resolver) RelevantFilesByProximity(activeFilePath string, cfg *config.SearchConfig, maxResults int) ([]FileProximity, error) {
	if r.workspace == nil {
		return nil, nil
	}

	files, err := r.walkFiles(r.workspace.Root, "")
	if err != nil {
		return nil, err
	}

	active := r.normalizePath(activeFilePath)

	var out []FileProximity
	for _, f := range files {
		if f == active {
			continue
		}
		score := r.Score(f, activeFilePath, cfg)
		if score <= floorScore {
			continue
		}
		out = append(out, FileProximity{Path: f, Score: score})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].Path < out[j].Path
		}
		return out[i].Score > out[j].Score
	})

	if maxResults > 0 && len(out) > maxResults {
		out = out[:maxResults]
	}
	return out, nil
}

// walkFiles lists workspace files recursively through the directory
// cache. rel is the root-relative directory being visited.
func (r *Resolver) walkFiles(absDir, rel string) ([]string, error) {
	entries, err := r.cache.list(absDir)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, e := range entries {
		childRel := e.name
		if rel != "" {
			childRel = rel + "/" + e.name
		}
		if e.dir {
			if r.workspace.Ignored(e.name) {
				continue
			}
			children, err := r.walkFiles(filepath.Join(absDir, e.name), childRel)
			if err != nil {
				// Unreadable subdirectory: skip rather than fail the walk
				r.logger.Debug("Skipping unreadable directory", map[string]interface{}{
					"dir":   childRel,
					"error": err.Error(),
				})
				continue
			}
			out = append(out, children...)
			continue
		}
		out = append(out, childRel)
	}
	return out, nil
}

// ClearCache drops all cached directory listings.
func (r *Resolver) ClearCache() {
	r.cache.clear()
}

// CacheStats reports directory cache usage.
func (r *Resolver) CacheStats() CacheStats {
	return r.cache.stats()
}

// splitDirs returns the directory segments of a normalized path,
// excluding the filename.
func splitDirs(p string) []string {
	dir := path.Dir(p)
	if dir == "." || dir == "/" {
		return nil
	}
	dir = strings.TrimPrefix(dir, "/")
	if dir == "" {
		return nil
	}
	return strings.Split(dir, "/")
}
