// Package registry deduplicates reconstructed .proto sources by content
// and resolves filename collisions between distinct descriptors that
// happen to share a name, using a blake3 content fingerprint.
package registry

import (
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/zeebo/blake3"
)

// ConflictStrategy selects how the registry resolves a filename collision
// between descriptors whose reconstructed content differs.
type ConflictStrategy int

const (
	HashSuffix ConflictStrategy = iota
	SourceSuffix
	SkipConflicts
)

// ParseConflictStrategy parses the CLI's --conflict-strategy flag value.
func ParseConflictStrategy(s string) (ConflictStrategy, error) {
	switch s {
	case "hash-suffix":
		return HashSuffix, nil
	case "source-suffix":
		return SourceSuffix, nil
	case "skip-conflicts":
		return SkipConflicts, nil
	default:
		return 0, fmt.Errorf("registry: unknown conflict strategy %q", s)
	}
}

// Stats tallies a batch run's outcomes for the end-of-run summary.
type Stats struct {
	TotalFound        int
	DuplicatesSkipped int
	ConflictsRenamed  int
	Written           int
}

type variant struct {
	hash       string
	outputPath string
}

// Registry tracks every (filename, content-hash) pair seen during a run so
// identical reconstructions are deduplicated and colliding-but-different
// ones are renamed per the configured strategy. Safe for concurrent use by
// the CLI's directory-walk worker pool.
type Registry struct {
	mu    sync.Mutex
	seen  map[string][]variant
	stats Stats
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{seen: make(map[string][]variant)}
}

// ContentHash returns the first 8 hex characters of the blake3 hash of
// content, used both for deduplication and for hash-suffix naming.
func ContentHash(content string) string {
	sum := blake3.Sum256([]byte(content))
	return fmt.Sprintf("%x", sum[:4])
}

func (r *Registry) isDuplicate(filename, hash string) bool {
	for _, v := range r.seen[filename] {
		if v.hash == hash {
			return true
		}
	}
	return false
}

// Register records a reconstructed proto under filename and returns the
// output path to write it to, and whether it should be written at all (an
// exact duplicate, or a conflict dropped by SkipConflicts, yields ok=false).
// sourceBinary names the binary the descriptor was recovered from, used by
// SourceSuffix.
func (r *Registry) Register(filename, contentHash, outputDir, sourceBinary string, strategy ConflictStrategy) (outputPath string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats.TotalFound++

	if r.isDuplicate(filename, contentHash) {
		r.stats.DuplicatesSkipped++
		return "", false
	}

	if len(r.seen[filename]) == 0 {
		outputPath = path.Join(outputDir, filename)
	} else {
		switch strategy {
		case SkipConflicts:
			r.stats.DuplicatesSkipped++
			return "", false
		case SourceSuffix:
			stem := "unknown"
			if sourceBinary != "" {
				base := path.Base(sourceBinary)
				stem = strings.TrimSuffix(base, path.Ext(base))
			}
			outputPath = path.Join(outputDir, addSuffix(filename, "~from-"+stem))
			r.stats.ConflictsRenamed++
		default: // HashSuffix
			outputPath = path.Join(outputDir, addSuffix(filename, "~"+contentHash))
			r.stats.ConflictsRenamed++
		}
	}

	r.seen[filename] = append(r.seen[filename], variant{hash: contentHash, outputPath: outputPath})
	return outputPath, true
}

// RecordWritten increments the written counter, called after a file is
// actually persisted to disk.
func (r *Registry) RecordWritten() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.Written++
}

// Stats returns a snapshot of the registry's running counters.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func addSuffix(filename, suffix string) string {
	if stem, ok := strings.CutSuffix(filename, ".proto"); ok {
		return stem + suffix + ".proto"
	}
	return filename + suffix
}
