package effects

import (
	"os"
	"path/filepath"
	"time"

	"github.com/wallkit/wallkit/internal/logger"
)

// StaleTTL is how long a derivative may sit in the temp directory before
// the routine sweep removes it.
const StaleTTL = 2 * time.Minute

// CleanupStale removes derivative files older than ttl from tempDir. Run on
// every apply. Best effort: individual deletion failures are counted, never
// escalated. Returns the number of files removed.
func CleanupStale(tempDir string, ttl time.Duration) int {
	removed, failed := 0, 0
	now := time.Now()

	matches, _ := filepath.Glob(filepath.Join(tempDir, "effect_*"))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) <= ttl {
			continue
		}
		if err := os.Remove(path); err != nil {
			failed++
			continue
		}
		removed++
	}

	if removed > 0 || failed > 0 {
		logger.WithComponent("effects").Debug().
			Int("removed", removed).
			Int("failed", failed).
			Msg("Routine derivative cleanup")
	}
	return removed
}

// CleanupAll removes every derivative and preview file from tempDir
// immediately. Run when the requested effect changes, because leftovers
// from a different effect can bleed into the new transition. Best effort.
func CleanupAll(tempDir string) int {
	removed, failed := 0, 0
	for _, pattern := range []string{"effect_*", "preview_*"} {
		matches, _ := filepath.Glob(filepath.Join(tempDir, pattern))
		for _, path := range matches {
			if err := os.Remove(path); err != nil {
				failed++
				continue
			}
			removed++
		}
	}

	if removed > 0 || failed > 0 {
		logger.WithComponent("effects").Debug().
			Int("removed", removed).
			Int("failed", failed).
			Msg("Aggressive derivative cleanup")
	}
	return removed
}
