package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/backmassage/xcassetclean/internal/config"
	"github.com/backmassage/xcassetclean/internal/display"
	"github.com/backmassage/xcassetclean/internal/logging"
	"github.com/backmassage/xcassetclean/internal/naming"
)

// ErrInvalidRoot is returned by Run when the catalog path is empty, missing,
// or not a directory. Callers report it and exit normally.
var ErrInvalidRoot = errors.New("catalog folder does not exist")

// Cleaner carries the run-wide settings shared by traversal and renaming.
// The ledger is passed explicitly to each call rather than stored here.
type Cleaner struct {
	cfg   *config.Config
	log   *logging.Logger
	root  string
	stats RunStats
}

// NewCleaner returns a Cleaner for the catalog rooted at root. Skip
// patterns are matched against paths relative to root.
func NewCleaner(cfg *config.Config, log *logging.Logger, root string) *Cleaner {
	return &Cleaner{cfg: cfg, log: log, root: root}
}

// Stats returns the counters accumulated so far.
func (c *Cleaner) Stats() RunStats { return c.stats }

// Run is the top-level entry point. It resolves the catalog root, recurses
// into each immediate subdirectory with one ledger shared by the whole run
// and discarded with it, and returns the run's counters. The root itself is never treated as an asset group. The
// first fatal filesystem or manifest error aborts the run.
func Run(cfg *config.Config, log *logging.Logger) (RunStats, error) {
	root, err := ResolveRoot(cfg.CatalogDir)
	if err != nil {
		return RunStats{}, err
	}

	c := NewCleaner(cfg, log, root)
	ledger := naming.NewLedger()

	logBatchHeader(cfg, log, root)

	for _, sub := range c.readableSubdirs(root) {
		if c.skipped(sub) {
			continue
		}
		if err := c.CleanDirectory(sub, ledger); err != nil {
			return c.stats, err
		}
	}

	logSummary(cfg, log, &c.stats)
	return c.stats, nil
}

// ResolveRoot returns the absolute, symlink-resolved catalog path, or
// ErrInvalidRoot when dir is empty, missing, or not a directory.
func ResolveRoot(dir string) (string, error) {
	if dir == "" {
		return "", ErrInvalidRoot
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidRoot, dir)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidRoot, dir)
	}
	fi, err := os.Stat(resolved)
	if err != nil || !fi.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrInvalidRoot, dir)
	}
	return resolved, nil
}

func logBatchHeader(cfg *config.Config, log *logging.Logger, root string) {
	log.Debug(cfg.Verbose, "Catalog: %s", root)
	log.Debug(cfg.Verbose, "Manifest: %s, folder suffix: %q", cfg.ManifestName, cfg.FolderSuffix)
	for _, p := range cfg.Skip {
		log.Debug(cfg.Verbose, "Skip: %s", p)
	}
	if cfg.DryRun {
		log.Warn("DRY RUN - no files will be renamed or patched")
	}
}

// logSummary reports the counters in verbose mode only; a normal run prints
// nothing beyond per-entry warnings.
func logSummary(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	if !cfg.Verbose {
		return
	}
	log.Debug(true, "==============================")
	log.Debug(true, "Asset groups: %d, entries: %d", stats.Groups, stats.Entries)
	log.Debug(true, "Renamed: %d, unchanged: %d", stats.Renamed, stats.Unchanged)
	log.Debug(true, "Copied: %d (%s)", stats.Copied, display.FormatBytes(stats.BytesCopied))
	log.Debug(true, "Missing files: %d, incomplete entries: %d", stats.Missing, stats.Incomplete)
	if stats.Unreadable > 0 {
		log.Debug(true, "Unreadable directories: %d", stats.Unreadable)
	}
	if stats.SkippedDirs > 0 {
		log.Debug(true, "Skipped directories: %d", stats.SkippedDirs)
	}
	if stats.Warnings() == 0 {
		log.Success("Catalog normalized")
	}
}
