package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/backmassage/xcassetclean/internal/manifest"
	"github.com/backmassage/xcassetclean/internal/naming"
)

// CleanDirectory processes dir as an asset group when it directly contains
// the manifest file; otherwise it recurses into each immediate
// subdirectory. ledger is shared by every group of the run.
func (c *Cleaner) CleanDirectory(dir string, ledger *naming.Ledger) error {
	manifestPath := filepath.Join(dir, c.cfg.ManifestName)
	_, err := os.Stat(manifestPath)
	switch {
	case err == nil:
		return c.cleanGroup(dir, manifestPath, ledger)
	case errors.Is(err, fs.ErrPermission):
		c.reportUnreadable(dir, err)
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("stat manifest: %w", err)
	}

	for _, sub := range c.readableSubdirs(dir) {
		if c.skipped(sub) {
			continue
		}
		if err := c.CleanDirectory(sub, ledger); err != nil {
			return err
		}
	}
	return nil
}

// cleanGroup loads the manifest and processes its entries in document order.
func (c *Cleaner) cleanGroup(dir, manifestPath string, ledger *naming.Ledger) error {
	m, err := manifest.Load(manifestPath, c.cfg.ImagesKey)
	if err != nil {
		return err
	}
	c.stats.Groups++
	c.log.Debug(c.cfg.Verbose, "[%s] %d image entries", c.rel(dir), len(m.Images))

	for _, e := range m.Images {
		if err := c.ProcessEntry(e, dir, ledger); err != nil {
			return err
		}
	}
	return nil
}

// skipped reports whether dir matches a skip pattern, counting it if so.
func (c *Cleaner) skipped(dir string) bool {
	rel := c.rel(dir)
	for _, pattern := range c.cfg.Skip {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			c.stats.SkippedDirs++
			c.log.Debug(c.cfg.Verbose, "Skipping %s (matches %s)", rel, pattern)
			return true
		}
	}
	return false
}

// readableSubdirs lists dir's subdirectories. A directory that cannot be
// read is reported and treated as empty.
func (c *Cleaner) readableSubdirs(dir string) []string {
	subdirs, err := subdirectories(dir)
	if err != nil {
		c.reportUnreadable(dir, err)
		return nil
	}
	return subdirs
}

func (c *Cleaner) reportUnreadable(dir string, err error) {
	c.stats.Unreadable++
	c.log.Warn("Cannot read directory %s: %v", c.rel(dir), err)
}

// rel returns dir relative to the catalog root in slash form.
func (c *Cleaner) rel(dir string) string {
	r, err := filepath.Rel(c.root, dir)
	if err != nil {
		return filepath.ToSlash(dir)
	}
	return filepath.ToSlash(r)
}

// subdirectories lists the immediate, non-hidden subdirectories of dir in
// lexical order. Symlinks that resolve to directories are included.
func subdirectories(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var dirs []string
	for _, d := range entries {
		if strings.HasPrefix(d.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, d.Name())
		if d.IsDir() {
			dirs = append(dirs, path)
			continue
		}
		if d.Type()&fs.ModeSymlink != 0 {
			if fi, err := os.Stat(path); err == nil && fi.IsDir() {
				dirs = append(dirs, path)
			}
		}
	}
	return dirs, nil
}
