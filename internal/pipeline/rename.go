package pipeline

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/backmassage/xcassetclean/internal/manifest"
	"github.com/backmassage/xcassetclean/internal/naming"
)

// ProcessEntry renames (or copies) the file behind one image entry of the
// asset group in dir and patches the group's manifest to the new name.
//
// Entries without a filename or scale are reported and skipped. A missing
// rename source is reported and the manifest is still patched. Any other
// filesystem error, including a failed copy, is returned and should abort
// the run.
func (c *Cleaner) ProcessEntry(e manifest.Entry, dir string, ledger *naming.Ledger) error {
	c.stats.Entries++
	manifestPath := filepath.Join(dir, c.cfg.ManifestName)

	oldName, hasName := e.Get(naming.KeyFilename)
	if !hasName || oldName == "" || !e.Has(naming.KeyScale) {
		c.stats.Incomplete++
		c.log.Warn("Image data does not include filename and scale: %s", manifestPath)
		c.log.Warn("  %s", e.Compact())
		return nil
	}

	newName := naming.TargetName(e, dir, c.cfg.FolderSuffix)
	oldPath := filepath.Join(dir, oldName)
	newPath := filepath.Join(dir, newName)

	if prev, ok := ledger.Lookup(oldPath); ok {
		if err := c.copyAsset(prev, newPath); err != nil {
			return err
		}
	} else {
		if err := c.moveAsset(oldPath, newPath, manifestPath); err != nil {
			return err
		}
		ledger.Record(oldPath, newPath)
	}

	if c.cfg.DryRun {
		return nil
	}
	return manifest.ReplaceFirst(manifestPath, oldName, newName)
}

// moveAsset renames oldPath to newPath. A missing source is a warning.
func (c *Cleaner) moveAsset(oldPath, newPath, manifestPath string) error {
	if c.cfg.DryRun {
		if _, err := os.Stat(oldPath); errors.Is(err, fs.ErrNotExist) {
			c.reportMissing(oldPath, manifestPath)
			return nil
		}
		if oldPath == newPath {
			c.stats.Unchanged++
			return nil
		}
		c.stats.Renamed++
		c.log.Info("Would rename %s -> %s", c.rel(oldPath), filepath.Base(newPath))
		return nil
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.reportMissing(oldPath, manifestPath)
			return nil
		}
		return fmt.Errorf("rename asset: %w", err)
	}

	if oldPath == newPath {
		c.stats.Unchanged++
		c.log.Debug(c.cfg.Verbose, "  %s already canonical", filepath.Base(oldPath))
		return nil
	}
	c.stats.Renamed++
	c.log.Debug(c.cfg.Verbose, "  %s -> %s", filepath.Base(oldPath), filepath.Base(newPath))
	return nil
}

// copyAsset satisfies a repeated source reference by copying the file the
// first reference was renamed to. Every copy failure is fatal.
func (c *Cleaner) copyAsset(src, dst string) error {
	if src == dst {
		c.stats.Unchanged++
		c.log.Debug(c.cfg.Verbose, "  %s already produced by an earlier entry", filepath.Base(dst))
		return nil
	}
	c.log.Debug(c.cfg.Verbose, "  %s => %s (copy)", filepath.Base(src), filepath.Base(dst))

	if c.cfg.DryRun {
		c.stats.Copied++
		c.log.Info("Would copy %s -> %s", c.rel(src), filepath.Base(dst))
		return nil
	}

	n, err := copyFile(src, dst)
	if err != nil {
		return fmt.Errorf("copy asset: %w", err)
	}
	c.stats.Copied++
	c.stats.BytesCopied += n
	return nil
}

func (c *Cleaner) reportMissing(path, manifestPath string) {
	c.stats.Missing++
	c.log.Warn("File not found: %s", path)
	c.log.Warn("Named in %s", manifestPath)
}

// copyFile copies src to dst, truncating dst, and keeps src's permissions.
func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return 0, err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fi.Mode().Perm())
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}
