package pipeline

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/xcassetclean/internal/config"
	"github.com/backmassage/xcassetclean/internal/logging"
	"github.com/backmassage/xcassetclean/internal/manifest"
	"github.com/backmassage/xcassetclean/internal/naming"
)

const appIconManifest = `{
  "images" : [
    {
      "size" : "29x29",
      "idiom" : "iphone",
      "filename" : "icon.png",
      "scale" : "2x"
    }
  ],
  "info" : {
    "version" : 1,
    "author" : "xcode"
  }
}
`

// --- helpers ---

func testConfig(catalog string) config.Config {
	cfg := config.DefaultConfig()
	cfg.CatalogDir = catalog
	cfg.ColorMode = config.ColorNever
	return cfg
}

// tempCatalog returns a symlink-resolved temp dir so paths match what Run
// reports.
func tempCatalog(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func testLogger(t *testing.T, cfg *config.Config) (*logging.Logger, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	l, err := logging.New(cfg, &out, &out)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l, &out
}

// writeGroup creates dir with a manifest and the named image files, each
// holding its own name as content.
func writeGroup(t *testing.T, dir, manifestJSON string, files ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Contents.json"), []byte(manifestJSON), 0o644))
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte(f), 0o644))
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func runCatalog(t *testing.T, cfg config.Config) (RunStats, string, error) {
	t.Helper()
	log, out := testLogger(t, &cfg)
	stats, err := Run(&cfg, log)
	return stats, out.String(), err
}

// --- Run / Renamer ---

func TestRun_RenamesAndPatchesManifest(t *testing.T) {
	root := tempCatalog(t)
	group := filepath.Join(root, "AppIcon.imageset")
	writeGroup(t, group, appIconManifest, "icon.png")

	stats, _, err := runCatalog(t, testConfig(root))
	require.NoError(t, err)

	want := []string{"AppIcon_29x29_@2x~iphone.png", "Contents.json"}
	if diff := cmp.Diff(want, listFiles(t, group)); diff != "" {
		t.Errorf("group files mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "icon.png", readFile(t, filepath.Join(group, "AppIcon_29x29_@2x~iphone.png")))

	wantManifest := strings.Replace(appIconManifest, `"icon.png"`, `"AppIcon_29x29_@2x~iphone.png"`, 1)
	assert.Equal(t, wantManifest, readFile(t, filepath.Join(group, "Contents.json")))

	assert.Equal(t, 1, stats.Groups)
	assert.Equal(t, 1, stats.Renamed)
}

func TestRun_ScaleOnlyAndUnknownAttrs(t *testing.T) {
	root := tempCatalog(t)
	spot := filepath.Join(root, "Spotlight.imageset")
	writeGroup(t, spot, `{"images":[{"filename":"s.png","scale":"3x"}]}`, "s.png")
	notif := filepath.Join(root, "Notify.imageset")
	writeGroup(t, notif, `{"images":[{"size":"20x20","role":"notification","filename":"n.png","scale":"2x"}]}`, "n.png")

	_, _, err := runCatalog(t, testConfig(root))
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(spot, "Spotlight@3x.png"))
	assert.FileExists(t, filepath.Join(notif, "Notify_20x20_role=notification_@2x.png"))
}

func TestRun_DuplicateSourceIsCopied(t *testing.T) {
	root := tempCatalog(t)
	group := filepath.Join(root, "Launch.imageset")
	writeGroup(t, group, `{"images":[
  {"filename":"Default.png","idiom":"iphone","scale":"2x"},
  {"filename":"Default.png","idiom":"iphone","subtype":"retina4","scale":"2x"}
]}`, "Default.png")

	stats, _, err := runCatalog(t, testConfig(root))
	require.NoError(t, err)

	first := filepath.Join(group, "Launch@2x~iphone.png")
	second := filepath.Join(group, "Launchsubtype=retina4_@2x~iphone.png")
	assert.Equal(t, "Default.png", readFile(t, first), "first rename stays intact")
	assert.Equal(t, "Default.png", readFile(t, second), "second reference is a copy")
	assert.NoFileExists(t, filepath.Join(group, "Default.png"))

	text := readFile(t, filepath.Join(group, "Contents.json"))
	assert.Contains(t, text, `"filename":"Launch@2x~iphone.png"`)
	assert.Contains(t, text, `"filename":"Launchsubtype=retina4_@2x~iphone.png"`)
	assert.NotContains(t, text, "Default.png")

	assert.Equal(t, 1, stats.Renamed)
	assert.Equal(t, 1, stats.Copied)
	assert.Equal(t, int64(len("Default.png")), stats.BytesCopied)
}

func TestRun_MissingSourceWarnsAndPatches(t *testing.T) {
	root := tempCatalog(t)
	group := filepath.Join(root, "Gone.imageset")
	writeGroup(t, group, `{"images":[
  {"filename":"gone.png","scale":"1x"},
  {"filename":"here.png","scale":"2x"}
]}`, "here.png")

	stats, out, err := runCatalog(t, testConfig(root))
	require.NoError(t, err, "missing files are not fatal")

	assert.Contains(t, out, "File not found: "+filepath.Join(group, "gone.png"))
	assert.Contains(t, out, "Named in "+filepath.Join(group, "Contents.json"))
	assert.Equal(t, 1, stats.Missing)
	assert.FileExists(t, filepath.Join(group, "Gone@2x.png"), "processing continues after a warning")

	text := readFile(t, filepath.Join(group, "Contents.json"))
	assert.Contains(t, text, `"filename":"Gone@1x.png"`, "manifest is patched even when the file is missing")
}

func TestRun_CopyOfMissingSourceIsFatal(t *testing.T) {
	root := tempCatalog(t)
	group := filepath.Join(root, "Gone.imageset")
	writeGroup(t, group, `{"images":[
  {"filename":"gone.png","scale":"1x"},
  {"filename":"gone.png","scale":"1x","idiom":"ipad"},
  {"filename":"here.png","scale":"2x"}
]}`, "here.png")

	stats, out, err := runCatalog(t, testConfig(root))
	require.Error(t, err)
	require.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "copy asset")

	assert.Equal(t, 1, stats.Missing, "only the rename reports a missing file")
	assert.Equal(t, 0, stats.Copied)
	assert.Equal(t, 1, strings.Count(out, "File not found"))
	assert.FileExists(t, filepath.Join(group, "here.png"), "run stops before later entries")
	assert.NoFileExists(t, filepath.Join(group, "Gone@1x~ipad.png"))
}

func TestRun_IncompleteEntrySkipped(t *testing.T) {
	root := tempCatalog(t)
	group := filepath.Join(root, "Partial.imageset")
	manifestJSON := `{"images":[{"idiom":"universal","filename":"p.png"},{"idiom":"universal","scale":"2x"}]}`
	writeGroup(t, group, manifestJSON, "p.png")

	stats, out, err := runCatalog(t, testConfig(root))
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Incomplete)
	assert.Contains(t, out, "Image data does not include filename and scale")
	assert.Contains(t, out, `{"idiom":"universal","filename":"p.png"}`)
	assert.FileExists(t, filepath.Join(group, "p.png"))
	assert.Equal(t, manifestJSON, readFile(t, filepath.Join(group, "Contents.json")), "manifest untouched")
}

func TestRun_SecondRunIsStable(t *testing.T) {
	root := tempCatalog(t)
	group := filepath.Join(root, "AppIcon.imageset")
	writeGroup(t, group, `{"images":[
  {"size":"29x29","idiom":"iphone","filename":"a.png","scale":"2x"},
  {"size":"29x29","idiom":"iphone","filename":"b.png","scale":"3x"}
]}`, "a.png", "b.png")

	_, _, err := runCatalog(t, testConfig(root))
	require.NoError(t, err)
	filesAfterFirst := listFiles(t, group)
	manifestAfterFirst := readFile(t, filepath.Join(group, "Contents.json"))

	stats, out, err := runCatalog(t, testConfig(root))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Unchanged)
	assert.Equal(t, 0, stats.Renamed)
	assert.NotContains(t, out, "WARN")
	assert.Equal(t, filesAfterFirst, listFiles(t, group))
	assert.Equal(t, manifestAfterFirst, readFile(t, filepath.Join(group, "Contents.json")))
}

func TestRun_LedgerIsScopedToOneRun(t *testing.T) {
	root := tempCatalog(t)
	group := filepath.Join(root, "Logo.imageset")
	manifestJSON := `{"images":[{"filename":"logo.png","scale":"1x"}]}`
	writeGroup(t, group, manifestJSON, "logo.png")

	_, _, err := runCatalog(t, testConfig(root))
	require.NoError(t, err)

	// A fresh source under the old name must be renamed again, not treated
	// as a duplicate of the previous run's file.
	require.NoError(t, os.WriteFile(filepath.Join(group, "Contents.json"), []byte(manifestJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(group, "logo.png"), []byte("v2"), 0o644))

	stats, _, err := runCatalog(t, testConfig(root))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Renamed)
	assert.Equal(t, 0, stats.Copied)
	assert.NoFileExists(t, filepath.Join(group, "logo.png"))
	assert.Equal(t, "v2", readFile(t, filepath.Join(group, "Logo@1x.png")))
}

func TestRun_DryRunChangesNothing(t *testing.T) {
	root := tempCatalog(t)
	group := filepath.Join(root, "AppIcon.imageset")
	writeGroup(t, group, `{"images":[
  {"filename":"icon.png","scale":"2x"},
  {"filename":"icon.png","scale":"3x"},
  {"filename":"lost.png","scale":"1x"}
]}`, "icon.png")
	before := readFile(t, filepath.Join(group, "Contents.json"))

	cfg := testConfig(root)
	cfg.DryRun = true
	stats, out, err := runCatalog(t, cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"Contents.json", "icon.png"}, listFiles(t, group))
	assert.Equal(t, before, readFile(t, filepath.Join(group, "Contents.json")))
	assert.Contains(t, out, "Would rename AppIcon.imageset/icon.png -> AppIcon@2x.png")
	assert.Contains(t, out, "Would copy AppIcon.imageset/AppIcon@2x.png -> AppIcon@3x.png")
	assert.Equal(t, 1, stats.Renamed)
	assert.Equal(t, 1, stats.Copied)
	assert.Equal(t, 1, stats.Missing)
}

func TestRun_FatalRenameError(t *testing.T) {
	root := tempCatalog(t)
	group := filepath.Join(root, "Blocked.imageset")
	writeGroup(t, group, `{"images":[{"filename":"b.png","scale":"1x"},{"filename":"c.png","scale":"2x"}]}`, "b.png", "c.png")
	// A non-empty directory squatting on the target name makes rename fail
	// with something other than "not found".
	blocker := filepath.Join(group, "Blocked@1x.png")
	require.NoError(t, os.MkdirAll(blocker, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(blocker, "x"), nil, 0o644))

	_, _, err := runCatalog(t, testConfig(root))
	require.Error(t, err)
	assert.False(t, errors.Is(err, fs.ErrNotExist))
	assert.FileExists(t, filepath.Join(group, "c.png"), "run aborts before later entries")
}

func TestRun_InvalidManifestIsFatal(t *testing.T) {
	root := tempCatalog(t)
	writeGroup(t, filepath.Join(root, "Broken.imageset"), `{"images":[`)

	_, _, err := runCatalog(t, testConfig(root))
	require.ErrorIs(t, err, manifest.ErrInvalidJSON)
}

func TestRun_InvalidRoot(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	for _, catalog := range []string{"", filepath.Join(dir, "missing"), file} {
		_, _, err := runCatalog(t, testConfig(catalog))
		require.ErrorIs(t, err, ErrInvalidRoot, "catalog %q", catalog)
	}
}

// --- Traverser ---

func TestRun_RecursesUntilManifest(t *testing.T) {
	root := tempCatalog(t)
	deep := filepath.Join(root, "Icons", "Toolbar", "Back.imageset")
	writeGroup(t, deep, `{"images":[{"filename":"back.png","scale":"2x"}]}`, "back.png")

	// A folder without a manifest is only a container: its images are never touched.
	loose := filepath.Join(root, "Icons", "Loose")
	require.NoError(t, os.MkdirAll(loose, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(loose, "stray.png"), nil, 0o644))

	stats, _, err := runCatalog(t, testConfig(root))
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(deep, "Back@2x.png"))
	assert.Equal(t, []string{"stray.png"}, listFiles(t, loose))
	assert.Equal(t, 1, stats.Groups)
}

func TestRun_DoesNotDescendIntoGroups(t *testing.T) {
	root := tempCatalog(t)
	outer := filepath.Join(root, "Outer.imageset")
	writeGroup(t, outer, `{"images":[]}`)
	inner := filepath.Join(outer, "Inner.imageset")
	writeGroup(t, inner, `{"images":[{"filename":"i.png","scale":"1x"}]}`, "i.png")

	stats, _, err := runCatalog(t, testConfig(root))
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(inner, "i.png"))
	assert.Equal(t, 1, stats.Groups)
}

func TestRun_RootManifestIgnored(t *testing.T) {
	root := tempCatalog(t)
	writeGroup(t, root, `{"images":[{"filename":"r.png","scale":"1x"}]}`, "r.png")

	stats, _, err := runCatalog(t, testConfig(root))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "r.png"))
	assert.Equal(t, 0, stats.Groups)
}

func TestRun_SkipPatternsAndHiddenDirs(t *testing.T) {
	root := tempCatalog(t)
	kept := filepath.Join(root, "Current", "A.imageset")
	writeGroup(t, kept, `{"images":[{"filename":"a.png","scale":"1x"}]}`, "a.png")
	legacy := filepath.Join(root, "Legacy", "B.imageset")
	writeGroup(t, legacy, `{"images":[{"filename":"b.png","scale":"1x"}]}`, "b.png")
	nested := filepath.Join(root, "Current", "Old", "C.imageset")
	writeGroup(t, nested, `{"images":[{"filename":"c.png","scale":"1x"}]}`, "c.png")
	hidden := filepath.Join(root, ".git", "D.imageset")
	writeGroup(t, hidden, `{"images":[{"filename":"d.png","scale":"1x"}]}`, "d.png")

	cfg := testConfig(root)
	cfg.Skip = []string{"Legacy", "**/Old"}
	stats, _, err := runCatalog(t, cfg)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(kept, "A@1x.png"))
	assert.FileExists(t, filepath.Join(legacy, "b.png"))
	assert.FileExists(t, filepath.Join(nested, "c.png"))
	assert.FileExists(t, filepath.Join(hidden, "d.png"))
	assert.Equal(t, 2, stats.SkippedDirs)
}

func TestCleanDirectory_SharedLedgerAcrossGroups(t *testing.T) {
	root := tempCatalog(t)
	group := filepath.Join(root, "Shared.imageset")
	writeGroup(t, group, `{"images":[{"filename":"s.png","scale":"1x"}]}`, "s.png")

	cfg := testConfig(root)
	log, _ := testLogger(t, &cfg)
	c := NewCleaner(&cfg, log, root)
	ledger := naming.NewLedger()

	require.NoError(t, c.CleanDirectory(root, ledger))
	got, ok := ledger.Lookup(filepath.Join(group, "s.png"))
	require.True(t, ok)
	assert.Equal(t, filepath.Join(group, "Shared@1x.png"), got)
	assert.Equal(t, 1, c.Stats().Renamed)
}

func TestProcessEntry_CustomFolderSuffixAndManifestName(t *testing.T) {
	root := tempCatalog(t)
	group := filepath.Join(root, "AppIcon.appiconset")
	require.NoError(t, os.MkdirAll(group, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(group, "Manifest.json"), []byte(`{"images":[{"filename":"i.png","scale":"2x"}]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(group, "i.png"), nil, 0o644))

	cfg := testConfig(root)
	cfg.ManifestName = "Manifest.json"
	cfg.FolderSuffix = ".appiconset"
	_, _, err := runCatalog(t, cfg)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(group, "AppIcon@2x.png"))
	assert.Contains(t, readFile(t, filepath.Join(group, "Manifest.json")), "AppIcon@2x.png")
}

func TestSubdirectories_SortedAndSymlinks(t *testing.T) {
	root := tempCatalog(t)
	for _, d := range []string{"b", "a", ".hidden"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "file.txt"), nil, 0o644))
	target := t.TempDir()
	if err := os.Symlink(target, filepath.Join(root, "c-link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	dirs, err := subdirectories(root)
	require.NoError(t, err)
	want := []string{filepath.Join(root, "a"), filepath.Join(root, "b"), filepath.Join(root, "c-link")}
	if diff := cmp.Diff(want, dirs); diff != "" {
		t.Errorf("subdirectories mismatch (-want +got):\n%s", diff)
	}
}

func TestRunStats_Warnings(t *testing.T) {
	s := RunStats{Missing: 2, Incomplete: 3, Unreadable: 1, Renamed: 10}
	if got := s.Warnings(); got != 6 {
		t.Errorf("Warnings: got %d, want 6", got)
	}
}

func TestRun_UnreadableDirectoryIsSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root := tempCatalog(t)
	locked := filepath.Join(root, "Locked")
	writeGroup(t, filepath.Join(locked, "Hidden.imageset"), `{"images":[{"filename":"h.png","scale":"1x"}]}`, "h.png")
	open := filepath.Join(root, "Open.imageset")
	writeGroup(t, open, `{"images":[{"filename":"o.png","scale":"1x"}]}`, "o.png")

	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	stats, out, err := runCatalog(t, testConfig(root))
	require.NoError(t, err, "an unreadable directory is not fatal")

	assert.Equal(t, 1, stats.Unreadable)
	assert.Contains(t, out, "Cannot read directory Locked")
	assert.FileExists(t, filepath.Join(open, "Open@1x.png"), "later siblings are still processed")
}
