// Package pipeline walks an asset catalog and normalizes the image
// filenames of every asset group it finds.
//
// Traversal is top-down and sequential: a directory holding a manifest is
// an asset group and is not descended into; any other directory is
// recursed. Within a group, entries are processed in manifest order. One
// [naming.Ledger] spans the whole catalog run so a source file referenced
// twice is renamed once and copied for the second reference.
//
// Files: runner.go (Run, root resolution, summary), discover.go (directory
// traversal), rename.go (per-entry rename/copy/patch), stats.go.
package pipeline
