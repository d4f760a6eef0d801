// Package naming derives canonical image filenames from asset-group
// metadata and tracks the renames made during one run.
//
// A canonical name is the asset group's base name followed by a suffix that
// encodes the entry's metadata, for example:
//
//	AppIcon_29x29_minimum-system-version=7.0_@2x~iphone-portrait.png
//
// Segment order is fixed: size, unknown attributes, scale, idiom,
// orientation. See [Suffix].
package naming
