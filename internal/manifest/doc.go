// Package manifest reads asset-group manifests (Contents.json) and patches
// them textually.
//
// Reading keeps document order for both the image list and the keys inside
// each image entry, because filename suffixes are built in that order.
// Writing never re-serializes: [ReplaceFirst] swaps a single literal
// substring so the rest of the file keeps its formatting byte for byte.
package manifest
