package naming

import (
	"path/filepath"
	"strings"

	"github.com/backmassage/xcassetclean/internal/manifest"
)

// Manifest keys with a dedicated suffix segment.
const (
	KeyFilename    = "filename"
	KeyScale       = "scale"
	KeySize        = "size"
	KeyIdiom       = "idiom"
	KeyOrientation = "orientation"
)

// knownKeys are excluded from the unknown-attribute segment.
var knownKeys = map[string]bool{
	KeyFilename:    true,
	KeyScale:       true,
	KeySize:        true,
	KeyIdiom:       true,
	KeyOrientation: true,
}

// IsKnownKey reports whether key has its own suffix segment.
func IsKnownKey(key string) bool { return knownKeys[key] }

// BaseName returns the last path segment of dir with folderSuffix removed
// when present (e.g. "AppIcon.imageset" -> "AppIcon").
func BaseName(dir, folderSuffix string) string {
	name := filepath.Base(dir)
	if folderSuffix != "" && strings.HasSuffix(name, folderSuffix) {
		name = strings.TrimSuffix(name, folderSuffix)
	}
	return name
}

// UnknownAttrs returns "key=value" for every attribute outside the known
// key set, in document order. Absent (null/false) values are included;
// null renders as an empty value.
func UnknownAttrs(e manifest.Entry) []string {
	var out []string
	for _, a := range e.Attrs {
		if IsKnownKey(a.Key) {
			continue
		}
		out = append(out, a.Key+"="+a.Value)
	}
	return out
}

// Suffix builds the metadata suffix for e:
//
//	_<size>_ <k=v>_..._ @<scale> ~<idiom> -<orientation>
//
// Each segment appears only when its attribute is present.
func Suffix(e manifest.Entry) string {
	var b strings.Builder

	if size, ok := e.Get(KeySize); ok {
		b.WriteString("_" + size + "_")
	}
	if unknown := UnknownAttrs(e); len(unknown) > 0 {
		b.WriteString(strings.Join(unknown, "_") + "_")
	}
	if scale, ok := e.Get(KeyScale); ok {
		b.WriteString("@" + scale)
	}
	if idiom, ok := e.Get(KeyIdiom); ok {
		b.WriteString("~" + idiom)
	}
	if orientation, ok := e.Get(KeyOrientation); ok {
		b.WriteString("-" + orientation)
	}
	return b.String()
}

// Ext returns everything after the last "." in filename, or the whole name
// when it has no dot.
func Ext(filename string) string {
	return filename[strings.LastIndex(filename, ".")+1:]
}

// TargetName returns the canonical filename for e inside dir.
func TargetName(e manifest.Entry, dir, folderSuffix string) string {
	oldName, _ := e.Get(KeyFilename)
	return BaseName(dir, folderSuffix) + Suffix(e) + "." + Ext(oldName)
}
