package manifest

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// ErrInvalidJSON is returned by Load and Parse for manifests that are not
// well-formed JSON.
var ErrInvalidJSON = errors.New("manifest is not valid JSON")

// Attr is one key/value pair of an image entry.
type Attr struct {
	Key   string
	Value string // String values unquoted, other JSON values as raw text, null as "".
	// Present is false for JSON null and false, which the legacy script
	// treated as an absent key.
	Present bool
}

// Entry is one element of the manifest's image list, attributes in
// document order.
type Entry struct {
	Attrs []Attr
	Raw   string // JSON text of the element, for diagnostics.
}

// Get returns the value for key and whether it is present. With duplicate
// keys the last one wins, as with any JSON decoder.
func (e Entry) Get(key string) (string, bool) {
	for i := len(e.Attrs) - 1; i >= 0; i-- {
		if e.Attrs[i].Key == key {
			return e.Attrs[i].Value, e.Attrs[i].Present
		}
	}
	return "", false
}

// Compact returns the entry's JSON on a single line.
func (e Entry) Compact() string {
	return string(pretty.Ugly([]byte(e.Raw)))
}

// Has reports whether key is present.
func (e Entry) Has(key string) bool {
	_, ok := e.Get(key)
	return ok
}

// Manifest is a parsed manifest file.
type Manifest struct {
	Path   string
	Images []Entry
}

// Load reads and parses the manifest at path. imagesKey names the top-level
// array holding the image entries.
func Load(path, imagesKey string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	images, err := Parse(data, imagesKey)
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &Manifest{Path: path, Images: images}, nil
}

// Parse extracts the image entries from manifest JSON. A missing or
// non-array images key yields no entries; non-object elements yield an
// entry with no attributes.
func Parse(data []byte, imagesKey string) ([]Entry, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, nil
	}

	var list gjson.Result
	root.ForEach(func(k, v gjson.Result) bool {
		if k.String() == imagesKey {
			list = v
		}
		return true
	})
	if !list.IsArray() {
		return nil, nil
	}

	var entries []Entry
	list.ForEach(func(_, elem gjson.Result) bool {
		entries = append(entries, parseEntry(elem))
		return true
	})
	return entries, nil
}

func parseEntry(elem gjson.Result) Entry {
	e := Entry{Raw: elem.Raw}
	if !elem.IsObject() {
		return e
	}
	elem.ForEach(func(k, v gjson.Result) bool {
		e.Attrs = append(e.Attrs, Attr{
			Key:     k.String(),
			Value:   valueString(v),
			Present: v.Type != gjson.Null && v.Type != gjson.False,
		})
		return true
	})
	return e
}

func valueString(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Null:
		return ""
	default:
		return v.Raw
	}
}
