package manifest

import (
	"fmt"
	"os"
	"strings"
)

// ReplaceFirst replaces the first literal occurrence of old with new in the
// file at path and writes it back. The match is plain substring matching
// over the whole text, so an earlier coincidental occurrence of old (inside
// another key or value) is the one that changes. A trailing newline is
// added when the text does not already end with one.
func ReplaceFirst(path, old, new string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read manifest %s: %w", path, err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat manifest %s: %w", path, err)
	}

	text := strings.Replace(string(data), old, new, 1)
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if err := os.WriteFile(path, []byte(text), fi.Mode().Perm()); err != nil {
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	return nil
}
