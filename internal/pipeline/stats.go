package pipeline

// RunStats tracks aggregate counters across a catalog run.
type RunStats struct {
	Groups      int // asset groups (directories with a manifest)
	Entries     int // image entries seen
	Renamed     int
	Unchanged   int // entries already carrying their canonical name
	Copied      int // duplicate source references satisfied by copy
	Missing     int // source files not found on disk
	Incomplete  int // entries without filename or scale
	SkippedDirs int // directories pruned by skip patterns
	Unreadable  int // directories that could not be listed
	BytesCopied int64
}

// Warnings returns the number of non-fatal problems reported.
func (s *RunStats) Warnings() int {
	return s.Missing + s.Incomplete + s.Unreadable
}
