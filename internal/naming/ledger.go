package naming

// Ledger records original path -> new path for every source file consumed
// during one catalog run. Each run creates its own; none outlives it. A second entry naming an already-consumed source
// is satisfied by copying the recorded new path. Not safe for concurrent
// use; a run is sequential.
type Ledger struct {
	renamed map[string]string
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{renamed: make(map[string]string)}
}

// Lookup returns the new path recorded for original, if any.
func (l *Ledger) Lookup(original string) (string, bool) {
	p, ok := l.renamed[original]
	return p, ok
}

// Record maps original to renamed, replacing any previous mapping.
func (l *Ledger) Record(original, renamed string) {
	l.renamed[original] = renamed
}
