// ABOUTME: Deduplicated, order-stable collection of citation records.
// ABOUTME: Sources are keyed by URI; the first title seen for a URI wins.

package source

import (
	"sort"
	"strings"
)

// Source is a citation attached to a generated reply.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// DisplayKey returns the string the source is sorted and rendered by:
// the title if present, otherwise the URI.
func (s Source) DisplayKey() string {
	if s.Title != "" {
		return s.Title
	}
	return s.URI
}

// Ledger accumulates every source cited across a conversation exactly once.
// Membership is decided by URI equality. Insertion order is preserved so
// ties in the display sort stay stable.
type Ledger struct {
	seen    map[string]int // URI -> index into entries
	entries []Source
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{seen: make(map[string]int)}
}

// Merge inserts each incoming source whose URI has not been seen before.
// Sources without a URI are skipped. For duplicate URIs the first title
// seen wins; later merges do not overwrite it. Returns the number of
// sources actually added.
func (l *Ledger) Merge(sources []Source) int {
	added := 0
	for _, src := range sources {
		if src.URI == "" {
			continue
		}
		if _, ok := l.seen[src.URI]; ok {
			continue
		}
		if src.Title == "" {
			src.Title = "Source"
		}
		l.seen[src.URI] = len(l.entries)
		l.entries = append(l.entries, src)
		added++
	}
	return added
}

// Contains reports whether a source with the given URI is in the ledger.
func (l *Ledger) Contains(uri string) bool {
	_, ok := l.seen[uri]
	return ok
}

// Len returns the number of distinct sources collected so far.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// All returns the ledger contents in insertion order. The returned slice
// is a copy; mutating it does not affect the ledger.
func (l *Ledger) All() []Source {
	out := make([]Source, len(l.entries))
	copy(out, l.entries)
	return out
}

// AllSorted returns the ledger contents sorted ascending by display key
// (title if present, else URI), case-insensitively. Equal keys keep their
// insertion order.
func (l *Ledger) AllSorted() []Source {
	out := l.All()
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].DisplayKey()) < strings.ToLower(out[j].DisplayKey())
	})
	return out
}

// Reset clears the ledger.
func (l *Ledger) Reset() {
	l.seen = make(map[string]int)
	l.entries = nil
}
