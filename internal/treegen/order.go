package treegen

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/temirov/readmetree/internal/types"
)

// entryOrdering sorts siblings directories first, then by locale collation of names.
// A collator keeps internal buffers, so each render owns its own ordering.
type entryOrdering struct {
	collator *collate.Collator
}

func newEntryOrdering(tag language.Tag) *entryOrdering {
	return &entryOrdering{collator: collate.New(tag)}
}

func (ordering *entryOrdering) less(left, right types.DirEntry) bool {
	if left.IsDirectory != right.IsDirectory {
		return left.IsDirectory
	}
	return ordering.collator.CompareString(left.Name, right.Name) < 0
}

// sortEntries orders entries in place; entries comparing equal keep their listing order.
func (ordering *entryOrdering) sortEntries(entries []types.DirEntry) {
	sort.SliceStable(entries, func(leftIndex, rightIndex int) bool {
		return ordering.less(entries[leftIndex], entries[rightIndex])
	})
}

// SortEntries orders entries using the root locale.
func SortEntries(entries []types.DirEntry) []types.DirEntry {
	sorted := append([]types.DirEntry(nil), entries...)
	newEntryOrdering(language.Und).sortEntries(sorted)
	return sorted
}
