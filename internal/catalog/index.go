package catalog

import (
	"maps"
	"slices"
)

// Index is a searchable view over a category catalog.
// It is never modified after BuildIndex returns and is safe for concurrent use.
type Index struct {
	byID map[int]Category
	// order lists category ids in the order they first appeared in the catalog.
	// Scoring walks categories in this order so results are reproducible.
	order []int
	// inverted maps a token to the ids of categories whose title produced it,
	// each id at most once, in catalog order.
	inverted map[string][]int
	// overrides maps a lowercase keyword to a category id.
	overrides map[string]int
}

// BuildIndex builds an Index from categories and optional keyword overrides.
//
// A duplicate category id replaces the earlier entry (last write wins); tokens
// contributed by the earlier title stay in the inverted index. Override targets
// are not checked against the catalog.
func BuildIndex(categories []Category, overrides map[string]int) *Index {
	idx := &Index{
		byID:      make(map[int]Category, len(categories)),
		order:     make([]int, 0, len(categories)),
		inverted:  make(map[string][]int),
		overrides: make(map[string]int, len(overrides)),
	}

	for _, c := range categories {
		if _, seen := idx.byID[c.ID]; !seen {
			idx.order = append(idx.order, c.ID)
		}
		idx.byID[c.ID] = c

		for token := range Tokenize(c.Title) {
			ids := idx.inverted[token]
			if !slices.Contains(ids, c.ID) {
				idx.inverted[token] = append(ids, c.ID)
			}
		}
	}

	// Sorted so that keys differing only in case resolve the same way every build.
	for _, kw := range slices.Sorted(maps.Keys(overrides)) {
		idx.overrides[lower(kw)] = overrides[kw]
	}

	return idx
}

// Category returns the category with the given id.
func (idx *Index) Category(id int) (Category, bool) {
	if idx == nil {
		return Category{}, false
	}
	c, ok := idx.byID[id]
	return c, ok
}

// Categories returns all categories in catalog order.
func (idx *Index) Categories() []Category {
	if idx == nil {
		return nil
	}
	out := make([]Category, 0, len(idx.order))
	for _, id := range idx.order {
		out = append(out, idx.byID[id])
	}
	return out
}

// Len returns the number of distinct categories.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.byID)
}

// TokenCategories returns the ids of categories whose title contains token.
// The returned slice must not be modified.
func (idx *Index) TokenCategories(token string) []int {
	if idx == nil {
		return nil
	}
	return idx.inverted[token]
}

// Override looks up a keyword override, ignoring case.
func (idx *Index) Override(keyword string) (int, bool) {
	if idx == nil {
		return 0, false
	}
	id, ok := idx.overrides[lower(keyword)]
	return id, ok
}

// Overrides returns a copy of the keyword override table.
func (idx *Index) Overrides() map[string]int {
	if idx == nil {
		return nil
	}
	return maps.Clone(idx.overrides)
}
