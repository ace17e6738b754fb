// Package catalog maps free-text product descriptions to print-on-demand
// catalog categories.
//
// # Matching
//
// Category titles are tokenized into an inverted index (token -> category ids).
// A product description is scored against that index: one point per token
// overlap, plus a phrase bonus when a category's full title appears verbatim in
// the text. The highest scoring category wins when it reaches the minimum
// score. Otherwise the description's tokens are looked up in a manually curated
// keyword override table (e.g. "cup" -> the mugs category).
//
// Indexes are immutable once built. A Store holds the current index and swaps
// in a freshly built one when the catalog changes, so matches in flight always
// see a consistent index.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Category is a node in the Printful product catalog taxonomy.
type Category struct {
	ID              int    `json:"id"`
	ParentID        int    `json:"parent_id"`
	Title           string `json:"title"`
	ImageURL        string `json:"image_url,omitempty"`
	CatalogPosition int    `json:"catalog_position"`
	Size            string `json:"size,omitempty"`
}

//go:embed categories.json
var embeddedCategories []byte

// categoriesDocument accepts both the bare {"categories": [...]} document and
// the Printful API envelope {"result": {"categories": [...]}}.
type categoriesDocument struct {
	Categories []Category `json:"categories"`
	Result     *struct {
		Categories []Category `json:"categories"`
	} `json:"result"`
}

// ParseCategories reads a category catalog document.
func ParseCategories(r io.Reader) ([]Category, error) {
	var doc categoriesDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	if len(doc.Categories) == 0 && doc.Result != nil {
		return doc.Result.Categories, nil
	}
	return doc.Categories, nil
}

// LoadCategoriesFile reads a category catalog from disk.
func LoadCategoriesFile(path string) ([]Category, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open category file: %w", err)
	}
	defer f.Close()

	cats, err := ParseCategories(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cats, nil
}

// DefaultCategories returns the catalog bundled with the binary.
func DefaultCategories() []Category {
	cats, err := ParseCategories(bytes.NewReader(embeddedCategories))
	if err != nil {
		// The embedded file is part of the build; a decode failure is a programming error.
		panic(fmt.Sprintf("embedded categories: %v", err))
	}
	return cats
}

// WriteCategories writes categories in the document format read by ParseCategories.
func WriteCategories(w io.Writer, categories []Category) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Categories []Category `json:"categories"`
	}{Categories: categories})
}
