package catalog

import (
	"fmt"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

var (
	matchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shop",
			Subsystem: "catalog",
			Name:      "matches_total",
			Help:      "Category match attempts by outcome source",
		},
		[]string{"source"},
	)
	indexReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shop",
			Subsystem: "catalog",
			Name:      "index_reloads_total",
			Help:      "Category index rebuilds by result",
		},
		[]string{"result"},
	)
	indexCategories = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "shop",
			Subsystem: "catalog",
			Name:      "index_categories",
			Help:      "Number of categories in the active index",
		},
	)
)

// Loader knows where the catalog and keyword overrides come from.
// Empty paths fall back to the data bundled with the binary.
type Loader struct {
	CatalogPath   string
	OverridesPath string
}

// Load reads the catalog and overrides and builds a new Index.
func (l Loader) Load() (*Index, error) {
	categories := DefaultCategories()
	if l.CatalogPath != "" {
		cats, err := LoadCategoriesFile(l.CatalogPath)
		if err != nil {
			return nil, err
		}
		categories = cats
	}

	overrides := DefaultOverrides()
	if l.OverridesPath != "" {
		ovs, err := LoadOverridesFile(l.OverridesPath)
		if err != nil {
			return nil, err
		}
		overrides = ovs
	}

	return BuildIndex(categories, overrides), nil
}

// Paths returns the configured source files, skipping embedded ones.
func (l Loader) Paths() []string {
	var paths []string
	for _, p := range []string{l.CatalogPath, l.OverridesPath} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// Store holds the active Index. Readers never block; a rebuild replaces the
// whole index at once.
type Store struct {
	current atomic.Pointer[snapshot]
}

// snapshot pairs an index with the tree built from the same catalog.
type snapshot struct {
	index *Index
	tree  *Tree
}

// NewStore creates a store serving idx.
func NewStore(idx *Index) *Store {
	s := &Store{}
	s.Swap(idx)
	return s
}

// Load returns the active index.
func (s *Store) Load() *Index {
	return s.current.Load().index
}

// Tree returns the category tree of the active index.
func (s *Store) Tree() *Tree {
	return s.current.Load().tree
}

// Swap makes idx the active index. idx must not be modified afterwards.
func (s *Store) Swap(idx *Index) {
	s.current.Store(&snapshot{index: idx, tree: BuildTree(idx.Categories())})
	indexCategories.Set(float64(idx.Len()))
}

// Reload rebuilds the index from l and swaps it in. On failure the previous
// index stays active.
func (s *Store) Reload(l Loader) error {
	idx, err := l.Load()
	if err != nil {
		indexReloads.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to reload catalog: %w", err)
	}
	s.Swap(idx)
	indexReloads.WithLabelValues("ok").Inc()
	log.Info().Int("categories", idx.Len()).Int("overrides", len(idx.overrides)).Msg("category index loaded")
	return nil
}

// Match explains text against the active index and records the outcome.
func (s *Store) Match(text string, minScore int) MatchResult {
	res := Explain(text, s.Load(), minScore)
	matchesTotal.WithLabelValues(string(res.Source)).Inc()
	log.Debug().
		Str("text", text).
		Int("categoryID", res.CategoryID).
		Int("score", res.Score).
		Str("source", string(res.Source)).
		Msg("category match")
	return res
}
