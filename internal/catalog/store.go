// Package catalog loads the pre-embedded clothing catalog and exposes
// read-only filtered views over it.
package catalog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/stylehaus/outfit-assistant/internal/common"
	"github.com/stylehaus/outfit-assistant/internal/model"
)

// Columns the loader requires in the styles CSV. The dataset carries more
// (masterCategory, baseColour, season, ...) but only these drive matching.
const (
	columnID       = "id"
	columnGender   = "gender"
	columnCategory = "articleType"
	columnName     = "productDisplayName"
	columnVector   = "embeddings"
)

// Store holds the catalog for the process lifetime. Loading happens exactly
// once on first use; afterwards the store is read-only and safe to share
// across concurrent requests.
type Store struct {
	logger     *slog.Logger
	byID       map[int]*model.CatalogItem
	stylesPath string
	imageDir   string
	items      []*model.CatalogItem
	categories []string
	loadOnce   sync.Once
	loadErr    error
}

// New creates a store backed by the given styles CSV and image directory.
// Nothing is read until the first accessor call.
func New(stylesPath, imageDir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		stylesPath: stylesPath,
		imageDir:   imageDir,
		logger:     logger,
	}
}

// Load parses the dataset. Subsequent calls return the first result.
// Malformed rows are skipped; an unreadable file or a dataset with no usable
// rows is a load error.
func (s *Store) Load() error {
	s.loadOnce.Do(func() {
		s.loadErr = s.load()
	})
	return s.loadErr
}

func (s *Store) load() error {
	f, err := os.Open(s.stylesPath)
	if err != nil {
		return fmt.Errorf("failed to open styles dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // rows are validated individually

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read dataset header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	for _, required := range []string{columnID, columnGender, columnCategory, columnName, columnVector} {
		if _, ok := columns[required]; !ok {
			return fmt.Errorf("styles dataset is missing column %q", required)
		}
	}

	var skipped int
	dimension := 0
	line := 1

	for {
		line++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Structurally broken row; skip it and keep loading.
			skipped++
			s.logger.Warn("Skipping unreadable catalog row", "line", line, "error", err)
			continue
		}

		item, err := parseRow(record, columns)
		if err != nil {
			skipped++
			s.logger.Warn("Skipping malformed catalog row", "line", line, "error", err)
			continue
		}

		if dimension == 0 {
			dimension = len(item.Embedding)
		} else if len(item.Embedding) != dimension {
			skipped++
			s.logger.Warn("Skipping catalog row with inconsistent embedding dimension",
				"line", line,
				"id", item.ID,
				"dimension", len(item.Embedding),
				"expected", dimension)
			continue
		}

		s.items = append(s.items, item)
	}

	if len(s.items) == 0 {
		return common.ErrCatalogEmpty
	}

	s.byID = make(map[int]*model.CatalogItem, len(s.items))
	seen := make(map[string]struct{})
	for _, item := range s.items {
		s.byID[item.ID] = item
		if _, ok := seen[item.Category]; !ok {
			seen[item.Category] = struct{}{}
			s.categories = append(s.categories, item.Category)
		}
	}
	sort.Strings(s.categories)

	s.logger.Info("Loaded clothing catalog",
		"items", len(s.items),
		"skipped_rows", skipped,
		"categories", len(s.categories),
		"embedding_dimension", dimension)

	return nil
}

func parseRow(record []string, columns map[string]int) (*model.CatalogItem, error) {
	maxIdx := 0
	for _, idx := range columns {
		if idx > maxIdx {
			maxIdx = idx
		}
	}
	if len(record) <= maxIdx {
		return nil, fmt.Errorf("row has %d fields, need at least %d", len(record), maxIdx+1)
	}

	id, err := strconv.Atoi(record[columns[columnID]])
	if err != nil {
		return nil, fmt.Errorf("invalid id %q: %w", record[columns[columnID]], err)
	}

	gender, ok := model.ParseGender(record[columns[columnGender]])
	if !ok {
		return nil, fmt.Errorf("unknown gender %q", record[columns[columnGender]])
	}

	name := record[columns[columnName]]
	if name == "" {
		return nil, fmt.Errorf("empty product name")
	}

	// The embeddings column is a serialized float list, which parses as JSON.
	var embedding []float64
	if err := json.Unmarshal([]byte(record[columns[columnVector]]), &embedding); err != nil {
		return nil, fmt.Errorf("invalid embedding vector: %w", err)
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("empty embedding vector")
	}

	return &model.CatalogItem{
		ID:        id,
		Name:      name,
		Category:  record[columns[columnCategory]],
		Gender:    gender,
		Embedding: embedding,
	}, nil
}

// All returns a view over the full catalog, loading it if necessary.
func (s *Store) All() (View, error) {
	if err := s.Load(); err != nil {
		return View{}, err
	}
	return View{items: s.items}, nil
}

// Categories returns the distinct article types in the catalog, sorted.
func (s *Store) Categories() ([]string, error) {
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s.categories, nil
}

// Item looks up a catalog item by id.
func (s *Store) Item(id int) (*model.CatalogItem, error) {
	if err := s.Load(); err != nil {
		return nil, err
	}
	item, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", common.ErrItemNotFound, id)
	}
	return item, nil
}

// ImagePath resolves the on-disk image for a catalog item and reports
// whether the file exists. A missing image is expected for some items and is
// not an error.
func (s *Store) ImagePath(id int) (string, bool) {
	path := filepath.Join(s.imageDir, fmt.Sprintf("%d.jpg", id))
	if _, err := os.Stat(path); err != nil {
		return path, false
	}
	return path, true
}

// Summary aggregates the catalog for the inventory endpoint: total count,
// the ten largest categories, gender counts, and the first twenty items.
func (s *Store) Summary() (model.InventorySummary, error) {
	if err := s.Load(); err != nil {
		return model.InventorySummary{}, err
	}

	categoryCounts := make(map[string]int)
	genderCounts := make(map[string]int)
	for _, item := range s.items {
		categoryCounts[item.Category]++
		genderCounts[string(item.Gender)]++
	}

	type categoryCount struct {
		name  string
		count int
	}
	ranked := make([]categoryCount, 0, len(categoryCounts))
	for name, count := range categoryCounts {
		ranked = append(ranked, categoryCount{name: name, count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].name < ranked[j].name
	})
	if len(ranked) > 10 {
		ranked = ranked[:10]
	}

	topCategories := make(map[string]int, len(ranked))
	for _, c := range ranked {
		topCategories[c.name] = c.count
	}

	sampleSize := len(s.items)
	if sampleSize > 20 {
		sampleSize = 20
	}
	samples := make([]model.SampleItem, 0, sampleSize)
	for _, item := range s.items[:sampleSize] {
		samples = append(samples, model.SampleItem{
			ID:       item.ID,
			Name:     item.Name,
			Category: item.Category,
			Gender:   item.Gender,
		})
	}

	return model.InventorySummary{
		TotalItems:  len(s.items),
		Categories:  topCategories,
		Genders:     genderCounts,
		SampleItems: samples,
	}, nil
}

// View is a read-only, filterable window over catalog items. Filtering
// copies the item pointer slice, never the items themselves.
type View struct {
	items []*model.CatalogItem
}

// ForGenders keeps items whose gender is in the given set.
func (v View) ForGenders(genders ...model.Gender) View {
	keep := make(map[model.Gender]struct{}, len(genders))
	for _, g := range genders {
		keep[g] = struct{}{}
	}

	filtered := make([]*model.CatalogItem, 0, len(v.items))
	for _, item := range v.items {
		if _, ok := keep[item.Gender]; ok {
			filtered = append(filtered, item)
		}
	}
	return View{items: filtered}
}

// ExcludeCategory drops items of the given article type.
func (v View) ExcludeCategory(category string) View {
	filtered := make([]*model.CatalogItem, 0, len(v.items))
	for _, item := range v.items {
		if item.Category != category {
			filtered = append(filtered, item)
		}
	}
	return View{items: filtered}
}

// Items returns the items in this view, row-aligned with Embeddings.
func (v View) Items() []*model.CatalogItem {
	return v.items
}

// Embeddings returns the embedding vectors in this view, row-aligned with
// Items.
func (v View) Embeddings() [][]float64 {
	vectors := make([][]float64, len(v.items))
	for i, item := range v.items {
		vectors[i] = item.Embedding
	}
	return vectors
}

// Len returns the number of items in this view.
func (v View) Len() int {
	return len(v.items)
}
