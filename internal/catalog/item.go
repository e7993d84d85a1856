package catalog

import (
	"strings"

	"recommender/internal/domain"
)

// Item is a catalog record parsed into its normalized form.
type Item struct {
	Record     domain.CatalogItem
	Categories []string
	Year       *int
}

// Key returns the normalized title used for exact lookups.
func (it Item) Key() string { return NormalizeTitle(it.Record.Title) }

// Text returns the title, category and plot joined for vectorization.
func (it Item) Text() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{it.Record.Title, it.Record.Category, it.Record.Plot} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// HasCategory reports whether the item is labeled with category.
func (it Item) HasCategory(category string) bool {
	for _, c := range it.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// NormalizeTitle lowercases and trims a title or seed.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// ParseCategories splits a comma-delimited label string, trimming each entry
// and dropping empties and repeats.
func ParseCategories(label string) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, raw := range strings.Split(label, ",") {
		c := strings.TrimSpace(raw)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Parse normalizes a single record.
func Parse(record domain.CatalogItem) Item {
	it := Item{Record: record, Categories: ParseCategories(record.Category)}
	if record.Year != nil {
		y := *record.Year
		it.Year = &y
	}
	return it
}

// ParseAll normalizes records in catalog order.
func ParseAll(records []domain.CatalogItem) []Item {
	items := make([]Item, len(records))
	for i, r := range records {
		items[i] = Parse(r)
	}
	return items
}
