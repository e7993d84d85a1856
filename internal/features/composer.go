// Package features builds the metadata half of item and query vectors and
// fuses it with the latent half.
package features

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"recommender/internal/catalog"
)

// DefaultMetadataWeight damps metadata relative to the latent vector.
const DefaultMetadataWeight = 0.35

var yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// Composer holds the catalog-wide statistics needed to build metadata
// vectors. It is immutable after construction.
type Composer struct {
	categories []string
	position   map[string]int
	keywords   [][]string
	weight     float64

	hasYears       bool
	minYear        int
	maxYear        int
	yearRange      float64
	meanNormalized float64
}

// NewComposer derives category slots and year statistics from items.
// A non-positive weight selects DefaultMetadataWeight.
func NewComposer(items []catalog.Item, weight float64) *Composer {
	if weight <= 0 {
		weight = DefaultMetadataWeight
	}
	c := &Composer{position: make(map[string]int), weight: weight}

	unique := make(map[string]struct{})
	var years []int
	for _, it := range items {
		for _, cat := range it.Categories {
			unique[cat] = struct{}{}
		}
		if it.Year != nil {
			years = append(years, *it.Year)
		}
	}
	for cat := range unique {
		c.categories = append(c.categories, cat)
	}
	sort.Strings(c.categories)
	c.keywords = make([][]string, len(c.categories))
	for i, cat := range c.categories {
		c.position[cat] = i
		c.keywords[i] = Keywords(cat)
	}

	c.yearRange = 1
	c.meanNormalized = 0.5
	if len(years) > 0 {
		c.hasYears = true
		c.minYear, c.maxYear = years[0], years[0]
		sum := 0
		for _, y := range years {
			c.minYear = min(c.minYear, y)
			c.maxYear = max(c.maxYear, y)
			sum += y
		}
		// A single distinct year keeps the unit range.
		if c.maxYear != c.minYear {
			c.yearRange = float64(c.maxYear - c.minYear)
		}
		mean := float64(sum) / float64(len(years))
		c.meanNormalized = (mean - float64(c.minYear)) / c.yearRange
	}
	return c
}

// Categories returns the known categories in slot order.
func (c *Composer) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// Len returns the metadata vector length: one slot per category plus the year.
func (c *Composer) Len() int { return len(c.categories) + 1 }

// Weight returns the metadata damping weight.
func (c *Composer) Weight() float64 { return c.weight }

// NormalizeYear maps year into [0,1] against the observed catalog range.
// Years outside the range are clamped; a missing year, or a catalog without
// years, gets the mean normalized year.
func (c *Composer) NormalizeYear(year *int) float64 {
	if year == nil || !c.hasYears {
		return c.meanNormalized
	}
	y := min(max(*year, c.minYear), c.maxYear)
	return float64(y-c.minYear) / c.yearRange
}

// ItemMetadata returns the metadata vector of a catalog item.
func (c *Composer) ItemMetadata(it catalog.Item) []float64 {
	vec := make([]float64, c.Len())
	for _, cat := range it.Categories {
		if pos, ok := c.position[cat]; ok {
			vec[pos] = 1
		}
	}
	vec[len(vec)-1] = c.NormalizeYear(it.Year)
	return vec
}

// QueryMetadata infers categories and a release year from free text and
// returns the corresponding metadata vector.
func (c *Composer) QueryMetadata(text string) ([]float64, []string, *int) {
	vec := make([]float64, c.Len())
	lower := strings.ToLower(text)
	matched := []string{}
	for i, cat := range c.categories {
		if containsAny(lower, c.keywords[i]) {
			vec[i] = 1
			matched = append(matched, cat)
		}
	}
	var year *int
	if m := yearRe.FindString(lower); m != "" {
		if y, err := strconv.Atoi(m); err == nil {
			year = &y
		}
	}
	vec[len(vec)-1] = c.NormalizeYear(year)
	return vec, matched, year
}

// Combine concatenates latent with the damped metadata vector and returns the
// result with its Euclidean norm.
func (c *Composer) Combine(latent, metadata []float64) ([]float64, float64) {
	out := make([]float64, 0, len(latent)+len(metadata))
	out = append(out, latent...)
	for _, m := range metadata {
		out = append(out, m*c.weight)
	}
	return out, Norm(out)
}

// Norm returns the Euclidean norm of v.
func Norm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
