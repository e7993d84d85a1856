package domain

import "context"

// CatalogItem is a single immutable record supplied by the catalog source.
type CatalogItem struct {
	Title    string `json:"title" yaml:"title" validate:"required"`
	Plot     string `json:"plot" yaml:"plot"`
	Category string `json:"category" yaml:"category"`
	Year     *int   `json:"year" yaml:"year" validate:"omitempty,gte=1000,lte=9999"`
	Image    string `json:"image,omitempty" yaml:"image,omitempty"`
}

// SummaryEntry is the reduced view of a catalog item used for listings.
type SummaryEntry struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Year     *int   `json:"year"`
}

// CatalogSummary lists the catalog and the title used when no seed is given.
type CatalogSummary struct {
	Items       []SummaryEntry `json:"items"`
	DefaultSeed string         `json:"defaultSeed"`
}

// Recommendation is a scored catalog item with a short explanation.
type Recommendation struct {
	Title    string  `json:"title"`
	Plot     string  `json:"plot"`
	Category string  `json:"category"`
	Year     *int    `json:"year"`
	Image    string  `json:"image,omitempty"`
	Score    float64 `json:"score"`
	Insight  string  `json:"insight"`
}

// Profile describes the signals a seed resolved to.
type Profile struct {
	Categories []string `json:"categories"`
	Year       *int     `json:"year"`
}

// RecommendationPayload is the result of a recommendation query.
type RecommendationPayload struct {
	Seed            string           `json:"seed"`
	ReferenceTitle  *string          `json:"referenceTitle"`
	Recommendations []Recommendation `json:"recommendations"`
	Profile         Profile          `json:"profile"`
}

// HealthStatus is the lifecycle state reported by Health.
type HealthStatus string

const (
	HealthReady        HealthStatus = "ready"
	HealthInitializing HealthStatus = "initializing"
	HealthError        HealthStatus = "error"
)

// Health is the engine health report.
type Health struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// CatalogSource supplies the catalog records once at startup.
type CatalogSource interface {
	Name() string
	Load(ctx context.Context) ([]CatalogItem, error)
}

// Recommender defines the operations exposed by the application core.
type Recommender interface {
	CatalogSummary(ctx context.Context) (*CatalogSummary, error)
	Health(ctx context.Context) Health
	Recommend(ctx context.Context, seed string) (*RecommendationPayload, error)
}
