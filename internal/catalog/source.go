package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"recommender/internal/domain"
)

//go:embed sample_catalog.json
var sampleCatalog []byte

// FileSource reads a catalog from a JSON or YAML file. The format is chosen by
// file extension.
type FileSource struct {
	Path string
}

// NewFileSource creates a source reading path.
func NewFileSource(path string) *FileSource { return &FileSource{Path: path} }

func (s *FileSource) Name() string { return "file:" + s.Path }

func (s *FileSource) Load(ctx context.Context) ([]domain.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".json":
		return DecodeJSON(data)
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", filepath.Ext(s.Path))
	}
}

// StaticSource serves an in-memory list of records.
type StaticSource struct {
	Items []domain.CatalogItem
}

// NewStaticSource copies items into a new source.
func NewStaticSource(items []domain.CatalogItem) *StaticSource {
	out := make([]domain.CatalogItem, len(items))
	copy(out, items)
	return &StaticSource{Items: out}
}

func (s *StaticSource) Name() string { return "static" }

func (s *StaticSource) Load(ctx context.Context) ([]domain.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]domain.CatalogItem, len(s.Items))
	copy(out, s.Items)
	return out, nil
}

// SampleSource serves the catalog bundled with the binary.
type SampleSource struct{}

func (SampleSource) Name() string { return "sample" }

func (SampleSource) Load(ctx context.Context) ([]domain.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return DecodeJSON(sampleCatalog)
}

// DecodeJSON parses a JSON array of catalog records.
func DecodeJSON(data []byte) ([]domain.CatalogItem, error) {
	var items []domain.CatalogItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode catalog json: %w", err)
	}
	return items, nil
}

// DecodeYAML parses a YAML sequence of catalog records.
func DecodeYAML(data []byte) ([]domain.CatalogItem, error) {
	var items []domain.CatalogItem
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode catalog yaml: %w", err)
	}
	return items, nil
}

// NewSource picks the file source when path is set and the bundled sample otherwise.
func NewSource(path string) domain.CatalogSource {
	if strings.TrimSpace(path) == "" {
		return SampleSource{}
	}
	return NewFileSource(path)
}
