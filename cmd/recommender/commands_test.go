package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recommender/internal/domain"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "missing.yaml")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfg, "--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRecommendCommand(t *testing.T) {
	out, err := run(t, "recommend", "Orbital", "Drift")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Because you picked Orbital Drift\n"), out)
	assert.Contains(t, out, " 1. ")
	assert.Contains(t, out, "10. ")
}

func TestRecommendCommand_JSON(t *testing.T) {
	out, err := run(t, "recommend", "--json", "space", "crew")
	require.NoError(t, err)

	var payload domain.RecommendationPayload
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "space crew", payload.Seed)
	assert.Nil(t, payload.ReferenceTitle)
	assert.NotEmpty(t, payload.Recommendations)
}

func TestCatalogCommand(t *testing.T) {
	out, err := run(t, "catalog")
	require.NoError(t, err)

	var summary domain.CatalogSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "Orbital Drift", summary.DefaultSeed)
	assert.Len(t, summary.Items, 15)
}

func TestCatalogCommand_BadCatalog(t *testing.T) {
	_, err := run(t, "--catalog", filepath.Join(t.TempDir(), "none.json"), "catalog")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read catalog")
}

func TestPrintRecommendations_Empty(t *testing.T) {
	var buf bytes.Buffer
	year := 2005
	printRecommendations(&buf, &domain.RecommendationPayload{
		Seed:    "nothing",
		Profile: domain.Profile{Categories: []string{"Sci-Fi"}, Year: &year},
	})
	assert.Equal(t, "Matches for \"nothing\"\nCategories: Sci-Fi\nYear: 2005\n\nNo recommendations.\n", buf.String())
}
