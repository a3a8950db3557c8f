package services

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"country-insights/models"
)

func TestFinalize_RecordsTotalsAndImagePath(t *testing.T) {
	store := NewCountryStore(newTestDB(t))
	renderer := &stubRenderer{path: "cache/summary.png"}
	summary := NewSummaryService(store, renderer)

	seedCountry(t, store, models.Country{Name: "Brazil", Population: 210, EstimatedGdp: floatPtr(9.0)})
	seedCountry(t, store, models.Country{Name: "Chad", Population: 17})

	now := time.Now().UTC()
	summary.Finalize(250, now)

	meta, err := store.GetMetadata()
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, 250, meta.TotalCountries)
	require.NotNil(t, meta.SummaryImagePath)
	assert.Equal(t, "cache/summary.png", *meta.SummaryImagePath)

	// Only ranked (non-null estimate) countries reach the renderer.
	require.Len(t, renderer.top, 1)
	assert.Equal(t, "Brazil", renderer.top[0].Name)
}

func TestFinalize_RenderFailureKeepsPreviousImagePath(t *testing.T) {
	store := NewCountryStore(newTestDB(t))

	// A previous run rendered successfully.
	require.NoError(t, store.UpsertRunTotals(100, time.Now().UTC().Add(-time.Hour)))
	require.NoError(t, store.SetSummaryImagePath("cache/old-summary.png"))

	summary := NewSummaryService(store, &stubRenderer{err: assert.AnError})
	summary.Finalize(120, time.Now().UTC())

	meta, err := store.GetMetadata()
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, 120, meta.TotalCountries)
	require.NotNil(t, meta.SummaryImagePath)
	assert.Equal(t, "cache/old-summary.png", *meta.SummaryImagePath)
}

func TestSummaryRenderer_WritesDecodablePNG(t *testing.T) {
	dir := t.TempDir()
	renderer := NewSummaryRenderer(dir)

	top := []models.Country{
		{Name: "Brazil", EstimatedGdp: floatPtr(123456.78)},
		{Name: "Chad", EstimatedGdp: floatPtr(99.5)},
	}

	path, err := renderer.Render(195, top, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "summary.png"), path)
	assert.Equal(t, path, renderer.ImagePath())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())
}

func TestSummaryRenderer_FailsOnUnwritableCacheDir(t *testing.T) {
	// A regular file where the cache directory should be makes MkdirAll fail.
	blocker := filepath.Join(t.TempDir(), "cache")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0644))

	renderer := NewSummaryRenderer(blocker)
	_, err := renderer.Render(1, nil, time.Now().UTC())
	assert.Error(t, err)
}
