package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"country-insights/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Country{}, &models.Metadata{}))

	return db
}

func seedCountry(t *testing.T, store *CountryStore, country models.Country) models.Country {
	t.Helper()

	if country.LastRefreshedAt.IsZero() {
		country.LastRefreshedAt = time.Now().UTC()
	}
	require.NoError(t, store.Create(&country))

	return country
}

// stubRenderer stands in for the PNG renderer.
type stubRenderer struct {
	path  string
	err   error
	calls int
	top   []models.Country
}

func (r *stubRenderer) Render(totalCountries int, top []models.Country, lastRefreshed time.Time) (string, error) {
	r.calls++
	r.top = top
	if r.err != nil {
		return "", r.err
	}
	return r.path, nil
}

func strPtr(s string) *string {
	return &s
}

func floatPtr(f float64) *float64 {
	return &f
}
