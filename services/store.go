package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"country-insights/models"
)

// CountryStore owns all access to the countries table and the singleton
// metadata row.
type CountryStore struct {
	db *gorm.DB
}

// NewCountryStore creates a CountryStore
func NewCountryStore(db *gorm.DB) *CountryStore {
	return &CountryStore{db: db}
}

// FindByName looks up a country by case-insensitive name match.
// Returns (nil, nil) when no row matches.
func (s *CountryStore) FindByName(name string) (*models.Country, error) {
	var country models.Country
	err := s.db.Where("LOWER(name) = LOWER(?)", name).First(&country).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &country, nil
}

// Create inserts a new country row
func (s *CountryStore) Create(country *models.Country) error {
	return s.db.Create(country).Error
}

// UpdateFields updates mutable fields of an existing country by id.
// A map is used so nil values overwrite instead of being skipped.
func (s *CountryStore) UpdateFields(id uint, fields map[string]interface{}) error {
	return s.db.Model(&models.Country{}).Where("id = ?", id).Updates(fields).Error
}

// ListFilter narrows and orders a country listing.
type ListFilter struct {
	Region   string
	Currency string
	Sort     string
}

// sortClauses maps sort tokens to ORDER BY clauses. Anything else falls
// back to name ascending.
var sortClauses = map[string]string{
	"gdp_desc":        "estimated_gdp DESC",
	"gdp_asc":         "estimated_gdp ASC",
	"population_desc": "population DESC",
	"population_asc":  "population ASC",
	"name_asc":        "name ASC",
	"name_desc":       "name DESC",
}

// List returns countries matching the filter, ordered per its sort token
func (s *CountryStore) List(filter ListFilter) ([]models.Country, error) {
	query := s.db.Model(&models.Country{})

	if filter.Region != "" {
		query = query.Where("region = ?", filter.Region)
	}
	if filter.Currency != "" {
		query = query.Where("currency_code = ?", filter.Currency)
	}

	order, ok := sortClauses[strings.ToLower(filter.Sort)]
	if !ok {
		order = "name ASC"
	}

	var countries []models.Country
	if err := query.Order(order).Find(&countries).Error; err != nil {
		return nil, err
	}
	return countries, nil
}

// First returns one arbitrary persisted country, or (nil, nil) when the
// table is empty.
func (s *CountryStore) First() (*models.Country, error) {
	var country models.Country
	err := s.db.Limit(1).Find(&country).Error
	if err != nil {
		return nil, err
	}
	if country.ID == 0 {
		return nil, nil
	}
	return &country, nil
}

// DeleteByName removes a country by case-insensitive name and returns
// the canonical stored name. Returns gorm.ErrRecordNotFound when no row
// matches.
func (s *CountryStore) DeleteByName(name string) (string, error) {
	existing, err := s.FindByName(name)
	if err != nil {
		return "", err
	}
	if existing == nil {
		return "", gorm.ErrRecordNotFound
	}

	if err := s.db.Delete(&models.Country{}, existing.ID).Error; err != nil {
		return "", err
	}
	return existing.Name, nil
}

// TopByGDP returns up to limit countries ranked by estimated GDP
// descending. Rows without an estimate are excluded from the ranking.
func (s *CountryStore) TopByGDP(limit int) ([]models.Country, error) {
	var countries []models.Country
	err := s.db.
		Where("estimated_gdp IS NOT NULL").
		Order("estimated_gdp DESC").
		Limit(limit).
		Find(&countries).Error
	if err != nil {
		return nil, err
	}
	return countries, nil
}

// UpsertRunTotals writes run totals and timestamp onto the singleton
// metadata row, creating it on the first run. The summary image path is
// deliberately untouched here.
func (s *CountryStore) UpsertRunTotals(total int, now time.Time) error {
	meta := models.Metadata{
		ID:              models.MetadataID,
		TotalCountries:  total,
		LastRefreshedAt: &now,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_countries", "last_refreshed_at"}),
	}).Create(&meta).Error
}

// SetSummaryImagePath records the artifact location of the last
// successful render.
func (s *CountryStore) SetSummaryImagePath(path string) error {
	result := s.db.Model(&models.Metadata{}).
		Where("id = ?", models.MetadataID).
		Update("summary_image_path", path)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("metadata row %d does not exist", models.MetadataID)
	}
	return nil
}

// GetMetadata reads the singleton metadata row, (nil, nil) when no
// refresh has ever completed.
func (s *CountryStore) GetMetadata() (*models.Metadata, error) {
	var meta models.Metadata
	err := s.db.First(&meta, models.MetadataID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &meta, nil
}
