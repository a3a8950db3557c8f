package models

import (
	"time"
)

// Country is one reconciled country record. Name is the natural key;
// the NOCASE collation backs up the LOWER() lookups so "Japan" and
// "japan" can never coexist as separate rows.
type Country struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"type:varchar(100) COLLATE NOCASE;uniqueIndex;not null" json:"name"`
	Capital         *string   `gorm:"size:100" json:"capital"`
	Region          *string   `gorm:"size:100" json:"region"`
	Population      int64     `gorm:"not null" json:"population"`
	CurrencyCode    *string   `gorm:"size:10" json:"currency_code"`
	ExchangeRate    *float64  `json:"exchange_rate"`
	EstimatedGdp    *float64  `json:"estimated_gdp"`
	FlagURL         *string   `gorm:"size:255" json:"flag_url"`
	LastRefreshedAt time.Time `gorm:"not null" json:"last_refreshed_at"`
}

// TableName specifies the table name
func (Country) TableName() string {
	return "countries"
}

// Metadata is the singleton run record (always id 1). SummaryImagePath
// keeps its previous value when a render fails.
type Metadata struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	TotalCountries   int        `json:"total_countries"`
	LastRefreshedAt  *time.Time `json:"last_refreshed_at"`
	SummaryImagePath *string    `gorm:"size:255" json:"summary_image_path"`
}

// TableName specifies the table name
func (Metadata) TableName() string {
	return "metadata"
}

// MetadataID is the fixed primary key of the singleton Metadata row.
const MetadataID uint = 1
