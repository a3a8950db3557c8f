package services

import (
	"time"

	"country-insights/models"
	"country-insights/system"
)

// Renderer produces the summary artifact and returns its location.
type Renderer interface {
	Render(totalCountries int, top []models.Country, lastRefreshed time.Time) (string, error)
}

// SummaryService runs the post-reconciliation steps: metadata upsert,
// top-5 ranking and the artifact render. All of it is best-effort
// relative to the batch — nothing here may fail a refresh that already
// committed.
type SummaryService struct {
	store    *CountryStore
	renderer Renderer
}

// NewSummaryService creates a SummaryService
func NewSummaryService(store *CountryStore, renderer Renderer) *SummaryService {
	return &SummaryService{store: store, renderer: renderer}
}

// Finalize records run totals and refreshes the summary artifact.
// totalCountries is the source record count, not the persisted count.
// The stored image path is only touched when the render succeeds.
func (s *SummaryService) Finalize(totalCountries int, now time.Time) {
	if err := s.store.UpsertRunTotals(totalCountries, now); err != nil {
		system.Error("Failed to update run metadata: %v", err)
		return
	}

	top, err := s.store.TopByGDP(5)
	if err != nil {
		system.Error("Failed to rank countries for summary: %v", err)
		return
	}

	path, err := s.renderer.Render(totalCountries, top, now)
	if err != nil {
		system.Warn("Failed to generate summary image: %v", err)
		return
	}

	if err := s.store.SetSummaryImagePath(path); err != nil {
		system.Warn("Failed to record summary image path: %v", err)
		return
	}

	system.Info("Summary image generated at: %s", path)
}
