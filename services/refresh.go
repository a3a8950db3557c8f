package services

import (
	"sync"
	"time"

	"country-insights/models"
	"country-insights/system"
)

// RefreshService orchestrates one refresh: fetch both sources in
// parallel, reconcile the batch into the store, then hand off to the
// summary step. Invocations are serialized by mu so two refreshes can
// never interleave read-then-write cycles on the same natural key.
type RefreshService struct {
	mu      sync.Mutex
	store   *CountryStore
	client  *CountryClient
	summary *SummaryService
}

// NewRefreshService creates a RefreshService
func NewRefreshService(store *CountryStore, client *CountryClient, summary *SummaryService) *RefreshService {
	return &RefreshService{store: store, client: client, summary: summary}
}

// RefreshResult carries the per-run counts.
type RefreshResult struct {
	Inserted int
	Updated  int
	Total    int
}

// Run executes one full refresh. Either upstream failing aborts before
// any persistence; errors from the upstream carry their source tag.
func (s *RefreshService) Run() (*RefreshResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		countries  []SourceCountry
		rates      map[string]float64
		cErr, rErr error
		wg         sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		countries, cErr = s.client.FetchCountries()
	}()
	go func() {
		defer wg.Done()
		rates, rErr = s.client.FetchRates()
	}()
	wg.Wait()

	if cErr != nil {
		return nil, cErr
	}
	if rErr != nil {
		return nil, rErr
	}

	// Single batch timestamp, stamped on every row this run touches.
	now := time.Now().UTC()

	inserted, updated, err := s.Reconcile(countries, rates, now)
	if err != nil {
		return nil, err
	}

	// Best-effort: a summary or render failure never undoes the batch.
	s.summary.Finalize(len(countries), now)

	system.Info("Refresh complete: inserted=%d updated=%d total=%d", inserted, updated, len(countries))

	return &RefreshResult{Inserted: inserted, Updated: updated, Total: len(countries)}, nil
}

// Reconcile merges a batch of source records into the store, strictly
// sequentially and in source order. Each record either inserts a new
// country or updates the existing one found by case-insensitive name;
// row ids are never reassigned.
func (s *RefreshService) Reconcile(countries []SourceCountry, rates map[string]float64, now time.Time) (inserted, updated int, err error) {
	for i := range countries {
		src := &countries[i]

		if src.Name == "" || src.Population < 0 {
			system.Warn("Skipping malformed source record (name=%q population=%d)", src.Name, src.Population)
			continue
		}

		var currencyCode *string
		if len(src.Currencies) > 0 && src.Currencies[0].Code != "" {
			code := src.Currencies[0].Code
			currencyCode = &code
		}

		// No currency at all means a hard zero estimate; a currency
		// whose rate is absent from the table stays nil instead.
		var rate, gdp *float64
		if currencyCode != nil {
			if r, ok := rates[*currencyCode]; ok && r > 0 {
				rate = &r
			}
			gdp = EstimateGDP(src.Population, rate)
		} else {
			zero := 0.0
			gdp = &zero
		}

		existing, err := s.store.FindByName(src.Name)
		if err != nil {
			return inserted, updated, err
		}

		if existing == nil {
			country := models.Country{
				Name:            src.Name,
				Capital:         optional(src.Capital),
				Region:          optional(src.Region),
				Population:      src.Population,
				CurrencyCode:    currencyCode,
				ExchangeRate:    rate,
				EstimatedGdp:    gdp,
				FlagURL:         optional(src.Flag),
				LastRefreshedAt: now,
			}
			if err := s.store.Create(&country); err != nil {
				return inserted, updated, err
			}
			inserted++
			continue
		}

		fields := map[string]interface{}{
			"capital":           optional(src.Capital),
			"region":            optional(src.Region),
			"population":        src.Population,
			"currency_code":     currencyCode,
			"exchange_rate":     rate,
			"estimated_gdp":     gdp,
			"flag_url":          optional(src.Flag),
			"last_refreshed_at": now,
		}
		if err := s.store.UpdateFields(existing.ID, fields); err != nil {
			return inserted, updated, err
		}
		updated++
	}

	return inserted, updated, nil
}

// optional maps an empty source string to NULL
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
