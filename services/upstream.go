package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Upstream source identities, used to tag failures so callers can tell
// which source broke without parsing error text.
const (
	SourceCountries = "restcountries.com"
	SourceRates     = "open.er-api.com"
)

const (
	countriesURL = "https://restcountries.com/v2/all?fields=name,capital,region,population,flag,currencies"
	ratesURL     = "https://open.er-api.com/v6/latest/USD"

	upstreamTimeout = 10 * time.Second
)

// UpstreamError wraps any transport or non-2xx failure from one of the
// two external sources, tagged with the source identity.
type UpstreamError struct {
	Source string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// SourceCurrency is one currency descriptor as reported by restcountries.
type SourceCurrency struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// SourceCountry is one country descriptor as reported by restcountries.
type SourceCountry struct {
	Name       string           `json:"name"`
	Capital    string           `json:"capital"`
	Region     string           `json:"region"`
	Population int64            `json:"population"`
	Flag       string           `json:"flag"`
	Currencies []SourceCurrency `json:"currencies"`
}

// ratesResponse is the open.er-api.com envelope; rates are relative to USD.
type ratesResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// CountryClient fetches country reference data and exchange rates from
// the two external sources. The sources fail independently; each call
// is bounded by its own timeout.
type CountryClient struct {
	client *http.Client
}

// NewCountryClient creates a CountryClient with a bounded HTTP client
func NewCountryClient() *CountryClient {
	return &CountryClient{
		client: &http.Client{
			Timeout: upstreamTimeout,
		},
	}
}

// FetchCountries retrieves the full country list from restcountries.com
func (c *CountryClient) FetchCountries() ([]SourceCountry, error) {
	body, err := c.get(countriesURL, SourceCountries)
	if err != nil {
		return nil, err
	}

	var countries []SourceCountry
	if err := json.Unmarshal(body, &countries); err != nil {
		return nil, &UpstreamError{Source: SourceCountries, Err: fmt.Errorf("decoding response: %w", err)}
	}

	return countries, nil
}

// FetchRates retrieves the USD-based exchange rate table from open.er-api.com
func (c *CountryClient) FetchRates() (map[string]float64, error) {
	body, err := c.get(ratesURL, SourceRates)
	if err != nil {
		return nil, err
	}

	var resp ratesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &UpstreamError{Source: SourceRates, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if resp.Rates == nil {
		return nil, &UpstreamError{Source: SourceRates, Err: fmt.Errorf("response contained no rates (result=%q)", resp.Result)}
	}

	return resp.Rates, nil
}

func (c *CountryClient) get(url, source string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, &UpstreamError{Source: source, Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Source: source, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Source: source, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Source: source, Err: fmt.Errorf("reading response body: %w", err)}
	}

	return body, nil
}
