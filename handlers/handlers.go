package handlers

import (
	"errors"
	"net/url"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"country-insights/models"
	"country-insights/services"
	"country-insights/system"
)

type Handler struct {
	Store     *services.CountryStore
	Refresh   *services.RefreshService
	ImagePath string
}

func NewHandler(store *services.CountryStore, refresh *services.RefreshService, imagePath string) *Handler {
	return &Handler{Store: store, Refresh: refresh, ImagePath: imagePath}
}

// RefreshCountries - POST /countries/refresh
func (h *Handler) RefreshCountries(c *fiber.Ctx) error {
	result, err := h.Refresh.Run()
	if err != nil {
		var upstreamErr *services.UpstreamError
		if errors.As(err, &upstreamErr) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error":   "External data source unavailable",
				"details": "Could not fetch data from " + upstreamErr.Source,
			})
		}
		system.Error("Refresh failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	return c.JSON(fiber.Map{
		"message":  "Country data refreshed successfully",
		"inserted": result.Inserted,
		"updated":  result.Updated,
		"total":    result.Total,
	})
}

// GetCountries - GET /countries with optional region/currency filters and sort
func (h *Handler) GetCountries(c *fiber.Ctx) error {
	filter := services.ListFilter{
		Region:   c.Query("region"),
		Currency: c.Query("currency"),
		Sort:     c.Query("sort"),
	}

	countries, err := h.Store.List(filter)
	if err != nil {
		system.Error("Failed to list countries: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	if len(countries) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No countries found matching the criteria"})
	}

	formatted := make([]fiber.Map, 0, len(countries))
	for i := range countries {
		formatted = append(formatted, formatCountry(&countries[i]))
	}
	return c.JSON(formatted)
}

// GetCountry - GET /countries/:name (case-insensitive)
func (h *Handler) GetCountry(c *fiber.Ctx) error {
	country, err := h.Store.FindByName(paramName(c))
	if err != nil {
		system.Error("Failed to fetch country: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
	if country == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Country not found"})
	}

	return c.JSON(formatCountry(country))
}

// DeleteCountry - DELETE /countries/:name (case-insensitive)
func (h *Handler) DeleteCountry(c *fiber.Ctx) error {
	name, err := h.Store.DeleteByName(paramName(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Country not found"})
		}
		system.Error("Failed to delete country: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	return c.JSON(fiber.Map{
		"message": "Country deleted successfully",
		"name":    name,
	})
}

// GetSummaryImage - GET /countries/image serves the last rendered artifact
func (h *Handler) GetSummaryImage(c *fiber.Ctx) error {
	if _, err := os.Stat(h.ImagePath); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Summary image not found"})
	}
	return c.SendFile(h.ImagePath)
}

// GetStatus - GET /status reports run metadata
func (h *Handler) GetStatus(c *fiber.Ctx) error {
	meta, err := h.Store.GetMetadata()
	if err != nil {
		system.Error("Failed to fetch status: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	if meta == nil {
		return c.JSON(fiber.Map{
			"total_countries":   0,
			"last_refreshed_at": nil,
		})
	}

	return c.JSON(fiber.Map{
		"total_countries":   meta.TotalCountries,
		"last_refreshed_at": formatTime(meta.LastRefreshedAt),
	})
}

// Root - GET / returns one arbitrary persisted country, or an empty object
func (h *Handler) Root(c *fiber.Ctx) error {
	country, err := h.Store.First()
	if err != nil {
		system.Error("Failed to fetch country: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	if country == nil {
		return c.JSON(fiber.Map{})
	}
	return c.JSON(formatCountry(country))
}

// paramName extracts the :name path segment, undoing URL escaping
// (e.g. "United%20States" -> "United States").
func paramName(c *fiber.Ctx) string {
	raw := c.Params("name")
	if decoded, err := url.QueryUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

func formatCountry(country *models.Country) fiber.Map {
	return fiber.Map{
		"id":                country.ID,
		"name":              country.Name,
		"capital":           country.Capital,
		"region":            country.Region,
		"population":        country.Population,
		"currency_code":     country.CurrencyCode,
		"exchange_rate":     country.ExchangeRate,
		"estimated_gdp":     country.EstimatedGdp,
		"flag_url":          country.FlagURL,
		"last_refreshed_at": country.LastRefreshedAt.UTC().Format(time.RFC3339),
	}
}

func formatTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
