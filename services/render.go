package services

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"country-insights/models"
)

const (
	summaryWidth    = 800
	summaryHeight   = 600
	summaryFileName = "summary.png"
)

var (
	summaryBackground = color.RGBA{R: 0x1a, G: 0x1a, B: 0x2e, A: 0xff}
	summaryWhite      = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	summaryGreen      = color.RGBA{R: 0x16, G: 0xc7, B: 0x9a, A: 0xff}
	summaryGrey       = color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}
	summaryGold       = color.RGBA{R: 0xff, G: 0xd7, B: 0x00, A: 0xff}
	summaryMuted      = color.RGBA{R: 0xa0, G: 0xa0, B: 0xa0, A: 0xff}
)

// SummaryRenderer draws the fixed-layout summary card and writes it to
// the cache directory.
type SummaryRenderer struct {
	cacheDir string
	printer  *message.Printer
}

// NewSummaryRenderer creates a renderer writing into cacheDir
func NewSummaryRenderer(cacheDir string) *SummaryRenderer {
	return &SummaryRenderer{
		cacheDir: cacheDir,
		printer:  message.NewPrinter(language.English),
	}
}

// ImagePath returns where the rendered artifact lives
func (r *SummaryRenderer) ImagePath() string {
	return filepath.Join(r.cacheDir, summaryFileName)
}

// Render draws the summary card (title, total count, top-5 list,
// timestamp) and returns the artifact path.
func (r *SummaryRenderer) Render(totalCountries int, top []models.Country, lastRefreshed time.Time) (string, error) {
	img := image.NewRGBA(image.Rect(0, 0, summaryWidth, summaryHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(summaryBackground), image.Point{}, draw.Src)

	r.drawCentered(img, "Country Data Summary", 60, summaryWhite)
	r.drawCentered(img, fmt.Sprintf("Total Countries: %d", totalCountries), 120, summaryGreen)
	r.drawText(img, "Top 5 Countries by Estimated GDP:", 50, 180, summaryWhite)

	y := 220
	for i, country := range top {
		gdpValue := "N/A"
		if country.EstimatedGdp != nil {
			gdpValue = r.printer.Sprintf("%.2f", *country.EstimatedGdp)
		}
		r.drawText(img, fmt.Sprintf("%d.", i+1), 70, y, summaryGreen)
		r.drawText(img, country.Name, 110, y, summaryGrey)
		r.drawText(img, "$"+gdpValue, 450, y, summaryGold)
		y += 50
	}

	r.drawCentered(img, "Last Refreshed: "+lastRefreshed.UTC().Format(time.RFC3339), summaryHeight-40, summaryMuted)

	if err := os.MkdirAll(r.cacheDir, 0755); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}

	path := r.ImagePath()
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating summary image: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("encoding summary image: %w", err)
	}

	return path, nil
}

func (r *SummaryRenderer) drawText(img *image.RGBA, text string, x, y int, col color.Color) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func (r *SummaryRenderer) drawCentered(img *image.RGBA, text string, y int, col color.Color) {
	width := font.MeasureString(basicfont.Face7x13, text).Ceil()
	r.drawText(img, text, (summaryWidth-width)/2, y, col)
}
