// Package export renders the improved CV as a downloadable PDF.
package export

import (
	"context"

	"cv-improver/internal/i18n"
)

const (
	filenameAR = "سيرة_ذاتية_محسنة.pdf"
	filenameEN = "Improved_CV.pdf"
)

// Layout describes the page setup of an export.
type Layout struct {
	// MarginIn is applied on all four sides, in inches.
	MarginIn float64
	// ImageQuality and Scale apply to renderers that rasterize the output.
	ImageQuality float64
	Scale        float64
	PageSize     string
	Orientation  string
	Unit         string
}

// DefaultLayout is the fixed export layout: 0.75in margins on portrait A4.
func DefaultLayout() Layout {
	return Layout{
		MarginIn:     0.75,
		ImageQuality: 0.98,
		Scale:        2,
		PageSize:     "A4",
		Orientation:  "portrait",
		Unit:         "in",
	}
}

// Document is the content handed to a renderer.
type Document struct {
	Title  string
	Text   string
	Locale i18n.Locale
}

// Renderer produces a downloadable file for a document.
type Renderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
}

// Filename returns the download name for the locale.
func Filename(locale i18n.Locale) string {
	if locale == i18n.Arabic {
		return filenameAR
	}
	return filenameEN
}
