package export

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/go-pdf/fpdf"

	"cv-improver/internal/i18n"
)

const (
	fontFamily   = "cvfont"
	bodySize     = 11.0
	titleSize    = 16.0
	lineHeightIn = 0.22
)

// defaultFont covers Latin and Arabic, including the Arabic presentation
// forms the shaper emits.
//
//go:embed fonts/DejaVuSansCondensed.ttf
var defaultFont []byte

// PDFRenderer writes documents as text PDFs with fpdf.
type PDFRenderer struct {
	layout Layout
	font   []byte
}

// NewPDFRenderer uses the TTF at fontPath when set, otherwise the embedded
// DejaVu Sans Condensed.
func NewPDFRenderer(layout Layout, fontPath string) (*PDFRenderer, error) {
	r := &PDFRenderer{layout: layout, font: defaultFont}
	if path := strings.TrimSpace(fontPath); path != "" {
		font, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read EXPORT_FONT_PATH: %w", err)
		}
		r.font = font
	}
	return r, nil
}

// Render lays the text out top to bottom, adding pages as needed. Right to
// left locales are shaped, reordered per line and right aligned.
func (r *PDFRenderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	layout := r.layout
	orientation := "P"
	if strings.EqualFold(layout.Orientation, "landscape") {
		orientation = "L"
	}

	pdf := fpdf.New(orientation, layout.Unit, layout.PageSize, "")
	pdf.SetMargins(layout.MarginIn, layout.MarginIn, layout.MarginIn)
	pdf.SetAutoPageBreak(true, layout.MarginIn)
	pdf.SetCreator("cv-improver", true)
	pdf.SetTitle(doc.Title, true)
	pdf.AddUTF8FontFromBytes(fontFamily, "", r.font)

	pageW, _ := pdf.GetPageSize()
	w := &lineWriter{
		pdf:   pdf,
		width: pageW - 2*layout.MarginIn,
		rtl:   i18n.Direction(doc.Locale) == i18n.RTL,
	}

	pdf.AddPage()
	if title := strings.TrimSpace(doc.Title); title != "" {
		pdf.SetFont(fontFamily, "", titleSize)
		w.paragraph(title, lineHeightIn*1.5)
		pdf.Ln(lineHeightIn)
	}
	pdf.SetFont(fontFamily, "", bodySize)
	for _, line := range strings.Split(doc.Text, "\n") {
		if strings.TrimSpace(line) == "" {
			pdf.Ln(lineHeightIn)
			continue
		}
		w.paragraph(line, lineHeightIn)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type lineWriter struct {
	pdf   *fpdf.Fpdf
	width float64
	rtl   bool
}

// paragraph wraps one logical line in reading order, then draws each wrapped
// row in visual order.
func (w *lineWriter) paragraph(text string, h float64) {
	align := "L"
	if w.rtl {
		align = "R"
	}
	shaped := shapeArabic(printable(text))
	for _, row := range w.pdf.SplitText(shaped, w.width) {
		w.pdf.CellFormat(0, h, visualOrder(row, w.rtl), "", 1, align, false, 0, "")
	}
}

// printable keeps text within what fpdf can measure: tabs become spaces and
// runes outside the Basic Multilingual Plane are replaced.
func printable(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t':
			return ' '
		case r > 0xFFFF:
			return '?'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}

var _ Renderer = (*PDFRenderer)(nil)
