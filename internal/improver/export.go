package improver

import (
	"context"

	"cv-improver/internal/export"
	"cv-improver/internal/shared/metrics"
	"cv-improver/internal/shared/telemetry"
)

// Exported is a rendered download.
type Exported struct {
	Filename string
	Data     []byte
}

// Export renders the current result with renderer. Renderer failures are
// logged and shown in the error banner.
func (s *Session) Export(ctx context.Context, renderer export.Renderer) (Exported, error) {
	s.mu.Lock()
	if !s.state.ExportEnabled || s.state.Result == "" {
		s.mu.Unlock()
		return Exported{}, ErrExportDisabled
	}
	doc := export.Document{
		Title:  s.state.Labels["output_header"],
		Text:   s.state.Result,
		Locale: s.state.Locale,
	}
	s.mu.Unlock()

	data, err := renderer.Render(ctx, doc)
	metrics.IncExport(err == nil)
	if err != nil {
		telemetry.Error("export.failed", map[string]any{"session": s.logID(), "error": err})
		s.mu.Lock()
		s.state.Error = s.text("error_export_failed")
		s.mu.Unlock()
		return Exported{}, err
	}
	return Exported{Filename: export.Filename(doc.Locale), Data: data}, nil
}
