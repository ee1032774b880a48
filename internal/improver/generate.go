package improver

import (
	"context"
	"errors"
	"strings"
	"time"

	"cv-improver/internal/credentials"
	"cv-improver/internal/llm"
	"cv-improver/internal/prompt"
	"cv-improver/internal/shared/metrics"
	"cv-improver/internal/shared/telemetry"
)

// Improve sends the trimmed draft to the provider and stores the result.
// Blank drafts and missing credentials fail before any network call. A call
// made while another generation is in flight returns ErrBusy and changes nothing.
func (s *Session) Improve(ctx context.Context, rawText string) (string, error) {
	text := strings.TrimSpace(rawText)

	s.mu.Lock()
	s.state.Draft = rawText
	if text == "" {
		s.state.Error = s.text("error_empty_input")
		s.mu.Unlock()
		return "", ErrEmptyInput
	}
	if s.state.InFlight {
		s.mu.Unlock()
		return "", ErrBusy
	}
	s.mu.Unlock()

	key, err := s.deps.Store.Get(ctx, s.id)
	if err != nil && !errors.Is(err, credentials.ErrNotFound) {
		telemetry.Error("credentials.read_failed", map[string]any{"session": s.logID(), "error": err})
	}
	if err != nil || key == "" {
		s.mu.Lock()
		s.state.Error = s.text("error_missing_key")
		s.state.ImproveEnabled = false
		s.state.Settings.Open = true
		s.mu.Unlock()
		return "", ErrMissingCredential
	}

	s.mu.Lock()
	if s.state.InFlight {
		s.mu.Unlock()
		return "", ErrBusy
	}
	st := &s.state
	st.InFlight = true
	st.Loading = true
	st.Error = ""
	st.Result = ""
	st.ExportEnabled = false
	locale := st.Locale
	s.mu.Unlock()

	promptText := prompt.Build(text, locale)
	metrics.IncGenerationStarted()
	start := time.Now()
	out, genErr := s.deps.Provider.Generate(ctx, promptText, key)
	elapsed := time.Since(start)
	metrics.ObserveGenerationDuration(elapsed)

	s.mu.Lock()
	defer s.mu.Unlock()
	st.InFlight = false
	st.Loading = false

	fields := map[string]any{
		"session":     s.logID(),
		"locale":      locale,
		"prompt_hash": prompt.Hash(promptText),
		"duration_ms": elapsed.Milliseconds(),
	}
	if genErr != nil {
		metrics.IncGenerationFailed()
		fields["kind"] = llm.KindOf(genErr)
		fields["error"] = genErr
		telemetry.Warn("improve.failed", fields)
		st.Error = s.errorText(genErr)
		return "", genErr
	}

	metrics.IncGenerationCompleted()
	telemetry.Info("improve.completed", fields)
	st.Result = out
	st.ExportEnabled = strings.TrimSpace(out) != ""
	return out, nil
}

// errorText maps a generation failure onto the banner text for the active locale.
func (s *Session) errorText(err error) string {
	locale := s.state.Locale
	if llm.KindOf(err) == llm.MalformedResponse {
		return s.text("error_malformed")
	}
	msg := strings.TrimSpace(llm.MessageOf(err))
	if msg == "" {
		return s.text("error_unknown")
	}
	return s.deps.Catalog.Format(locale, "error_api", map[string]any{"Message": msg})
}
