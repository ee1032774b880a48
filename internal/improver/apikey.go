package improver

import (
	"context"
	"errors"
	"strings"
	"time"

	"cv-improver/internal/credentials"
	"cv-improver/internal/llm"
	"cv-improver/internal/shared/metrics"
	"cv-improver/internal/shared/telemetry"
)

// CheckAPIKey reads the stored credential and gates the improve action on it.
// Without a key the settings overlay opens; with one the field is pre-filled.
func (s *Session) CheckAPIKey(ctx context.Context) error {
	key, err := s.deps.Store.Get(ctx, s.id)
	present := err == nil && key != ""
	readFailed := err != nil && !errors.Is(err, credentials.ErrNotFound)

	s.mu.Lock()
	st := &s.state
	switch {
	case readFailed:
		// Unknown until the store answers; the next check decides the overlay.
		st.ImproveEnabled = false
	case present:
		st.ImproveEnabled = true
		st.Settings.Field = key
		if st.Settings.Status != KeyValidating {
			st.Settings.Status = KeyValid
		}
	default:
		st.ImproveEnabled = false
		st.Settings.Open = true
		if st.Settings.Status == KeyValid {
			st.Settings.Status = KeyNone
		}
	}
	s.mu.Unlock()

	if readFailed {
		telemetry.Error("credentials.read_failed", map[string]any{"session": s.logID(), "error": err})
		return err
	}
	return nil
}

// ValidateAndSaveAPIKey checks candidate against the provider and stores it
// on success. A blank candidate is ignored. On failure any stored key is
// removed and the provider's message is shown next to the field.
func (s *Session) ValidateAndSaveAPIKey(ctx context.Context, candidate string) error {
	key := strings.TrimSpace(candidate)
	if key == "" {
		return nil
	}

	s.mu.Lock()
	if s.state.Settings.Status == KeyValidating {
		s.mu.Unlock()
		return ErrBusy
	}
	s.stopSettleLocked()
	s.state.Settings.Status = KeyValidating
	s.state.Settings.SaveDisabled = true
	s.state.Settings.Error = ""
	s.state.Settings.Field = candidate
	s.setSaveLabel(validatingKey)
	s.mu.Unlock()

	fallbackKey := "error_key_invalid"
	err := s.deps.Provider.ValidateCredential(ctx, key)
	if err == nil {
		if err = s.deps.Store.Set(ctx, s.id, key); err != nil {
			telemetry.Error("credentials.write_failed", map[string]any{"session": s.logID(), "error": err})
			err = &llm.Error{Kind: llm.CredentialInvalid, Err: err}
			fallbackKey = "error_unknown"
		}
	}
	metrics.IncValidation(err == nil)

	if err != nil {
		if rmErr := s.deps.Store.Remove(ctx, s.id); rmErr != nil {
			telemetry.Error("credentials.remove_failed", map[string]any{"session": s.logID(), "error": rmErr})
		}
		telemetry.Warn("apikey.invalid", map[string]any{
			"session": s.logID(),
			"kind":    llm.KindOf(err),
			"status":  statusOf(err),
		})

		s.mu.Lock()
		msg := strings.TrimSpace(llm.MessageOf(err))
		if msg == "" {
			msg = s.text(fallbackKey)
		}
		s.state.Settings.Status = KeyInvalid
		s.state.Settings.Error = msg
		s.state.Settings.SaveDisabled = false
		s.setSaveLabel(saveLabelKey)
		s.mu.Unlock()

		_ = s.CheckAPIKey(ctx)
		return err
	}

	s.mu.Lock()
	s.state.Settings.Status = KeyValid
	s.state.Settings.Field = key
	s.state.Settings.Settling = true
	s.state.ImproveEnabled = true
	s.setSaveLabel(validLabelKey)
	if hold := s.deps.SettleHold; hold > 0 {
		s.settleTimer = time.AfterFunc(hold, func() {
			_ = s.Settle(context.Background())
		})
	}
	s.mu.Unlock()
	telemetry.Info("apikey.saved", map[string]any{"session": s.logID()})
	return nil
}

// Settle finishes a successful validation: closes the overlay, refreshes
// gating and restores the save control. It does nothing unless a validation
// is settling.
func (s *Session) Settle(ctx context.Context) error {
	s.mu.Lock()
	if !s.state.Settings.Settling {
		s.mu.Unlock()
		return nil
	}
	s.stopSettleLocked()
	s.state.Settings.Open = false
	s.state.Settings.Error = ""
	s.state.Settings.SaveDisabled = false
	s.setSaveLabel(saveLabelKey)
	s.mu.Unlock()

	return s.CheckAPIKey(ctx)
}

// OpenSettings shows the settings overlay.
func (s *Session) OpenSettings() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Settings.Open = true
	s.state.Settings.Error = ""
}

// CloseSettings hides the overlay and clears the validation error. The
// stored credential is untouched.
func (s *Session) CloseSettings() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Settings.Open = false
	s.state.Settings.Error = ""
}

// ClearAPIKey removes the stored credential.
func (s *Session) ClearAPIKey(ctx context.Context) error {
	if err := s.deps.Store.Remove(ctx, s.id); err != nil {
		return err
	}
	s.mu.Lock()
	s.stopSettleLocked()
	s.state.Settings.Field = ""
	s.state.Settings.Error = ""
	s.state.Settings.Status = KeyNone
	s.state.Settings.SaveDisabled = false
	s.setSaveLabel(saveLabelKey)
	s.mu.Unlock()
	return s.CheckAPIKey(ctx)
}

func (s *Session) stopSettleLocked() {
	s.state.Settings.Settling = false
	if s.settleTimer != nil {
		s.settleTimer.Stop()
		s.settleTimer = nil
	}
}

func statusOf(err error) int {
	var e *llm.Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}
