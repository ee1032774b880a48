// Package improver owns the per-session application state: active locale,
// API-key manager, generation flow and export gating.
package improver

import (
	"sync"
	"time"

	"cv-improver/internal/credentials"
	"cv-improver/internal/i18n"
	"cv-improver/internal/llm"
	"cv-improver/internal/shared/util"
)

// DefaultSettleHold is how long a successful validation stays visible
// before the settings overlay closes.
const DefaultSettleHold = 1500 * time.Millisecond

// Deps are the collaborators shared by all sessions. A zero SettleHold means
// DefaultSettleHold; a negative one leaves Settle to the caller.
type Deps struct {
	Catalog    *i18n.Catalog
	Store      credentials.Store
	Provider   llm.Provider
	SettleHold time.Duration
}

// Session is one browser's application state. All methods are safe for
// concurrent use; provider calls run without holding the lock.
type Session struct {
	id   string
	deps Deps

	mu           sync.Mutex
	state        State
	saveLabelKey string
	settleTimer  *time.Timer
	lastSeen     time.Time
}

// NewSession builds a session in the default locale. Callers run
// CheckAPIKey before first use.
func NewSession(id string, deps Deps) *Session {
	if deps.SettleHold == 0 {
		deps.SettleHold = DefaultSettleHold
	}
	s := &Session{
		id:           id,
		deps:         deps,
		state:        newState(),
		saveLabelKey: saveLabelKey,
		lastSeen:     time.Now(),
	}
	s.applyLanguage(i18n.Default)
	return s
}

// ID returns the owner id used for credential storage.
func (s *Session) ID() string {
	return s.id
}

// State returns a snapshot of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Locale returns the active locale.
func (s *Session) Locale() i18n.Locale {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Locale
}

// SetLanguage switches locale and direction and relabels every text node.
// Calling it again with the same locale leaves the state unchanged.
func (s *Session) SetLanguage(locale i18n.Locale) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLanguage(locale)
}

// SetDraft records the draft text as entered.
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Draft = text
}

func (s *Session) applyLanguage(locale i18n.Locale) {
	st := &s.state
	st.Locale = locale
	st.Lang = string(locale)
	st.Dir = i18n.Direction(locale)
	s.deps.Catalog.Relabel(locale, st.Labels)
	if v, ok := s.deps.Catalog.Lookup(locale, placeholderKey); ok {
		st.Placeholder = v
	}
	if v, ok := s.deps.Catalog.Lookup(locale, keyPlaceholderKey); ok {
		st.Settings.Placeholder = v
	}
	if v, ok := s.deps.Catalog.Lookup(locale, s.saveLabelKey); ok {
		st.Settings.SaveLabel = v
	}
	for _, l := range i18n.Supported() {
		st.ActiveLocale[l] = l == locale
	}
}

// ShowError puts the localized message for key in the error banner.
func (s *Session) ShowError(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = s.text(key)
}

func (s *Session) text(key string) string {
	return s.deps.Catalog.Text(s.state.Locale, key)
}

func (s *Session) setSaveLabel(key string) {
	s.saveLabelKey = key
	s.state.Settings.SaveLabel = s.text(key)
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopSettleLocked()
}

// logID identifies the session in logs without exposing the cookie value.
func (s *Session) logID() string {
	return util.HashOwner(s.id)[:12]
}
