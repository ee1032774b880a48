package improver

import "cv-improver/internal/i18n"

// KeyStatus is the API-key manager state.
type KeyStatus string

const (
	KeyNone       KeyStatus = "no_key"
	KeyValidating KeyStatus = "validating"
	KeyValid      KeyStatus = "valid"
	KeyInvalid    KeyStatus = "invalid"
)

// LabelKeys are the catalog keys of every labeled text node on the page.
var LabelKeys = []string{
	"title",
	"input_header",
	"input_subheader",
	"improve_button",
	"output_header",
	"download_pdf_button",
	"loading_text",
	"footer_text",
	"import_button",
	"settings_button",
	"settings_title",
	"settings_subheader",
	"api_key_label",
	"clear_key_button",
	"close_button",
}

const (
	placeholderKey    = "cv_input_placeholder"
	keyPlaceholderKey = "api_key_placeholder"
	saveLabelKey      = "save_key_button"
	validatingKey     = "validating_text"
	validLabelKey     = "key_valid_text"
)

// Settings is the settings overlay.
type Settings struct {
	Open         bool      `json:"open"`
	Field        string    `json:"field"`
	Placeholder  string    `json:"placeholder"`
	Error        string    `json:"error,omitempty"`
	SaveLabel    string    `json:"saveLabel"`
	SaveDisabled bool      `json:"saveDisabled"`
	Status       KeyStatus `json:"status"`
	// Settling is set while a successful validation waits out the hold.
	Settling bool `json:"settling"`
}

// State is everything the page shows for one session.
type State struct {
	Locale         i18n.Locale          `json:"locale"`
	Lang           string               `json:"lang"`
	Dir            string               `json:"dir"`
	Labels         map[string]string    `json:"labels"`
	Placeholder    string               `json:"placeholder"`
	ActiveLocale   map[i18n.Locale]bool `json:"activeLocale"`
	Draft          string               `json:"draft"`
	Result         string               `json:"result"`
	Error          string               `json:"error,omitempty"`
	Loading        bool                 `json:"loading"`
	ImproveEnabled bool                 `json:"improveEnabled"`
	ExportEnabled  bool                 `json:"exportEnabled"`
	Settings       Settings             `json:"settings"`
	InFlight       bool                 `json:"-"`
}

// clone returns a copy that shares no maps with s.
func (s State) clone() State {
	out := s
	out.Labels = make(map[string]string, len(s.Labels))
	for k, v := range s.Labels {
		out.Labels[k] = v
	}
	out.ActiveLocale = make(map[i18n.Locale]bool, len(s.ActiveLocale))
	for k, v := range s.ActiveLocale {
		out.ActiveLocale[k] = v
	}
	return out
}

func newState() State {
	labels := make(map[string]string, len(LabelKeys))
	for _, k := range LabelKeys {
		labels[k] = ""
	}
	return State{
		Labels:       labels,
		ActiveLocale: make(map[i18n.Locale]bool, 2),
		Settings:     Settings{Status: KeyNone},
	}
}
