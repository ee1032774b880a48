// Package i18n holds the localized UI string table for the supported locales.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localeFiles embed.FS

// Locale is one of the supported display languages.
type Locale string

const (
	Arabic  Locale = "ar"
	English Locale = "en"

	// Default is the locale a fresh session starts in.
	Default = Arabic
)

// Direction values for the document "dir" attribute.
const (
	RTL = "rtl"
	LTR = "ltr"
)

// ErrUnsupportedLocale is returned for codes outside the supported set.
var ErrUnsupportedLocale = errors.New("unsupported locale")

// Supported returns the supported locales in selector order.
func Supported() []Locale {
	return []Locale{Arabic, English}
}

// ParseLocale maps a language code or BCP-47 tag onto a supported locale.
func ParseLocale(raw string) (Locale, error) {
	tag, err := language.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLocale, raw)
	}
	base, _ := tag.Base()
	for _, l := range Supported() {
		if base.String() == string(l) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLocale, raw)
}

// Direction returns the text direction for the locale.
func Direction(l Locale) string {
	if l == Arabic {
		return RTL
	}
	return LTR
}

// Catalog is the locale x key -> display string mapping.
type Catalog struct {
	bundle     *goi18n.Bundle
	tables     map[Locale]map[string]string
	localizers map[Locale]*goi18n.Localizer
}

// New loads the embedded message files.
func New() (*Catalog, error) {
	bundle := goi18n.NewBundle(language.Arabic)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	c := &Catalog{
		bundle:     bundle,
		tables:     make(map[Locale]map[string]string),
		localizers: make(map[Locale]*goi18n.Localizer),
	}
	for _, l := range Supported() {
		file, err := bundle.LoadMessageFileFS(localeFiles, "locales/messages."+string(l)+".toml")
		if err != nil {
			return nil, fmt.Errorf("load %s messages: %w", l, err)
		}
		table := make(map[string]string, len(file.Messages))
		for _, msg := range file.Messages {
			table[msg.ID] = msg.Other
		}
		c.tables[l] = table
		c.localizers[l] = goi18n.NewLocalizer(bundle, string(l))
	}
	return c, nil
}

// MustNew is New for package initialization paths where the embedded files are known good.
func MustNew() *Catalog {
	c, err := New()
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the raw string for key, reporting whether it exists for the locale.
func (c *Catalog) Lookup(l Locale, key string) (string, bool) {
	table, ok := c.tables[l]
	if !ok {
		return "", false
	}
	s, ok := table[key]
	return s, ok
}

// Text returns the string for key, or the key itself when missing.
func (c *Catalog) Text(l Locale, key string) string {
	if s, ok := c.Lookup(l, key); ok {
		return s
	}
	return key
}

// Format renders a templated message. Missing keys or template errors fall
// back to the raw table entry, then to the key.
func (c *Catalog) Format(l Locale, key string, data map[string]any) string {
	raw, ok := c.Lookup(l, key)
	if !ok {
		return key
	}
	out, err := c.localizers[l].Localize(&goi18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		return raw
	}
	return out
}

// Relabel rewrites every entry of labels that the locale defines. Keys the
// table does not know keep their current text.
func (c *Catalog) Relabel(l Locale, labels map[string]string) {
	for key := range labels {
		if s, ok := c.Lookup(l, key); ok {
			labels[key] = s
		}
	}
}

// Keys returns the keys defined for the locale.
func (c *Catalog) Keys(l Locale) []string {
	table := c.tables[l]
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	return keys
}
