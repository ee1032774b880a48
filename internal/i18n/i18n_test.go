package i18n

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatalogLocalesShareKeySet(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	ar := c.Keys(Arabic)
	en := c.Keys(English)
	sort.Strings(ar)
	sort.Strings(en)
	require.Equal(t, en, ar)
	require.Contains(t, en, "improve_button")
	require.Contains(t, en, "error_empty_input")
}

func TestLookupKnownAndUnknown(t *testing.T) {
	c := MustNew()

	s, ok := c.Lookup(English, "title")
	require.True(t, ok)
	require.Equal(t, "AI CV Improver", s)

	s, ok = c.Lookup(Arabic, "title")
	require.True(t, ok)
	require.Equal(t, "محسن السيرة الذاتية بالذكاء الاصطناعي", s)

	_, ok = c.Lookup(English, "no_such_key")
	require.False(t, ok)
	require.Equal(t, "no_such_key", c.Text(English, "no_such_key"))
}

func TestRelabelLeavesUnknownKeys(t *testing.T) {
	c := MustNew()
	labels := map[string]string{
		"improve_button": "old",
		"custom_widget":  "keep me",
	}

	c.Relabel(English, labels)

	require.Equal(t, "✨ Improve CV", labels["improve_button"])
	require.Equal(t, "keep me", labels["custom_widget"])
}

func TestFormatInterpolatesMessage(t *testing.T) {
	c := MustNew()

	got := c.Format(English, "error_api", map[string]any{"Message": "quota exceeded"})
	require.Equal(t, "Error calling the API: quota exceeded", got)

	got = c.Format(Arabic, "error_api", map[string]any{"Message": "quota exceeded"})
	require.Contains(t, got, "quota exceeded")

	require.Equal(t, "missing", c.Format(English, "missing", nil))
}

func TestParseLocale(t *testing.T) {
	tests := []struct {
		raw  string
		want Locale
	}{
		{raw: "ar", want: Arabic},
		{raw: "EN", want: English},
		{raw: "en-US", want: English},
		{raw: "ar-EG", want: Arabic},
	}
	for _, tt := range tests {
		got, err := ParseLocale(tt.raw)
		require.NoError(t, err, tt.raw)
		require.Equal(t, tt.want, got)
	}

	for _, raw := range []string{"", "fr", "zz-top!"} {
		_, err := ParseLocale(raw)
		require.True(t, errors.Is(err, ErrUnsupportedLocale), "expected unsupported for %q", raw)
	}
}

func TestDirection(t *testing.T) {
	require.Equal(t, RTL, Direction(Arabic))
	require.Equal(t, LTR, Direction(English))
}
