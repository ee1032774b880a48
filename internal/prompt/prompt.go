// Package prompt builds the generation instruction sent to the model.
package prompt

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"strings"

	"cv-improver/internal/i18n"
)

const textPlaceholder = "{{CV_TEXT}}"

var (
	//go:embed prompts/cv_ar.txt
	templateAR string
	//go:embed prompts/cv_en.txt
	templateEN string
)

// Template returns the prompt template for the locale. Unknown locales use English.
func Template(locale i18n.Locale) string {
	if locale == i18n.Arabic {
		return templateAR
	}
	return templateEN
}

// Build embeds rawText verbatim into the locale's template.
func Build(rawText string, locale i18n.Locale) string {
	return strings.Replace(Template(locale), textPlaceholder, rawText, 1)
}

// Hash returns a stable digest of a prompt so requests can be correlated in
// logs without writing résumé text.
func Hash(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
