package security

import (
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// MaxReviewLength caps review text after sanitizing, in runes.
const MaxReviewLength = 5000

var htmlPolicy = bluemonday.StrictPolicy()

// SanitizeString trims whitespace, drops null bytes and cuts the input to
// maxRunes without splitting a character.
func SanitizeString(input string, maxRunes int) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")

	if maxRunes > 0 && utf8.RuneCountInString(input) > maxRunes {
		input = string([]rune(input)[:maxRunes])
	}
	return input
}

// SanitizeHTML removes all HTML tags
func SanitizeHTML(input string) string {
	return htmlPolicy.Sanitize(input)
}

// SanitizeReview strips markup from review text. An all-markup review
// comes back empty and is then rejected by model validation.
func SanitizeReview(content string) string {
	return SanitizeString(SanitizeHTML(content), MaxReviewLength)
}
