package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// StrictPolicy removes all HTML tags and attributes.
	// Used for titles, names, addresses and cities.
	StrictPolicy = bluemonday.StrictPolicy()

	// UGCPolicy keeps basic formatting and drops scripts, frames and event handlers.
	// Used for event descriptions.
	UGCPolicy = bluemonday.UGCPolicy()
)

// Text strips all HTML tags and surrounding whitespace and returns plain text.
// Entities produced by the policy are decoded so "Art & Design" stays as typed.
func Text(input string) string {
	return strings.TrimSpace(html.UnescapeString(StrictPolicy.Sanitize(input)))
}

// HTML sanitizes HTML content, allowing safe formatting tags.
func HTML(input string) string {
	return strings.TrimSpace(UGCPolicy.Sanitize(input))
}

// OptionalHTML applies HTML to a nullable field, keeping nil as nil.
func OptionalHTML(input *string) *string {
	if input == nil {
		return nil
	}
	s := HTML(*input)
	return &s
}
