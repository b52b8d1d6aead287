package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.StrictPolicy()

// Sanitize strips all HTML from input.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}

// IsPlainText reports whether input survives sanitisation unchanged, i.e. it contains nothing
// a browser would interpret as markup or an entity.
func IsPlainText(input string) bool {
	return Sanitize(input) == input
}
