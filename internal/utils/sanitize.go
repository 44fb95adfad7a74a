package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

// SanitizeText strips all markup from user-supplied free text (bios, recipe
// descriptions, comments).
func SanitizeText(input string) string {
	return strings.TrimSpace(textPolicy.Sanitize(input))
}
