package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Text strips all HTML from user-supplied text and trims surrounding
// whitespace. Team names, task titles and descriptions pass through
// here before hitting the store.
func Text(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}
