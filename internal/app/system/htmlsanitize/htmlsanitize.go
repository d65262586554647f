// Package htmlsanitize strips unsafe markup from user-authored rich
// text (course and lecture descriptions) before it is stored.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.UGCPolicy()

// Sanitize returns s with scripts, event handlers, and javascript:
// URLs removed. Standard user-generated-content tags (p, strong, em,
// lists, links) survive.
func Sanitize(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}
