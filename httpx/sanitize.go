package httpx

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/mbolis/recruit/model"
)

var (
	strictOnce   sync.Once
	strictPolicy *bluemonday.Policy
)

func policy() *bluemonday.Policy {
	strictOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// Sanitize strips every HTML tag from s and trims surrounding space. The
// result is plain text: entities are decoded again, output escapes it.
func Sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(policy().Sanitize(s)))
}

// SanitizeResponses returns a copy of responses with every answer sanitized.
func SanitizeResponses(responses model.Responses) model.Responses {
	out := make(model.Responses, len(responses))
	for id, v := range responses {
		out[id] = Sanitize(v)
	}
	return out
}
