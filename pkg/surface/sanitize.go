package surface

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	contentPolicyOnce sync.Once
	contentPolicy     *bluemonday.Policy
)

// Sanitize neutralizes rich content before it is measured. Script and style
// blocks are removed with their contents, inline event handlers are dropped
// and only http, https and mailto URLs survive.
func Sanitize(markup string) string {
	return contentSanitizer().Sanitize(markup)
}

func contentSanitizer() *bluemonday.Policy {
	contentPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.SkipElementsContent("script", "style", "template", "noscript", "iframe", "object", "embed")
		policy.AllowURLSchemes("http", "https", "mailto")
		policy.RequireParseableURLs(true)
		contentPolicy = policy
	})
	return contentPolicy
}
