// Package identity derives stable, site-namespaced job identifiers from
// listing URLs. Identifiers are the sole deduplication key, so the resolver
// prefers deterministic URL-derived tokens and only manufactures a random
// one when the URL carries no signal at all.
package identity

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// MaxSanitizedTokenLen bounds the tail kept from a sanitized URL token.
const MaxSanitizedTokenLen = 40

// sourceRules describes where a source embeds its native listing id.
type sourceRules struct {
	// query parameters conventionally carrying the listing id, in
	// precedence order
	queryParams []string
	// pattern whose first capture group is a numeric id embedded in the URL
	urlPattern *regexp.Regexp
	// whether the last path segment is a trustworthy id on its own
	trustPathSegment bool
}

var rules = map[string]sourceRules{
	"indeed": {
		queryParams:      []string{"vjk", "jk"},
		trustPathSegment: true,
	},
	"jobz": {
		urlPattern: regexp.MustCompile(`(?i)jobs?-([0-9]+)`),
	},
	"rozee": {},
}

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)
	schemePrefix    = regexp.MustCompile(`(?i)^https?://`)
)

// Resolve returns "<source>-<token>" for a listing URL. It falls through
// three tiers: a structural token native to the source, a sanitized form of
// the URL itself, and finally a random suffix. The random tier defeats
// deduplication for that record and is kept as a last resort only.
func Resolve(source, rawURL string) string {
	if token := structuralToken(source, rawURL); token != "" {
		return source + "-" + token
	}
	if token := SanitizeToken(rawURL); token != "" {
		return source + "-" + token
	}
	return source + "-" + uuid.New().String()
}

func structuralToken(source, rawURL string) string {
	if rawURL == "" {
		return ""
	}

	r := rules[source]

	if r.urlPattern != nil {
		if m := r.urlPattern.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	for _, param := range r.queryParams {
		if v := parsed.Query().Get(param); v != "" {
			return v
		}
	}

	if r.trustPathSegment {
		segments := strings.Split(parsed.Path, "/")
		for i := len(segments) - 1; i >= 0; i-- {
			if segments[i] != "" {
				return segments[i]
			}
		}
	}

	return ""
}

// SanitizeToken strips the scheme, collapses non-alphanumeric runs into
// single dashes, trims leading/trailing dashes and keeps a bounded-length
// suffix. Returns "" when nothing survives.
func SanitizeToken(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	token := schemePrefix.ReplaceAllString(rawURL, "")
	token = nonAlphanumeric.ReplaceAllString(token, "-")
	token = strings.Trim(token, "-")
	if len(token) > MaxSanitizedTokenLen {
		token = token[len(token)-MaxSanitizedTokenLen:]
		token = strings.TrimLeft(token, "-")
	}
	return token
}
