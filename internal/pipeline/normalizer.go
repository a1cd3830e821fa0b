// Package pipeline maps raw per-site extractions into canonical job records
// and drives the scrape, normalize, persist, publish control flow.
package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"jobharvest/internal/identity"
	"jobharvest/internal/normalize"
	"jobharvest/internal/scraper"
	"jobharvest/pkg/models"
)

// ErrMalformed marks a raw listing that lacks the minimum identity signal
// (title and link). Such listings are dropped with a diagnostic, never
// persisted with empty identity fields.
var ErrMalformed = errors.New("malformed listing: missing title or link")

// Normalizer maps one source's raw extractions into the canonical record
// shape. Implementations apply the shared field-precedence policy: detail
// values over card values, structured values over free text, and empty
// string (never absent) as the final fallback.
type Normalizer interface {
	Source() string
	Normalize(role string, listing scraper.RawListing, detail *scraper.RawDetail) (*models.JobRecord, error)
}

// Normalizers returns the registered per-source normalizers.
func Normalizers() map[string]Normalizer {
	return map[string]Normalizer{
		"indeed": NewIndeedNormalizer(),
		"rozee":  NewRozeeNormalizer(),
		"jobz":   NewJobzNormalizer(),
	}
}

// newBaseRecord validates the listing and builds the record skeleton common
// to every source: identity, role, card-level fields, timestamps.
func newBaseRecord(source, role string, listing scraper.RawListing) (*models.JobRecord, error) {
	title := normalize.Clean(listing.Title)
	link := normalize.Clean(listing.Link)
	if title == "" || link == "" {
		return nil, fmt.Errorf("%w (title=%q link=%q)", ErrMalformed, title, link)
	}

	record := models.NewJobRecord(source, role)
	record.JobID = identity.Resolve(source, link)
	record.JobRole = title
	record.CompanyName = normalize.Clean(listing.Company)
	record.Location = normalize.Clean(listing.Location)
	record.DetailURL = link
	record.ApplyNowURL = link
	record.Salary = normalize.Clean(listing.SalaryHint)
	record.PostedAt = normalize.Clean(listing.PostedHint)
	record.JobDescription = normalize.Clean(listing.Snippet)
	return record, nil
}

// preferClean returns the first value that survives cleaning.
func preferClean(values ...string) string {
	for _, v := range values {
		if cleaned := normalize.Clean(v); cleaned != "" {
			return cleaned
		}
	}
	return ""
}

// preferText is preferClean for multi-line text: it only trims, keeping the
// internal line structure of descriptions intact.
func preferText(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
