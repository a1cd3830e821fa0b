// Package normalize provides pure text-cleaning helpers applied to every
// scraped field before it is stored, compared, or used as part of an
// identifier.
package normalize

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nbspEntity    = strings.NewReplacer(" ", " ", "&nbsp;", " ")

	// Application-instructions boilerplate that Indeed renders into the
	// metadata footer where the posting date normally appears.
	altApplicationText = regexp.MustCompile(`(?i)if you require alternative methods`)

	benefitsHeading    = regexp.MustCompile(`(?i)^benefits$`)
	benefitsPulledNote = regexp.MustCompile(`(?i)pulled from the full job description`)

	listSeparator = regexp.MustCompile(`[,;\n]`)
)

// Clean collapses whitespace runs, converts non-breaking spaces to regular
// spaces and trims the result. Empty input yields the empty string.
func Clean(value string) string {
	if value == "" {
		return ""
	}
	cleaned := nbspEntity.Replace(value)
	cleaned = whitespaceRun.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// CleanAll applies Clean to every entry and drops the ones that come out
// empty, preserving order.
func CleanAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if cleaned := Clean(v); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

// PostedAt prefers the detail-page posting date unless it is application
// boilerplate, falling back to the search-card hint.
func PostedAt(primary, fallback string) string {
	if primary != "" && !altApplicationText.MatchString(primary) {
		return primary
	}
	return fallback
}

// BulletSection renders a headed bullet list ("Title:\n- item"). Entries
// that clean to empty are skipped; an empty list yields the empty string.
func BulletSection(title string, items []string) string {
	cleaned := CleanAll(items)
	if len(cleaned) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(title)
	b.WriteString(":")
	for _, item := range cleaned {
		b.WriteString("\n- ")
		b.WriteString(item)
	}
	return b.String()
}

// JoinSections concatenates non-empty sections with blank-line separators.
// When every section is empty the snippet fallback is returned instead.
func JoinSections(sections []string, fallback string) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return Clean(fallback)
	}
	return strings.Join(parts, "\n\n")
}

// SplitList breaks a free-text list on commas, semicolons and newlines,
// cleaning each entry.
func SplitList(raw string) []string {
	if raw == "" {
		return nil
	}
	items := listSeparator.Split(raw, -1)
	return CleanAll(items)
}

// Benefits splits multi-line candidate entries, strips boilerplate lines
// (the section heading restated as content, "pulled from the full job
// description" notices) and deduplicates while preserving first-seen order.
func Benefits(candidates []string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, candidate := range candidates {
		for _, line := range strings.Split(candidate, "\n") {
			item := Clean(line)
			if item == "" || benefitsHeading.MatchString(item) || benefitsPulledNote.MatchString(item) {
				continue
			}
			if seen[item] {
				continue
			}
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}
