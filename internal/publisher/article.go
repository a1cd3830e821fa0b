package publisher

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"jobharvest/pkg/models"
	"jobharvest/pkg/utils"
)

const (
	dividerHTML      = `<div class="divider">Shape</div>`
	excerptMaxLength = 280
)

// placeholderPatterns match section bodies the rewriter emitted despite
// having no real data. Such sections are dropped entirely.
var placeholderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)information not provided`),
	regexp.MustCompile(`(?i)information not available`),
	regexp.MustCompile(`(?i)details not provided`),
	regexp.MustCompile(`(?i)details not available`),
	regexp.MustCompile(`(?i)^not provided$`),
	regexp.MustCompile(`(?i)^not available$`),
	regexp.MustCompile(`(?i)^n/?a$`),
}

var (
	h2OpenPattern   = regexp.MustCompile(`(?i)<h2\b`)
	h2ClosePattern  = regexp.MustCompile(`(?i)</h2>`)
	articleClose    = regexp.MustCompile(`(?i)</article>`)
	articleOpen     = regexp.MustCompile(`(?i)^<article[\s>]`)
	tagPattern      = regexp.MustCompile(`<[^>]+>`)
	spacePattern    = regexp.MustCompile(`\s+`)
	dividerPattern  = regexp.MustCompile(regexp.QuoteMeta(dividerHTML))
	doubleDivider   = regexp.MustCompile(regexp.QuoteMeta(dividerHTML) + `\s*` + regexp.QuoteMeta(dividerHTML))
	trailingDivider = regexp.MustCompile(regexp.QuoteMeta(dividerHTML) + `\s*(?i:</article>)`)
)

// EnsureArticle wraps the body in an <article> element when the rewriter
// returned bare section markup.
func EnsureArticle(body string) string {
	trimmed := strings.TrimSpace(body)
	if articleOpen.MatchString(trimmed) {
		return trimmed
	}
	return "<article>\n" + trimmed + "\n</article>"
}

// CleanArticleHTML drops h2 sections whose body is empty or placeholder
// text, then collapses the dividers those removals orphaned.
func CleanArticleHTML(articleHTML string) string {
	cleaned := dropEmptySections(articleHTML)

	for {
		next := doubleDivider.ReplaceAllString(cleaned, dividerHTML)
		if next == cleaned {
			break
		}
		cleaned = next
	}

	cleaned = trailingDivider.ReplaceAllString(cleaned, "</article>")

	return cleaned
}

// dropEmptySections removes every h2 section whose content, after stripping
// tags, is empty or matches a placeholder pattern. A section runs from its
// h2 tag to the next h2, divider, or the end of the article.
func dropEmptySections(articleHTML string) string {
	var out strings.Builder
	pos := 0

	for {
		loc := h2OpenPattern.FindStringIndex(articleHTML[pos:])
		if loc == nil {
			out.WriteString(articleHTML[pos:])
			break
		}

		start := pos + loc[0]
		out.WriteString(articleHTML[pos:start])

		end := sectionEnd(articleHTML, pos+loc[1])
		section := articleHTML[start:end]

		if keepSection(section) {
			out.WriteString(section)
		}
		pos = end
	}

	return out.String()
}

// sectionEnd finds the earliest boundary (next h2, divider, or article
// close) at or after from.
func sectionEnd(articleHTML string, from int) int {
	rest := articleHTML[from:]
	end := len(articleHTML)

	for _, pattern := range []*regexp.Regexp{h2OpenPattern, dividerPattern, articleClose} {
		if loc := pattern.FindStringIndex(rest); loc != nil && from+loc[0] < end {
			end = from + loc[0]
		}
	}

	return end
}

func keepSection(section string) bool {
	closeLoc := h2ClosePattern.FindStringIndex(section)
	if closeLoc == nil {
		return true
	}

	content := plainText(section[closeLoc[1]:])
	if content == "" {
		return false
	}

	for _, pattern := range placeholderPatterns {
		if pattern.MatchString(content) {
			return false
		}
	}

	return true
}

// plainText strips tags and collapses whitespace.
func plainText(htmlFragment string) string {
	text := tagPattern.ReplaceAllString(htmlFragment, " ")
	return strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
}

// BuildExcerpt derives the post excerpt from the article's visible text.
func BuildExcerpt(articleHTML string) string {
	return utils.TruncateRunes(plainText(articleHTML), excerptMaxLength)
}

// DeriveTitle picks the post title from the record with a generic fallback.
func DeriveTitle(job *models.JobRecord) string {
	if job.JobRole != "" {
		return job.JobRole
	}
	if job.SearchRole != "" {
		return job.SearchRole + " Opportunity"
	}
	return "Job Opportunity"
}

// WrapHTMLDocument produces the standalone snapshot document written next
// to each published draft.
func WrapHTMLDocument(title, bodyHTML string) string {
	safeTitle := html.EscapeString(title)
	if safeTitle == "" {
		safeTitle = "Job Opportunity"
	}
	return "<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n  <meta charset=\"utf-8\" />\n  <title>" +
		safeTitle + "</title>\n</head>\n<body>\n" + bodyHTML + "\n</body>\n</html>"
}

var filenameUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

func filenameSegment(value string) string {
	segment := filenameUnsafe.ReplaceAllString(strings.ToLower(value), "-")
	return strings.Trim(segment, "-")
}

// SnapshotFilename builds a unique, filesystem-safe name for the article
// snapshot of one job.
func SnapshotFilename(job *models.JobRecord, title string) string {
	segments := []string{}
	for _, raw := range []string{job.SearchRole, job.JobID, title} {
		if segment := filenameSegment(raw); segment != "" {
			segments = append(segments, segment)
		}
	}
	segments = append(segments, fmt.Sprintf("%d", time.Now().UnixMilli()))
	return strings.Join(segments, "-") + ".html"
}

// WriteSnapshot persists the wrapped article document under dir, creating
// the directory when needed.
func WriteSnapshot(dir string, job *models.JobRecord, title, articleHTML string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, SnapshotFilename(job, title))
	document := WrapHTMLDocument(title, articleHTML)

	if err := os.WriteFile(path, []byte(document), 0o644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	return path, nil
}
