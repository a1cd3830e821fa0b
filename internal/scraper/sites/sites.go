// Package sites contains the per-board collectors that turn raw search and
// detail page HTML into listing structures.
package sites

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobharvest/internal/normalize"
	"jobharvest/internal/scraper"
)

// For returns the collector for a board identifier.
func For(source string) (scraper.Collector, error) {
	switch source {
	case "indeed":
		return NewIndeedCollector(), nil
	case "rozee":
		return NewRozeeCollector(), nil
	case "jobz":
		return NewJobzCollector(), nil
	default:
		return nil, fmt.Errorf("unknown source: %s", source)
	}
}

// All returns collectors for every supported board.
func All() []scraper.Collector {
	return []scraper.Collector{
		NewIndeedCollector(),
		NewRozeeCollector(),
		NewJobzCollector(),
	}
}

// firstText returns the cleaned text of the first selector that matches a
// non-empty node under root.
func firstText(root *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		text := normalize.Clean(root.Find(sel).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

// joinedText collects all matches of each selector in turn, joining their
// cleaned texts with a bullet separator, and returns the first selector that
// produced anything.
func joinedText(root *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		var parts []string
		root.Find(sel).Each(func(_ int, node *goquery.Selection) {
			if text := normalize.Clean(node.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		if len(parts) > 0 {
			return strings.Join(parts, " • ")
		}
	}
	return ""
}

// firstHref returns the resolved href of the first selector that matches an
// anchor with a non-empty href.
func firstHref(root *goquery.Selection, base string, selectors ...string) string {
	for _, sel := range selectors {
		if href, ok := root.Find(sel).First().Attr("href"); ok && href != "" {
			return absoluteURL(base, href)
		}
	}
	return ""
}

// absoluteURL resolves href against the board's base URL. Invalid values are
// returned unchanged so a broken link still surfaces in diagnostics.
func absoluteURL(base, href string) string {
	if href == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

func parseDocument(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}
