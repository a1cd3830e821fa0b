package sites

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobharvest/internal/normalize"
	"jobharvest/internal/scraper"
)

const rozeeBaseURL = "https://www.rozee.pk"

var (
	rozeeSectionSplit = regexp.MustCompile(`(?i)<br\s*/?>\s*-\s*`)
	htmlTag           = regexp.MustCompile(`<[^>]+>`)
)

// RozeeCollector extracts listings and detail pages from rozee.pk.
type RozeeCollector struct{}

// NewRozeeCollector creates a collector for rozee.pk
func NewRozeeCollector() *RozeeCollector {
	return &RozeeCollector{}
}

// Source returns the board identifier
func (c *RozeeCollector) Source() string {
	return "rozee"
}

// SearchURL builds the search results URL for a role query
func (c *RozeeCollector) SearchURL(role string) string {
	return rozeeBaseURL + "/job/jsearch/q/" + url.PathEscape(role)
}

// ParseListings extracts job cards from a search results page
func (c *RozeeCollector) ParseListings(html string) ([]scraper.RawListing, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	var listings []scraper.RawListing

	doc.Find(".job").Each(func(_ int, card *goquery.Selection) {
		anchor := card.Find("h3.s-18 a").First()
		title := normalize.Clean(anchor.Text())
		link := absoluteURL(rozeeBaseURL, anchor.AttrOr("href", ""))
		if title == "" || link == "" {
			return
		}

		listings = append(listings, scraper.RawListing{
			Title: title,
			Link:  link,
			Company: firstText(card,
				".text-muted.h6",
				".company-name",
				"p.text-muted",
				"small.text-muted",
			),
			CompanyLink: firstHref(card, rozeeBaseURL, ".text-muted.h6 a", ".company-name a"),
			Location: firstText(card,
				".job-location",
				".icon-location",
				"li[title*='Location']",
				".text-muted small",
			),
			SalaryHint: firstText(card,
				".text-success",
				".salary",
				"li[title*='Salary']",
			),
			PostedHint: firstText(card, ".posted", ".job-date", "time", "small.text-muted"),
			Snippet: firstText(card,
				".job-desc",
				".jbody",
				"p",
				".job-detail",
			),
		})
	})

	return listings, nil
}

// ParseDetail extracts the full posting from a job detail page
func (c *RozeeCollector) ParseDetail(html string) (*scraper.RawDetail, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	root := doc.Selection

	detail := &scraper.RawDetail{
		Labels:     map[string]string{},
		LabelLinks: map[string]string{},
	}

	doc.Find(".jobd .row").Each(func(_ int, row *goquery.Selection) {
		label := normalize.Clean(row.Find("b").First().Text())
		value := normalize.Clean(row.Find(".col-lg-7, .col-md-7, .col-sm-8").First().Text())
		if label != "" && value != "" {
			detail.Labels[label] = value
		}
	})

	detail.Title = firstText(root, "h1")
	detail.Company = firstText(root,
		".company-name",
		".company-title",
		".job-header .mb-0",
		".ctitle.font24 bdi",
	)
	detail.Location = firstText(root, ".location", ".job-location", ".job-header .mb-0+div")
	detail.PostedAt = firstText(root, ".posted", ".job-date", ".job-header .text-muted")
	detail.Views = firstText(root, ".views", ".job-views")
	detail.AboutCompany = firstText(root,
		"#cmpDetail .mt10.font15 p",
		".about-company",
		".company-desc",
		".company-description",
	)

	descriptionNode := doc.Find("#jbDetail .jblk.ul18 p").First()
	detail.Description = normalize.Clean(descriptionNode.Text())

	descriptionHTML := ""
	if descriptionNode.Length() > 0 {
		descriptionHTML, _ = descriptionNode.Html()
	}
	detail.KeyResponsibilities = extractRozeeSection(descriptionHTML, "Key Responsibilities")
	detail.RequiredQualifications = extractRozeeSection(descriptionHTML, "Required Qualifications")
	detail.PreferredQualifications = extractRozeeSection(descriptionHTML, "Preferred Qualifications and Benefits")

	doc.Find(".jblk").EachWithBreak(func(_ int, block *goquery.Selection) bool {
		heading := normalize.Clean(block.Find("h4.font18").First().Text())
		if !strings.EqualFold(heading, "skills") {
			return true
		}
		block.Find(".jcnt a.label").Each(func(_ int, node *goquery.Selection) {
			if text := normalize.Clean(node.Text()); text != "" {
				detail.Skills = append(detail.Skills, text)
			}
		})
		return false
	})

	detail.Salary = firstText(root, "div.mrsl.mt10.ofa.font18.text-right.text-dark.d-flex.align-items-center")
	if detail.Salary == "" {
		detail.Salary = detail.Label("Salary", "Salary Range")
	}

	return detail, nil
}

// extractRozeeSection pulls the bullet items that follow a bold section
// heading inside the description markup. Bullets are "<br>- item" runs
// terminated by the next bold heading.
func extractRozeeSection(descriptionHTML, title string) []string {
	if descriptionHTML == "" {
		return nil
	}

	pattern := regexp.MustCompile(`(?is)<b>` + regexp.QuoteMeta(title) + `</b>(.*?)(<b>|$)`)
	match := pattern.FindStringSubmatch(descriptionHTML)
	if match == nil {
		return nil
	}

	parts := rozeeSectionSplit.Split(match[1], -1)
	if len(parts) < 2 {
		return nil
	}

	var items []string
	for _, part := range parts[1:] {
		item := normalize.Clean(htmlTag.ReplaceAllString(part, " "))
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
