package sites

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobharvest/internal/normalize"
	"jobharvest/internal/scraper"
)

const indeedBaseURL = "https://www.indeed.com"

// Indeed renders several card layouts depending on the experiment bucket, so
// every lookup runs through a fallback selector chain.
var (
	indeedAnchorSelector = strings.Join([]string{
		"a[data-testid='jobTitle']",
		"a[data-jk]",
		"a[data-mobtk]",
		"a.jcs-JobTitle",
		"a.tapItem",
		"h2.jobTitle a",
	}, ", ")

	indeedCardSelector = strings.Join([]string{
		"div.job_seen_beacon",
		"div.cardOutline",
		"div.resultContent",
		"div.jobCard_mainContent",
		"li",
	}, ", ")
)

// IndeedCollector extracts listings and detail pages from indeed.com.
type IndeedCollector struct{}

// NewIndeedCollector creates a collector for indeed.com
func NewIndeedCollector() *IndeedCollector {
	return &IndeedCollector{}
}

// Source returns the board identifier
func (c *IndeedCollector) Source() string {
	return "indeed"
}

// SearchURL builds the search results URL for a role query
func (c *IndeedCollector) SearchURL(role string) string {
	return indeedBaseURL + "/jobs?q=" + url.QueryEscape(role)
}

// ParseListings extracts job cards from a search results page
func (c *IndeedCollector) ParseListings(html string) ([]scraper.RawListing, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	var listings []scraper.RawListing
	seenLinks := make(map[string]bool)

	doc.Find(indeedAnchorSelector).Each(func(_ int, anchor *goquery.Selection) {
		card := anchor.Closest(indeedCardSelector)
		if card.Length() == 0 {
			card = anchor
		}

		title := normalize.Clean(anchor.AttrOr("aria-label", ""))
		if title == "" {
			title = normalize.Clean(anchor.Text())
		}
		if title == "" {
			title = firstText(card, "h2.jobTitle", "span.jobTitle")
		}
		if title == "" {
			return
		}

		link := absoluteURL(indeedBaseURL, anchor.AttrOr("href", ""))
		if link == "" || seenLinks[link] {
			return
		}
		seenLinks[link] = true

		listings = append(listings, scraper.RawListing{
			Title: title,
			Link:  link,
			Company: firstText(card,
				"span.companyName",
				"a.companyOverviewLink",
				"span[data-testid='company-name']",
				"div.companyInfo",
				"div[data-testid='company-name']",
			),
			Location: firstText(card,
				"div.companyLocation",
				"div[data-testid='text-location']",
				"span[data-testid='location']",
				"div[data-testid='result-footer'] span",
			),
			Snippet: firstText(card,
				"div.job-snippet",
				"ul.job-snippet",
				"div[data-testid='job-snippet']",
				"div[data-testid='jobcard-descriptions']",
			),
			SalaryHint: firstText(card,
				"div.salary-snippet-container",
				"div[data-testid='attribute_snippet']",
				"div[data-testid='detailSalary']",
				"span[data-testid='salary-snippet']",
			),
			PostedHint: firstText(card,
				"span.date",
				"span[data-testid='myJobsStateDate']",
				"li[data-testid='myJobsStateDate']",
				"div[data-testid='result-footer'] span",
			),
		})
	})

	return listings, nil
}

// ParseDetail extracts the full posting from a job detail page
func (c *IndeedCollector) ParseDetail(html string) (*scraper.RawDetail, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	root := doc.Selection

	description := doc.Find("[data-testid='jobDescription']").First()
	if description.Length() == 0 {
		description = doc.Find("#jobDescriptionText").First()
	}

	detail := &scraper.RawDetail{
		Labels:     collectIndeedLabels(doc),
		LabelLinks: map[string]string{},
	}

	detail.Title = firstText(root, "[data-testid='jobsearch-JobInfoHeader-title']", "h1")
	detail.Company = firstText(root,
		"[data-company-name='true']",
		".jobsearch-InlineCompanyRating div:first-child",
		".css-qcqa6h.e1wnkr790",
	)
	detail.CompanyURL = firstHref(root, indeedBaseURL,
		"[data-testid='companyLink']",
		".jobsearch-InlineCompanyRating a",
		".css-qcqa6h.e1wnkr790 a",
		"a[data-company-name='true']",
	)
	detail.Location = joinedText(root,
		"[data-testid='inlineHeader-companyLocation'] span",
		"[data-testid='inlineHeader-companyLocation']",
		"[data-company-location='true']",
		"[data-testid='jobsearch-JobInfoHeader-subtitle'] div:last-child",
		".jobsearch-JobInfoHeader-subtitle div:last-child",
	)
	detail.Salary = joinedText(root,
		"[data-testid='salarySection']",
		"[data-testid='detailSalary']",
	)
	detail.PostedAt = joinedText(root,
		"[data-testid='jobsearch-JobMetadataFooter'] li",
		"[data-testid='jobsearch-JobMetadataFooter'] span",
		"[data-testid='jobsearch-JobMetadataFooter']",
		".jobsearch-JobMetadataFooter",
	)

	if description.Length() > 0 {
		detail.Description = strings.TrimSpace(description.Text())
		description.Find("li").Each(func(_ int, li *goquery.Selection) {
			if item := strings.TrimSpace(li.Text()); item != "" {
				detail.DescriptionItems = append(detail.DescriptionItems, item)
			}
		})
	}

	doc.Find("[data-testid='benefitsSection'] li, .css-727s.eu4oa1w0, .css-727s").Each(func(_ int, node *goquery.Selection) {
		if text := strings.TrimSpace(node.Text()); text != "" {
			detail.BenefitCandidates = append(detail.BenefitCandidates, text)
		}
	})

	detail.ApplyNowURL = firstHref(root, indeedBaseURL,
		"a[data-testid='indeed-apply-button']",
		"a[data-indeed-apply-url]",
	)

	doc.Find("a[href]").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(anchor.Text()))
		href := absoluteURL(indeedBaseURL, anchor.AttrOr("href", ""))
		if href != "" && strings.Contains(text, "apply") && href != detail.ApplyNowURL {
			detail.ExternalApplyURL = href
			return false
		}
		return true
	})

	return detail, nil
}

// collectIndeedLabels walks the job details sections and builds the heading
// to value table. The heading text is a prefix of the node text, so the
// value is whatever follows it.
func collectIndeedLabels(doc *goquery.Document) map[string]string {
	labels := make(map[string]string)

	doc.Find("[data-testid='jobDetailsSection'], #jobDetailsSection").Each(func(_ int, section *goquery.Selection) {
		section.Find("div, li, dl").Each(func(_ int, node *goquery.Selection) {
			heading := normalize.Clean(node.Find("h3, h4, span[title], dt, strong").First().Text())
			if heading == "" {
				return
			}

			value := normalize.Clean(node.Text())
			if strings.HasPrefix(value, heading) {
				value = strings.TrimSpace(strings.TrimPrefix(value, heading))
			}
			if value != "" {
				labels[heading] = value
			}
		})
	})

	return labels
}
