package sites

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobharvest/internal/normalize"
	"jobharvest/internal/scraper"
)

const jobzBaseURL = "https://www.jobz.pk"

// jobzDescriptionSelectors in preference order; the markup varies between
// government and private sector postings.
var jobzDescriptionSelectors = []string{
	".job-description",
	".job_desc",
	".job_detail_pages",
	".job_detail .col-md-8",
	"#jobDetail",
	".job_detail .job_detail_text",
}

// JobzCollector extracts listings and detail pages from jobz.pk.
type JobzCollector struct{}

// NewJobzCollector creates a collector for jobz.pk
func NewJobzCollector() *JobzCollector {
	return &JobzCollector{}
}

// Source returns the board identifier
func (c *JobzCollector) Source() string {
	return "jobz"
}

// SearchURL builds the search results URL for a role query. The board's
// search form submits the query in the str field.
func (c *JobzCollector) SearchURL(role string) string {
	return jobzBaseURL + "/?str=" + url.QueryEscape(role)
}

// ParseListings extracts the result table rows from a search page
func (c *JobzCollector) ParseListings(html string) ([]scraper.RawListing, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	var listings []scraper.RawListing

	doc.Find("div.row_container").Each(func(_ int, row *goquery.Selection) {
		// Header rows carry the column captions
		if row.Find(".color_top_text").Length() > 0 {
			return
		}

		cell1 := row.Find(".cell1").First()
		anchor := cell1.Find("a").First()

		title := normalize.Clean(anchor.Text())
		link := absoluteURL(jobzBaseURL, anchor.AttrOr("href", ""))
		if title == "" || link == "" {
			return
		}

		snippet := normalize.Clean(cell1.Find("p:last-of-type").Text())
		if snippet == "" {
			snippet = normalize.Clean(cell1.Find("p").First().Text())
		}

		var vacantPositions []string
		row.Find("div.cell1[style*='width:100%'] a").Each(func(_ int, node *goquery.Selection) {
			if text := normalize.Clean(node.Text()); text != "" {
				vacantPositions = append(vacantPositions, text)
			}
		})

		listings = append(listings, scraper.RawListing{
			Title:           title,
			Link:            link,
			Industry:        normalize.Clean(row.Find(".cell2").First().Text()),
			Location:        normalize.Clean(row.Find(".cell3").First().Text()),
			PostedHint:      normalize.Clean(row.Find(".cell4").First().Text()),
			Snippet:         snippet,
			VacantPositions: vacantPositions,
		})
	})

	return listings, nil
}

// ParseDetail extracts the posting facts table and description from a job
// detail page
func (c *JobzCollector) ParseDetail(html string) (*scraper.RawDetail, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	root := doc.Selection

	detail := &scraper.RawDetail{
		Labels:     map[string]string{},
		LabelLinks: map[string]string{},
	}

	doc.Find(".job_detail .row_job_detail").Each(func(_ int, row *goquery.Selection) {
		keyNode := row.Find(".job_detail_cell1").First()
		if keyNode.Length() == 0 {
			keyNode = row.Find("b").First()
		}
		key := normalize.Clean(strings.TrimSuffix(strings.TrimSpace(keyNode.Text()), ":"))
		if key == "" {
			return
		}

		valueNode := row.Find(".job_detail_cell2").First()
		if valueNode.Length() == 0 {
			valueNode = row.ChildrenFiltered("div").Last()
		}

		if valueNode.Length() > 0 {
			if anchor := valueNode.Find("a[href]").First(); anchor.Length() > 0 {
				href := absoluteURL(jobzBaseURL, anchor.AttrOr("href", ""))
				text := normalize.Clean(anchor.Text())
				if text == "" {
					text = href
				}
				detail.Labels[key] = text
				detail.LabelLinks[key] = href
				return
			}
			detail.Labels[key] = normalize.Clean(valueNode.Text())
			return
		}

		detail.Labels[key] = normalize.Clean(row.Text())
	})

	detail.Title = firstText(root, "h1", ".job_detail h1", ".heading h1")
	detail.Company = detail.Label("Organization")
	if detail.Company == "" {
		detail.Company = firstText(root, ".company-title", ".heading h2")
	}

	detail.Description = firstText(root, jobzDescriptionSelectors...)

	seen := make(map[string]bool)
	for _, sel := range jobzDescriptionSelectors {
		doc.Find(sel + " li").Each(func(_ int, li *goquery.Selection) {
			text := normalize.Clean(li.Text())
			if text != "" && !seen[text] {
				seen[text] = true
				detail.BulletHighlights = append(detail.BulletHighlights, text)
			}
		})
	}

	return detail, nil
}
