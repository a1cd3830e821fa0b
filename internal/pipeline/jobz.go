package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"jobharvest/internal/normalize"
	"jobharvest/internal/scraper"
	"jobharvest/pkg/models"
)

const jobzBaseURL = "https://www.jobz.pk"

// JobzNormalizer maps Jobz.pk extractions. Jobz renders almost everything
// through a key/value detail table, including application channels rendered
// as links, which are folded into a key-facts block of the description.
type JobzNormalizer struct{}

func NewJobzNormalizer() *JobzNormalizer {
	return &JobzNormalizer{}
}

func (n *JobzNormalizer) Source() string {
	return "jobz"
}

func (n *JobzNormalizer) Normalize(role string, listing scraper.RawListing, detail *scraper.RawDetail) (*models.JobRecord, error) {
	record, err := newBaseRecord(n.Source(), role, listing)
	if err != nil {
		return nil, err
	}
	record.SetDetail(models.DetailIndustry, normalize.Clean(listing.Industry))
	if len(listing.VacantPositions) > 0 {
		record.SetDetail(models.DetailTotalPositions, strconv.Itoa(len(listing.VacantPositions)))
	}
	if detail == nil {
		record.JobDescription = n.buildDescription(listing, detail)
		return record, nil
	}

	record.JobRole = preferClean(detail.Title, listing.Title)
	record.CompanyName = preferClean(detail.Label("Organization"), detail.Company)
	record.CompanyProfileURL = preferClean(detail.LabelLink("Organization Website"), detail.Label("Organization Website"))

	applyHref := detail.LabelLink("Apply Online if applicable")
	record.ApplyNowURL = preferClean(applyHref, listing.Link)
	if applyHref != "" && !strings.HasPrefix(applyHref, jobzBaseURL) {
		record.ExternalApplyURL = applyHref
	}

	record.Location = preferClean(
		detail.Label("Vacancy Location"),
		detail.Label("Area / Town"),
		listing.Location,
	)
	record.Salary = normalize.Clean(detail.Label("Salary", "Salary Range", "Pay"))
	record.PostedAt = preferClean(detail.Label("Date Posted / Updated"), listing.PostedHint)

	record.SetDetail(models.DetailIndustry, preferClean(detail.Label("Job Industry"), listing.Industry))
	record.SetDetail(models.DetailJobType, normalize.Clean(detail.Label("Job Type")))
	record.SetDetail(models.DetailFunctionalArea, normalize.Clean(detail.Label("Category / Sector")))
	record.SetDetail(models.DetailGender, normalize.Clean(detail.Label("Gender")))
	record.SetDetail(models.DetailCareerLevel, normalize.Clean(detail.Label("Career Level")))
	record.SetDetail(models.DetailApplyBefore, normalize.Clean(detail.Label("Expected Last Date")))
	record.SetDetail(models.DetailPostedOn, preferClean(detail.Label("Date Posted / Updated"), listing.PostedHint))
	record.SetDetail(models.DetailWorkplaceType, normalize.Clean(detail.Label("Vacancy Location")))
	record.SetDetail(models.DetailWorkSetting, normalize.Clean(detail.Label("Area / Town")))
	record.SetDetail(models.DetailCompensation, normalize.Clean(detail.Label("Salary", "Salary Range")))
	if positions := normalize.Clean(detail.Label("Vacancy", "Total Positions")); positions != "" {
		record.SetDetail(models.DetailTotalPositions, positions)
	}

	record.Experience = normalize.Clean(detail.Label("Experience", "Experience Level"))
	record.Education = normalize.Clean(detail.Label("Education"))
	record.Benefits = normalize.Benefits(normalize.SplitList(detail.Label("Facilities", "Benefits")))
	record.JobDescription = n.buildDescription(listing, detail)

	return record, nil
}

// buildDescription assembles, in fixed order, the description text, the
// highlight and vacant-position bullet sections, and a key-facts block with
// alternate application channels. Empty sections are omitted; when nothing
// produced text the card snippet is used.
func (n *JobzNormalizer) buildDescription(listing scraper.RawListing, detail *scraper.RawDetail) string {
	sections := []string{}
	if detail != nil {
		sections = append(sections,
			preferText(detail.Description),
			normalize.BulletSection("Key Highlights", detail.BulletHighlights),
		)
	}
	sections = append(sections, normalize.BulletSection("Vacant Positions", listing.VacantPositions))

	facts := []string{}
	addFact := func(label, text, href string) {
		switch {
		case href != "":
			if text == "" {
				text = href
			}
			facts = append(facts, fmt.Sprintf("%s: %s (%s)", label, text, href))
		case text != "":
			facts = append(facts, fmt.Sprintf("%s: %s", label, text))
		}
	}
	if detail != nil {
		addFact("WhatsApp Channel", normalize.Clean(detail.Label("WhatsApp Channel")), detail.LabelLink("WhatsApp Channel"))
		addFact("Online Applicants", normalize.Clean(detail.Label("Online Applicants")), "")
		addFact("Apply Online", normalize.Clean(detail.Label("Apply Online if applicable")), detail.LabelLink("Apply Online if applicable"))
		addFact("Newspaper", normalize.Clean(detail.Label("Newspaper")), "")
	}
	if len(facts) > 0 {
		sections = append(sections, strings.Join(facts, "\n"))
	}

	return normalize.JoinSections(sections, listing.Snippet)
}
