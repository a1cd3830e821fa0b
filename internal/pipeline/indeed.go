package pipeline

import (
	"regexp"

	"jobharvest/internal/normalize"
	"jobharvest/internal/scraper"
	"jobharvest/pkg/models"
)

// IndeedNormalizer maps Indeed card and detail extractions. Indeed renders
// its structured facts as a labeled details section with inconsistent label
// casing, so every facet is derived over a set of label spellings.
type IndeedNormalizer struct{}

func NewIndeedNormalizer() *IndeedNormalizer {
	return &IndeedNormalizer{}
}

func (n *IndeedNormalizer) Source() string {
	return "indeed"
}

var (
	experienceHint = regexp.MustCompile(`(?i)experience`)
	educationHint  = regexp.MustCompile(`(?i)degree|diploma|education`)
)

var indeedFacetLabels = map[string][]string{
	models.DetailJobType:           {"Job type", "Job Type"},
	models.DetailShiftAndSchedule:  {"Shift and schedule", "Shift & schedule", "Schedule"},
	models.DetailWorkSetting:       {"Work setting", "Work Setting"},
	models.DetailWorkplaceType:     {"Workplace type", "Workplace Type"},
	models.DetailCompensation:      {"Compensation", "Compensation & benefits"},
	models.DetailContractType:      {"Contract type", "Contract Type"},
	models.DetailSecurityClearance: {"Security clearance", "Security Clearance"},
	models.DetailTravelRequirement: {"Travel requirement", "Travel requirements"},
}

func (n *IndeedNormalizer) Normalize(role string, listing scraper.RawListing, detail *scraper.RawDetail) (*models.JobRecord, error) {
	record, err := newBaseRecord(n.Source(), role, listing)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return record, nil
	}

	record.JobRole = preferClean(detail.Title, listing.Title)
	record.CompanyName = preferClean(detail.Company, listing.Company)
	record.CompanyProfileURL = normalize.Clean(detail.CompanyURL)
	record.Location = preferClean(detail.Location, listing.Location)
	record.ApplyNowURL = preferClean(detail.ApplyNowURL, detail.ExternalApplyURL, listing.Link)
	record.ExternalApplyURL = normalize.Clean(detail.ExternalApplyURL)
	record.Salary = preferClean(detail.Label("Pay", "Salary", "Compensation"), detail.Salary, listing.SalaryHint)
	record.PostedAt = normalize.PostedAt(normalize.Clean(detail.PostedAt), normalize.Clean(listing.PostedHint))

	for facet, labels := range indeedFacetLabels {
		record.SetDetail(facet, normalize.Clean(detail.Label(labels...)))
	}

	record.Benefits = normalize.Benefits(detail.BenefitCandidates)
	record.JobDescription = preferText(detail.Description, listing.Snippet)

	record.Experience = preferClean(
		detail.Label("Experience", "Experience level", "Experience Level"),
		firstMatching(detail.DescriptionItems, experienceHint),
	)
	record.Education = preferClean(
		detail.Label("Education", "Education level", "Education Level"),
		firstMatching(detail.DescriptionItems, educationHint),
	)

	return record, nil
}

func firstMatching(items []string, pattern *regexp.Regexp) string {
	for _, item := range items {
		if pattern.MatchString(item) {
			return item
		}
	}
	return ""
}
