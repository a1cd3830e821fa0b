package pipeline

import (
	"fmt"
	"strconv"

	"jobharvest/internal/normalize"
	"jobharvest/internal/scraper"
	"jobharvest/pkg/models"
)

// RozeeNormalizer maps Rozee.pk extractions. Rozee publishes a structured
// details table and renders responsibilities/qualifications as titled
// blocks inside the description, which become headed bullet sections.
type RozeeNormalizer struct{}

func NewRozeeNormalizer() *RozeeNormalizer {
	return &RozeeNormalizer{}
}

func (n *RozeeNormalizer) Source() string {
	return "rozee"
}

var rozeeFacetLabels = map[string][]string{
	models.DetailIndustry:         {"Industry", "Job Industry"},
	models.DetailFunctionalArea:   {"Functional Area"},
	models.DetailTotalPositions:   {"Total Positions"},
	models.DetailShiftAndSchedule: {"Job Shift"},
	models.DetailJobType:          {"Job Type"},
	models.DetailGender:           {"Gender"},
	models.DetailCareerLevel:      {"Career Level"},
	models.DetailApplyBefore:      {"Apply Before"},
	models.DetailPostedOn:         {"Posting Date"},
}

func (n *RozeeNormalizer) Normalize(role string, listing scraper.RawListing, detail *scraper.RawDetail) (*models.JobRecord, error) {
	record, err := newBaseRecord(n.Source(), role, listing)
	if err != nil {
		return nil, err
	}
	record.CompanyProfileURL = normalize.Clean(listing.CompanyLink)
	record.Salary = FormatSalaryRange(listing.SalaryMin, listing.SalaryMax, listing.SalaryHint)
	if detail == nil {
		return record, nil
	}

	record.JobRole = preferClean(detail.Title, listing.Title)
	record.CompanyName = preferClean(detail.Company, listing.Company)
	record.Location = preferClean(detail.Location, listing.Location)
	record.PostedAt = preferClean(detail.PostedAt, listing.PostedHint)
	if salary := normalize.Clean(detail.Salary); salary != "" {
		record.Salary = salary
	}

	for facet, labels := range rozeeFacetLabels {
		record.SetDetail(facet, normalize.Clean(detail.Label(labels...)))
	}
	record.Experience = normalize.Clean(detail.Label("Minimum Experience", "Experience"))
	record.Education = normalize.Clean(detail.Label("Minimum Education", "Education"))

	sections := []string{
		preferText(detail.Description),
		normalize.BulletSection("Key Responsibilities", detail.KeyResponsibilities),
		normalize.BulletSection("Required Qualifications", detail.RequiredQualifications),
		normalize.BulletSection("Preferred Qualifications & Benefits", detail.PreferredQualifications),
	}
	if about := normalize.Clean(detail.AboutCompany); about != "" {
		sections = append(sections, "About the Company:\n"+about)
	}
	record.JobDescription = normalize.JoinSections(sections, listing.Snippet)

	// Skills and preferred qualifications double as the benefits list.
	candidates := append([]string{}, detail.Skills...)
	candidates = append(candidates, detail.PreferredQualifications...)
	record.Benefits = normalize.Benefits(candidates)

	return record, nil
}

// FormatSalaryRange renders a PKR range from the card's structured min/max
// values, falling back to the card's free-text salary when neither bound is
// usable.
func FormatSalaryRange(minValue, maxValue int, fallbackText string) string {
	hasMin := minValue > 0
	hasMax := maxValue > 0

	if !hasMin && !hasMax {
		return normalize.Clean(fallbackText)
	}

	if hasMin && hasMax && minValue != maxValue {
		return fmt.Sprintf("PKR %s - PKR %s", groupThousands(minValue), groupThousands(maxValue))
	}

	single := minValue
	if !hasMin {
		single = maxValue
	}
	return "PKR " + groupThousands(single)
}

func groupThousands(value int) string {
	digits := strconv.Itoa(value)
	if len(digits) <= 3 {
		return digits
	}
	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, d)
	}
	return string(out)
}
