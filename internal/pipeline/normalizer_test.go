package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobharvest/internal/scraper"
)

func TestNormalizeMalformedListing(t *testing.T) {
	tests := []struct {
		name    string
		listing scraper.RawListing
	}{
		{name: "missing title", listing: scraper.RawListing{Link: "https://example.com/job/1"}},
		{name: "missing link", listing: scraper.RawListing{Title: "Clerk"}},
		{name: "whitespace title", listing: scraper.RawListing{Title: "   ", Link: "https://example.com/job/1"}},
	}

	for _, norm := range Normalizers() {
		for _, tt := range tests {
			t.Run(norm.Source()+"/"+tt.name, func(t *testing.T) {
				record, err := norm.Normalize("Clerk", tt.listing, nil)
				require.ErrorIs(t, err, ErrMalformed)
				assert.Nil(t, record)
			})
		}
	}
}

func TestIndeedNormalizeCardOnly(t *testing.T) {
	n := NewIndeedNormalizer()

	record, err := n.Normalize("Clerk", scraper.RawListing{
		Title:      "Data Entry Clerk",
		Link:       "https://www.indeed.com/viewjob?jk=abc123",
		Company:    "Acme Corp",
		Location:   "Remote",
		Snippet:    "Enter data accurately.",
		SalaryHint: "$15 an hour",
		PostedHint: "Posted 3 days ago",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "indeed-abc123", record.JobID)
	assert.Equal(t, "indeed", record.Source)
	assert.Equal(t, "Clerk", record.SearchRole)
	assert.Equal(t, "Data Entry Clerk", record.JobRole)
	assert.Equal(t, "Acme Corp", record.CompanyName)
	assert.Equal(t, "https://www.indeed.com/viewjob?jk=abc123", record.ApplyNowURL)
	assert.Equal(t, "$15 an hour", record.Salary)
	assert.Equal(t, "Enter data accurately.", record.JobDescription)
	assert.Empty(t, record.JobDetails)
	assert.NotNil(t, record.Benefits)
}

func TestIndeedNormalizeDetailPrecedence(t *testing.T) {
	n := NewIndeedNormalizer()

	listing := scraper.RawListing{
		Title:      "Data Entry Clerk",
		Link:       "https://www.indeed.com/viewjob?jk=abc123",
		Company:    "Card Co",
		Location:   "Card City",
		Snippet:    "Card snippet.",
		SalaryHint: "$10 an hour",
		PostedHint: "Posted 3 days ago",
	}
	detail := &scraper.RawDetail{
		Title:      "Senior Data Entry Clerk",
		Company:    "Acme Corp",
		CompanyURL: "https://www.indeed.com/cmp/acme",
		Location:   "Lahore",
		// Accessibility boilerplate must not survive as a posted date
		PostedAt: "If you require alternative methods of application, contact us",
		Labels: map[string]string{
			"Pay":        "$15 - $18 an hour",
			"Job type":   "Full-time",
			"Experience": "2 years",
		},
		Description: "First paragraph.\n\nSecond paragraph.",
		BenefitCandidates: []string{
			"Benefits\nHealth insurance\nPaid time off",
			"Health insurance",
			"Pulled from the full job description",
		},
		DescriptionItems: []string{"Must lift 20kg", "Bachelor degree preferred"},
		ApplyNowURL:      "https://www.indeed.com/apply/abc123",
	}

	record, err := n.Normalize("Clerk", listing, detail)
	require.NoError(t, err)

	assert.Equal(t, "indeed-abc123", record.JobID)
	assert.Equal(t, "Senior Data Entry Clerk", record.JobRole)
	assert.Equal(t, "Acme Corp", record.CompanyName)
	assert.Equal(t, "https://www.indeed.com/cmp/acme", record.CompanyProfileURL)
	assert.Equal(t, "Lahore", record.Location)
	assert.Equal(t, "https://www.indeed.com/apply/abc123", record.ApplyNowURL)
	assert.Equal(t, "$15 - $18 an hour", record.Salary)
	assert.Equal(t, "Posted 3 days ago", record.PostedAt)
	assert.Equal(t, "Full-time", record.JobDetails["job_type"])
	assert.Equal(t, []string{"Health insurance", "Paid time off"}, record.Benefits)
	assert.Equal(t, "First paragraph.\n\nSecond paragraph.", record.JobDescription)
	assert.Equal(t, "2 years", record.Experience)
	assert.Equal(t, "Bachelor degree preferred", record.Education)
}

func TestRozeeNormalizeSalaryRange(t *testing.T) {
	n := NewRozeeNormalizer()

	record, err := n.Normalize("Clerk", scraper.RawListing{
		Title:     "Office Clerk",
		Link:      "https://www.rozee.pk/job/clerk-lahore-123456",
		SalaryMin: 50000,
		SalaryMax: 70000,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "rozee-www-rozee-pk-job-clerk-lahore-123456", record.JobID)
	assert.Equal(t, "PKR 50,000 - PKR 70,000", record.Salary)
}

func TestFormatSalaryRange(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		fallback string
		want     string
	}{
		{name: "full range", min: 50000, max: 70000, want: "PKR 50,000 - PKR 70,000"},
		{name: "equal bounds", min: 50000, max: 50000, want: "PKR 50,000"},
		{name: "max only", max: 60000, want: "PKR 60,000"},
		{name: "min only", min: 1500000, want: "PKR 1,500,000"},
		{name: "fallback text", fallback: "  Negotiable ", want: "Negotiable"},
		{name: "nothing", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSalaryRange(tt.min, tt.max, tt.fallback))
		})
	}
}

func TestRozeeNormalizeDetail(t *testing.T) {
	n := NewRozeeNormalizer()

	listing := scraper.RawListing{
		Title:   "Office Clerk",
		Link:    "https://www.rozee.pk/job/clerk-lahore-123456",
		Snippet: "Card snippet.",
	}
	detail := &scraper.RawDetail{
		Title:   "Office Clerk",
		Company: "Beta Traders",
		Salary:  "PKR 55,000",
		Labels: map[string]string{
			"Job Shift":          "First Shift (Day)",
			"Job Type":           "Full Time/Permanent",
			"Minimum Education":  "Intermediate",
			"Minimum Experience": "1 Year",
		},
		Description:             "General clerical work.",
		KeyResponsibilities:     []string{"File documents", "Answer phones"},
		RequiredQualifications:  []string{"Intermediate education"},
		PreferredQualifications: []string{"Health insurance"},
		Skills:                  []string{"MS Office", "Typing"},
		AboutCompany:            "A trading house in Lahore.",
	}

	record, err := n.Normalize("Clerk", listing, detail)
	require.NoError(t, err)

	assert.Equal(t, "PKR 55,000", record.Salary)
	assert.Equal(t, "First Shift (Day)", record.JobDetails["shift_and_schedule"])
	assert.Equal(t, "Full Time/Permanent", record.JobDetails["job_type"])
	assert.Equal(t, "Intermediate", record.Education)
	assert.Equal(t, "1 Year", record.Experience)
	assert.Equal(t, []string{"MS Office", "Typing", "Health insurance"}, record.Benefits)

	want := "General clerical work." +
		"\n\nKey Responsibilities:\n- File documents\n- Answer phones" +
		"\n\nRequired Qualifications:\n- Intermediate education" +
		"\n\nPreferred Qualifications & Benefits:\n- Health insurance" +
		"\n\nAbout the Company:\nA trading house in Lahore."
	assert.Equal(t, want, record.JobDescription)
}

func TestJobzNormalizeDetail(t *testing.T) {
	n := NewJobzNormalizer()

	listing := scraper.RawListing{
		Title:           "Computer Operator",
		Link:            "https://www.jobz.pk/computer-operator-jobs-123456.html",
		Industry:        "Government",
		Location:        "Karachi",
		PostedHint:      "28 August 2026",
		VacantPositions: []string{"Computer Operator", "Data Entry Operator"},
	}
	detail := &scraper.RawDetail{
		Title: "Computer Operator",
		Labels: map[string]string{
			"Organization":               "Health Department",
			"Job Type":                   "Full Time",
			"Category / Sector":          "Government",
			"Expected Last Date":         "30 September 2026",
			"Education":                  "Matric",
			"Apply Online if applicable": "Apply Here",
			"WhatsApp Channel":           "Follow",
			"Newspaper":                  "Dawn Jobs",
			"Facilities":                 "Accommodation, Transport",
		},
		LabelLinks: map[string]string{
			"Apply Online if applicable": "https://careers.example.com/apply",
			"WhatsApp Channel":           "https://whatsapp.com/channel/xyz",
		},
		Description:      "Operate departmental systems.",
		BulletHighlights: []string{"Matric minimum", "Typing speed 40wpm"},
	}

	record, err := n.Normalize("Computer Operator", listing, detail)
	require.NoError(t, err)

	assert.Equal(t, "jobz-123456", record.JobID)
	assert.Equal(t, "Health Department", record.CompanyName)
	assert.Equal(t, "https://careers.example.com/apply", record.ApplyNowURL)
	// Off-board application links are surfaced as external
	assert.Equal(t, "https://careers.example.com/apply", record.ExternalApplyURL)
	assert.Equal(t, "Full Time", record.JobDetails["job_type"])
	assert.Equal(t, "Government", record.JobDetails["functional_area"])
	assert.Equal(t, "30 September 2026", record.JobDetails["apply_before"])
	assert.Equal(t, "2", record.JobDetails["total_positions"])
	assert.Equal(t, "Matric", record.Education)
	assert.Equal(t, []string{"Accommodation", "Transport"}, record.Benefits)

	assert.Contains(t, record.JobDescription, "Operate departmental systems.")
	assert.Contains(t, record.JobDescription, "Key Highlights:\n- Matric minimum")
	assert.Contains(t, record.JobDescription, "Vacant Positions:\n- Computer Operator")
	assert.Contains(t, record.JobDescription, "WhatsApp Channel: Follow (https://whatsapp.com/channel/xyz)")
	assert.Contains(t, record.JobDescription, "Apply Online: Apply Here (https://careers.example.com/apply)")
	assert.Contains(t, record.JobDescription, "Newspaper: Dawn Jobs")
}

func TestJobzExternalApplyOnBoard(t *testing.T) {
	n := NewJobzNormalizer()

	listing := scraper.RawListing{
		Title: "Computer Operator",
		Link:  "https://www.jobz.pk/computer-operator-jobs-123456.html",
	}
	detail := &scraper.RawDetail{
		Labels:     map[string]string{"Apply Online if applicable": "Apply"},
		LabelLinks: map[string]string{"Apply Online if applicable": "https://www.jobz.pk/apply/123456"},
	}

	record, err := n.Normalize("Computer Operator", listing, detail)
	require.NoError(t, err)

	// Links back onto the board are not external applications
	assert.Equal(t, "https://www.jobz.pk/apply/123456", record.ApplyNowURL)
	assert.Empty(t, record.ExternalApplyURL)
}
