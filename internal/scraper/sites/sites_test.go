package sites

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indeedSearchHTML = `
<html><body>
<ul>
<li>
  <div class="job_seen_beacon">
    <h2 class="jobTitle"><a data-testid="jobTitle" aria-label="Data Entry Clerk" href="/viewjob?jk=abc123">Data Entry Clerk</a></h2>
    <span data-testid="company-name">Acme Corp</span>
    <div data-testid="text-location">Remote</div>
    <div data-testid="job-snippet">Enter data accurately.</div>
    <span data-testid="salary-snippet">$15 an hour</span>
    <span class="date">Posted 3 days ago</span>
  </div>
</li>
<li>
  <div class="job_seen_beacon">
    <h2 class="jobTitle"><a data-testid="jobTitle" href="/viewjob?jk=abc123">Data Entry Clerk</a></h2>
  </div>
</li>
<li>
  <div class="job_seen_beacon">
    <h2 class="jobTitle"><a data-testid="jobTitle" href=""></a></h2>
  </div>
</li>
</ul>
</body></html>`

const indeedDetailHTML = `
<html><body>
<h1 data-testid="jobsearch-JobInfoHeader-title">Senior Data Entry Clerk</h1>
<span data-company-name="true">Acme Corp</span>
<div data-testid="inlineHeader-companyLocation"><span>Lahore</span></div>
<div data-testid="jobDetailsSection">
  <div><h3>Job type</h3> Full-time</div>
  <div><h3>Pay</h3> $15 - $18 an hour</div>
</div>
<div data-testid="benefitsSection">
  <ul><li>Health insurance</li><li>Paid time off</li></ul>
</div>
<div data-testid="jobDescription">
  <p>Long form description.</p>
  <ul><li>2 years experience required</li><li>Bachelor degree preferred</li></ul>
</div>
<a data-testid="indeed-apply-button" href="https://www.indeed.com/apply/abc123">Apply now</a>
</body></html>`

func TestIndeedParseListings(t *testing.T) {
	c := NewIndeedCollector()

	listings, err := c.ParseListings(indeedSearchHTML)
	require.NoError(t, err)

	// Duplicate link and empty anchor are both dropped
	require.Len(t, listings, 1)

	l := listings[0]
	assert.Equal(t, "Data Entry Clerk", l.Title)
	assert.Equal(t, "https://www.indeed.com/viewjob?jk=abc123", l.Link)
	assert.Equal(t, "Acme Corp", l.Company)
	assert.Equal(t, "Remote", l.Location)
	assert.Equal(t, "Enter data accurately.", l.Snippet)
	assert.Equal(t, "$15 an hour", l.SalaryHint)
	assert.Equal(t, "Posted 3 days ago", l.PostedHint)
}

func TestIndeedParseDetail(t *testing.T) {
	c := NewIndeedCollector()

	detail, err := c.ParseDetail(indeedDetailHTML)
	require.NoError(t, err)

	assert.Equal(t, "Senior Data Entry Clerk", detail.Title)
	assert.Equal(t, "Acme Corp", detail.Company)
	assert.Equal(t, "Lahore", detail.Location)
	assert.Equal(t, "Full-time", detail.Label("Job type", "Job Type"))
	assert.Equal(t, "$15 - $18 an hour", detail.Label("Pay"))
	assert.Equal(t, []string{"Health insurance", "Paid time off"}, detail.BenefitCandidates)
	assert.Contains(t, detail.Description, "Long form description.")
	assert.Equal(t, []string{"2 years experience required", "Bachelor degree preferred"}, detail.DescriptionItems)
	assert.Equal(t, "https://www.indeed.com/apply/abc123", detail.ApplyNowURL)
}

const rozeeSearchHTML = `
<html><body>
<div class="job">
  <h3 class="s-18"><a href="/job/clerk-lahore-123456">Clerk</a></h3>
  <div class="text-muted h6">Beta Traders</div>
  <div class="job-location">Lahore, Pakistan</div>
  <span class="text-success">PKR 50k - 70k</span>
  <p class="job-desc">Maintain records and files.</p>
</div>
<div class="job">
  <h3 class="s-18"><a href=""></a></h3>
</div>
</body></html>`

const rozeeDetailHTML = `
<html><body>
<h1>Office Clerk</h1>
<div class="ctitle font24"><bdi>Beta Traders</bdi></div>
<div class="jobd">
  <div class="row"><b>Job Shift</b><div class="col-lg-7">First Shift (Day)</div></div>
  <div class="row"><b>Job Type</b><div class="col-lg-7">Full Time/Permanent</div></div>
  <div class="row"><b>Salary</b><div class="col-lg-7">PKR 50,000 - 70,000</div></div>
</div>
<div id="jbDetail">
  <div class="jblk ul18"><p>General clerical work.<br><b>Key Responsibilities</b><br>- File documents<br>- Answer phones<br><b>Required Qualifications</b><br>- Intermediate education</p></div>
</div>
<div class="jblk">
  <h4 class="font18">Skills</h4>
  <div class="jcnt"><a class="label">MS Office</a><a class="label">Typing</a></div>
</div>
</body></html>`

func TestRozeeParseListings(t *testing.T) {
	c := NewRozeeCollector()

	listings, err := c.ParseListings(rozeeSearchHTML)
	require.NoError(t, err)
	require.Len(t, listings, 1)

	l := listings[0]
	assert.Equal(t, "Clerk", l.Title)
	assert.Equal(t, "https://www.rozee.pk/job/clerk-lahore-123456", l.Link)
	assert.Equal(t, "Beta Traders", l.Company)
	assert.Equal(t, "Lahore, Pakistan", l.Location)
	assert.Equal(t, "PKR 50k - 70k", l.SalaryHint)
	assert.Equal(t, "Maintain records and files.", l.Snippet)
}

func TestRozeeParseDetail(t *testing.T) {
	c := NewRozeeCollector()

	detail, err := c.ParseDetail(rozeeDetailHTML)
	require.NoError(t, err)

	assert.Equal(t, "Office Clerk", detail.Title)
	assert.Equal(t, "Beta Traders", detail.Company)
	assert.Equal(t, "First Shift (Day)", detail.Label("Job Shift"))
	assert.Equal(t, "PKR 50,000 - 70,000", detail.Salary)
	assert.Equal(t, []string{"File documents", "Answer phones"}, detail.KeyResponsibilities)
	assert.Equal(t, []string{"Intermediate education"}, detail.RequiredQualifications)
	assert.Equal(t, []string{"MS Office", "Typing"}, detail.Skills)
	assert.Contains(t, detail.Description, "General clerical work.")
}

const jobzSearchHTML = `
<html><body>
<div class="row_container">
  <div class="cell1"><span class="color_top_text">Job Title</span></div>
</div>
<div class="row_container">
  <div class="cell1"><a href="/computer-operator-jobs-123456.html">Computer Operator</a><p>Government department requires operators.</p></div>
  <div class="cell2">Government</div>
  <div class="cell3">Karachi</div>
  <div class="cell4">28 August 2026</div>
</div>
</body></html>`

const jobzDetailHTML = `
<html><body>
<h1>Computer Operator</h1>
<div class="job_detail">
  <div class="row_job_detail"><div class="job_detail_cell1">Organization:</div><div class="job_detail_cell2">Health Department</div></div>
  <div class="row_job_detail"><div class="job_detail_cell1">Job Type:</div><div class="job_detail_cell2">Full Time</div></div>
  <div class="row_job_detail"><div class="job_detail_cell1">Apply Online if applicable:</div><div class="job_detail_cell2"><a href="https://careers.example.com/apply">Apply Here</a></div></div>
  <div class="row_job_detail"><div class="job_detail_cell1">WhatsApp Channel:</div><div class="job_detail_cell2"><a href="https://whatsapp.com/channel/xyz">Follow</a></div></div>
</div>
<div class="job-description">
  <p>Operate departmental systems.</p>
  <ul><li>Matric minimum</li><li>Typing speed 40wpm</li></ul>
</div>
</body></html>`

func TestJobzParseListings(t *testing.T) {
	c := NewJobzCollector()

	listings, err := c.ParseListings(jobzSearchHTML)
	require.NoError(t, err)

	// The header row is skipped
	require.Len(t, listings, 1)

	l := listings[0]
	assert.Equal(t, "Computer Operator", l.Title)
	assert.Equal(t, "https://www.jobz.pk/computer-operator-jobs-123456.html", l.Link)
	assert.Equal(t, "Government", l.Industry)
	assert.Equal(t, "Karachi", l.Location)
	assert.Equal(t, "28 August 2026", l.PostedHint)
	assert.Equal(t, "Government department requires operators.", l.Snippet)
}

func TestJobzParseDetail(t *testing.T) {
	c := NewJobzCollector()

	detail, err := c.ParseDetail(jobzDetailHTML)
	require.NoError(t, err)

	assert.Equal(t, "Computer Operator", detail.Title)
	assert.Equal(t, "Health Department", detail.Company)
	assert.Equal(t, "Full Time", detail.Label("Job Type"))
	assert.Equal(t, "Apply Here", detail.Label("Apply Online if applicable"))
	assert.Equal(t, "https://careers.example.com/apply", detail.LabelLink("Apply Online if applicable"))
	assert.Equal(t, "https://whatsapp.com/channel/xyz", detail.LabelLink("WhatsApp Channel"))
	assert.Contains(t, detail.Description, "Operate departmental systems.")
	assert.Equal(t, []string{"Matric minimum", "Typing speed 40wpm"}, detail.BulletHighlights)
}

func TestCollectorRegistry(t *testing.T) {
	for _, source := range []string{"indeed", "rozee", "jobz"} {
		c, err := For(source)
		require.NoError(t, err)
		assert.Equal(t, source, c.Source())
		assert.NotEmpty(t, c.SearchURL("Clerk"))
	}

	_, err := For("monster")
	assert.Error(t, err)
}
