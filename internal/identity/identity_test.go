package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_QueryParamToken(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want string
	}{
		{"jk param", "https://x.test/viewjob?jk=abc123", "indeed-abc123"},
		{"vjk param wins over jk", "https://www.indeed.com/viewjob?vjk=v111&jk=j222", "indeed-v111"},
		{"vjk param alone", "https://www.indeed.com/jobs?q=clerk&vjk=9f2a77", "indeed-9f2a77"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Resolve("indeed", c.url))
		})
	}
}

func TestResolve_PathSegmentFallback(t *testing.T) {
	got := Resolve("indeed", "https://www.indeed.com/company/acme/jobs/clerk-7d41")
	assert.Equal(t, "indeed-clerk-7d41", got)
}

func TestResolve_NumericURLPattern(t *testing.T) {
	assert.Equal(t, "jobz-123456", Resolve("jobz", "https://www.jobz.pk/clerk-jobs-123456.html"))
	assert.Equal(t, "jobz-98765", Resolve("jobz", "https://www.jobz.pk/job-98765"))
}

func TestResolve_SanitizedURLToken(t *testing.T) {
	got := Resolve("rozee", "https://www.rozee.pk/job/clerk-lahore")
	assert.Equal(t, "rozee-www-rozee-pk-job-clerk-lahore", got)
}

func TestResolve_SanitizedTokenIsBounded(t *testing.T) {
	long := "https://www.rozee.pk/job/" + strings.Repeat("x", 200)
	got := Resolve("rozee", long)
	token := strings.TrimPrefix(got, "rozee-")
	assert.LessOrEqual(t, len(token), MaxSanitizedTokenLen)
	assert.NotEmpty(t, token)
}

func TestResolve_Deterministic(t *testing.T) {
	url := "https://www.jobz.pk/clerk-jobs-123456.html"
	assert.Equal(t, Resolve("jobz", url), Resolve("jobz", url))

	url = "https://www.rozee.pk/job/clerk-lahore"
	assert.Equal(t, Resolve("rozee", url), Resolve("rozee", url))
}

func TestResolve_RandomFallback(t *testing.T) {
	first := Resolve("rozee", "")
	second := Resolve("rozee", "")

	assert.True(t, strings.HasPrefix(first, "rozee-"))
	assert.True(t, strings.HasPrefix(second, "rozee-"))
	assert.NotEqual(t, first, second, "random fallback must not collide")
}

func TestSanitizeToken(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want string
	}{
		{"strips scheme", "https://x.test/a", "x-test-a"},
		{"collapses symbol runs", "x.test//a??b", "x-test-a-b"},
		{"trims dashes", "...x...", "x"},
		{"empty", "", ""},
		{"nothing survives", "///...", ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, SanitizeToken(c.url))
		})
	}
}
