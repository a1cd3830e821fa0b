package models

import (
	"time"
)

// JobDetails facet keys. Normalizers only emit keys from this set, and
// empty values are never stored.
const (
	DetailJobType           = "job_type"
	DetailShiftAndSchedule  = "shift_and_schedule"
	DetailWorkSetting       = "work_setting"
	DetailWorkplaceType     = "workplace_type"
	DetailCompensation      = "compensation"
	DetailContractType      = "contract_type"
	DetailSecurityClearance = "security_clearance"
	DetailTravelRequirement = "travel_requirement"
	DetailIndustry          = "industry"
	DetailFunctionalArea    = "functional_area"
	DetailTotalPositions    = "total_positions"
	DetailGender            = "gender"
	DetailCareerLevel       = "career_level"
	DetailApplyBefore       = "apply_before"
	DetailPostedOn          = "posted_on"
)

// KnownDetailFacets is the closed set of facet keys a normalizer may emit.
var KnownDetailFacets = map[string]bool{
	DetailJobType:           true,
	DetailShiftAndSchedule:  true,
	DetailWorkSetting:       true,
	DetailWorkplaceType:     true,
	DetailCompensation:      true,
	DetailContractType:      true,
	DetailSecurityClearance: true,
	DetailTravelRequirement: true,
	DetailIndustry:          true,
	DetailFunctionalArea:    true,
	DetailTotalPositions:    true,
	DetailGender:            true,
	DetailCareerLevel:       true,
	DetailApplyBefore:       true,
	DetailPostedOn:          true,
}

// JobRecord is the canonical normalized representation of a scraped job
// posting. String fields are empty rather than absent when a source does
// not provide them, and JobDetails/Benefits are always non-nil.
type JobRecord struct {
	JobID             string            `json:"job_id"`
	Source            string            `json:"source"`
	SearchRole        string            `json:"search_role"`
	JobRole           string            `json:"job_role"`
	CompanyName       string            `json:"company_name"`
	CompanyProfileURL string            `json:"company_profile_url"`
	ApplyNowURL       string            `json:"apply_now_url"`
	ExternalApplyURL  string            `json:"external_apply_url"`
	DetailURL         string            `json:"detail_url"`
	Location          string            `json:"location"`
	Salary            string            `json:"salary"`
	PostedAt          string            `json:"posted_at"`
	JobDetails        map[string]string `json:"job_details"`
	Benefits          []string          `json:"benefits"`
	JobDescription    string            `json:"job_description"`
	Experience        string            `json:"experience"`
	Education         string            `json:"education"`

	// Error carries the enrichment failure message for records persisted
	// degraded with summary-only fields.
	Error string `json:"error,omitempty"`

	PublishedToWordPress bool       `json:"published_to_wordpress"`
	WordPressPostID      int64      `json:"wordpress_post_id,omitempty"`
	WordPressPostURL     string     `json:"wordpress_post_url,omitempty"`
	PublishedAt          *time.Time `json:"published_at,omitempty"`

	ScrapedAt time.Time `json:"scraped_at"`
}

// NewJobRecord returns a record with its collection fields initialized so
// callers never have to nil-check details or benefits.
func NewJobRecord(source, searchRole string) *JobRecord {
	return &JobRecord{
		Source:     source,
		SearchRole: searchRole,
		JobDetails: make(map[string]string),
		Benefits:   []string{},
		ScrapedAt:  time.Now().UTC(),
	}
}

// HasIdentity reports whether the record carries a usable stable identifier.
func (j *JobRecord) HasIdentity() bool {
	return j.JobID != ""
}

// SetDetail stores a facet value, dropping unknown facets and empty values.
func (j *JobRecord) SetDetail(key, value string) {
	if value == "" || !KnownDetailFacets[key] {
		return
	}
	if j.JobDetails == nil {
		j.JobDetails = make(map[string]string)
	}
	j.JobDetails[key] = value
}

// BestApplyURL prefers the external application link when present.
func (j *JobRecord) BestApplyURL() string {
	if j.ExternalApplyURL != "" {
		return j.ExternalApplyURL
	}
	if j.ApplyNowURL != "" {
		return j.ApplyNowURL
	}
	return j.DetailURL
}
