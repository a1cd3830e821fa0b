package scraper

// RawListing is one job posting as extracted from a search-results card.
// Everything is untyped already-extracted text; only Title and Link are
// required downstream. Fields beyond the common set are populated by the
// collectors that have them.
type RawListing struct {
	Title      string `json:"title"`
	Link       string `json:"link"`
	Company    string `json:"company,omitempty"`
	Location   string `json:"location,omitempty"`
	Snippet    string `json:"snippet,omitempty"`
	SalaryHint string `json:"salary_hint,omitempty"`
	PostedHint string `json:"posted_hint,omitempty"`

	// rozee cards expose a company profile link and a structured salary range
	CompanyLink string `json:"company_link,omitempty"`
	SalaryMin   int    `json:"salary_min,omitempty"`
	SalaryMax   int    `json:"salary_max,omitempty"`

	// jobz cards carry an industry column and a vacant-positions block
	Industry        string   `json:"industry,omitempty"`
	VacantPositions []string `json:"vacant_positions,omitempty"`
}

// RawDetail is the optional detail-page payload for one listing. A nil
// detail means enrichment was skipped or failed; the normalizers then fall
// back to the card fields.
type RawDetail struct {
	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
	CompanyURL  string `json:"company_url,omitempty"`
	Location    string `json:"location,omitempty"`
	Salary      string `json:"salary,omitempty"`
	PostedAt    string `json:"posted_at,omitempty"`
	Description string `json:"description,omitempty"`

	// Labels holds the structured label → value table rendered on the
	// detail page. LabelLinks carries the href for rows whose value is a
	// link (apply-online, WhatsApp channel, organization website).
	Labels     map[string]string `json:"labels,omitempty"`
	LabelLinks map[string]string `json:"label_links,omitempty"`

	ApplyNowURL      string `json:"apply_now_url,omitempty"`
	ExternalApplyURL string `json:"external_apply_url,omitempty"`

	// BenefitCandidates are raw benefit strings, possibly multi-line and
	// with boilerplate mixed in. DescriptionItems are the description's
	// bullet texts, used to derive experience/education hints.
	BenefitCandidates []string `json:"benefit_candidates,omitempty"`
	DescriptionItems  []string `json:"description_items,omitempty"`

	// rozee detail sections
	KeyResponsibilities     []string `json:"key_responsibilities,omitempty"`
	RequiredQualifications  []string `json:"required_qualifications,omitempty"`
	PreferredQualifications []string `json:"preferred_qualifications,omitempty"`
	Skills                  []string `json:"skills,omitempty"`
	AboutCompany            string   `json:"about_company,omitempty"`
	Views                   string   `json:"views,omitempty"`

	// jobz bullet highlights from the description body
	BulletHighlights []string `json:"bullet_highlights,omitempty"`
}

// Label returns the first non-empty value among the given label spellings.
func (d *RawDetail) Label(names ...string) string {
	if d == nil || d.Labels == nil {
		return ""
	}
	for _, name := range names {
		if v := d.Labels[name]; v != "" {
			return v
		}
	}
	return ""
}

// LabelLink returns the href captured for a linked label row.
func (d *RawDetail) LabelLink(name string) string {
	if d == nil || d.LabelLinks == nil {
		return ""
	}
	return d.LabelLinks[name]
}
