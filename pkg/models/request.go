package models

// HarvestRequest asks the service to run a scrape-and-store pass.
// Roles defaults to the configured role list when empty, and Sources
// defaults to every registered site collector.
type HarvestRequest struct {
	Roles   []string        `json:"roles,omitempty" validate:"omitempty,max=50,dive,min=2,max=100"`
	Sources []string        `json:"sources,omitempty" validate:"omitempty,dive,oneof=indeed rozee jobz"`
	Options *HarvestOptions `json:"options,omitempty"`
}

// HarvestOptions carries per-request overrides. PublishSite selects the
// WordPress target for the post-harvest publish pass when publishing is
// enabled.
type HarvestOptions struct {
	Engine      string `json:"engine,omitempty" validate:"omitempty,oneof=static headed firecrawl"`
	MaxPerRole  int    `json:"max_per_role,omitempty" validate:"omitempty,min=1,max=200"`
	SkipDetails bool   `json:"skip_details,omitempty"`
	TimeoutSecs int    `json:"timeout,omitempty" validate:"omitempty,min=5,max=600"`
	PublishSite string `json:"publish_site,omitempty" validate:"omitempty,oneof=primary secondary"`
}

// PublishRequest asks the service to push stored, unpublished records to
// the configured WordPress sites.
type PublishRequest struct {
	Limit int    `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
	Site  string `json:"site,omitempty" validate:"omitempty,oneof=primary secondary"`
}
