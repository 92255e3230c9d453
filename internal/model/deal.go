package model

// Defaults applied when the oracle omits optional candidate fields.
const (
	DefaultStage        = "seed"
	DefaultHeadquarters = "Unknown"
)

// DealStatusNew is the status every pipeline-created deal starts in.
const DealStatusNew = "new"

// SourceIntegration tags deals created by this pipeline so they can be
// distinguished from manually entered ones.
const SourceIntegration = "automated_deal_sourcing"

// SystemCreatedBy marks records created by the batch job rather than a user.
const SystemCreatedBy = "system"

// CandidateRecord is a raw, unpersisted result from the discovery oracle.
// Every field is optional in the wire format; the oracle may omit any.
type CandidateRecord struct {
	CompanyName   string  `json:"company_name,omitempty"`
	Industry      string  `json:"industry,omitempty"`
	Stage         string  `json:"stage,omitempty"`
	FundingRaised float64 `json:"funding_raised,omitempty"`
	Valuation     float64 `json:"valuation,omitempty"`
	Headquarters  string  `json:"headquarters,omitempty"`
	Description   string  `json:"description,omitempty"`
	SourceURL     string  `json:"source_url,omitempty"`
}

// Valid reports whether the candidate carries the two required fields.
// Anything else may be defaulted; name and industry cannot.
func (c CandidateRecord) Valid() bool {
	return c.CompanyName != "" && c.Industry != ""
}

// StoredDeal is the canonical persisted form of a candidate.
type StoredDeal struct {
	ID                string  `json:"id,omitempty"`
	CompanyName       string  `json:"company_name"`
	Industry          string  `json:"industry"`
	Stage             string  `json:"stage"`
	FundingRaised     float64 `json:"funding_raised"`
	Valuation         float64 `json:"valuation"`
	Headquarters      string  `json:"headquarters"`
	Description       string  `json:"description"`
	SourceURL         string  `json:"source_url"`
	Status            string  `json:"status"`
	SourceIntegration string  `json:"source_integration"`
	CreatedBy         string  `json:"created_by"`
}

// ToStoredDeal maps a validated candidate to a StoredDeal with defaults
// applied to every optional field.
func (c CandidateRecord) ToStoredDeal() StoredDeal {
	d := StoredDeal{
		CompanyName:       c.CompanyName,
		Industry:          c.Industry,
		Stage:             c.Stage,
		FundingRaised:     c.FundingRaised,
		Valuation:         c.Valuation,
		Headquarters:      c.Headquarters,
		Description:       c.Description,
		SourceURL:         c.SourceURL,
		Status:            DealStatusNew,
		SourceIntegration: SourceIntegration,
		CreatedBy:         SystemCreatedBy,
	}
	if d.Stage == "" {
		d.Stage = DefaultStage
	}
	if d.Headquarters == "" {
		d.Headquarters = DefaultHeadquarters
	}
	return d
}
