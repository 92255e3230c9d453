package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidateRecord_Valid(t *testing.T) {
	tests := []struct {
		name      string
		candidate CandidateRecord
		want      bool
	}{
		{"both required fields", CandidateRecord{CompanyName: "Acme", Industry: "Technology"}, true},
		{"missing company name", CandidateRecord{Industry: "Technology"}, false},
		{"missing industry", CandidateRecord{CompanyName: "Acme"}, false},
		{"empty candidate", CandidateRecord{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.candidate.Valid())
		})
	}
}

func TestCandidateRecord_ToStoredDeal_Defaults(t *testing.T) {
	deal := CandidateRecord{CompanyName: "X", Industry: "Y"}.ToStoredDeal()

	assert.Equal(t, "X", deal.CompanyName)
	assert.Equal(t, "Y", deal.Industry)
	assert.Equal(t, DefaultStage, deal.Stage)
	assert.Equal(t, 0.0, deal.FundingRaised)
	assert.Equal(t, 0.0, deal.Valuation)
	assert.Equal(t, DefaultHeadquarters, deal.Headquarters)
	assert.Empty(t, deal.Description)
	assert.Empty(t, deal.SourceURL)
	assert.Equal(t, DealStatusNew, deal.Status)
	assert.Equal(t, SourceIntegration, deal.SourceIntegration)
	assert.Equal(t, SystemCreatedBy, deal.CreatedBy)
}

func TestCandidateRecord_ToStoredDeal_KeepsProvidedFields(t *testing.T) {
	deal := CandidateRecord{
		CompanyName:   "Acme Robotics",
		Industry:      "Robotics",
		Stage:         "series_a",
		FundingRaised: 12_000_000,
		Valuation:     60_000_000,
		Headquarters:  "Austin, TX",
		Description:   "Warehouse automation",
		SourceURL:     "https://example.com/acme",
	}.ToStoredDeal()

	assert.Equal(t, "series_a", deal.Stage)
	assert.Equal(t, 12_000_000.0, deal.FundingRaised)
	assert.Equal(t, 60_000_000.0, deal.Valuation)
	assert.Equal(t, "Austin, TX", deal.Headquarters)
	assert.Equal(t, "Warehouse automation", deal.Description)
	assert.Equal(t, "https://example.com/acme", deal.SourceURL)
}
