package sourcing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/flashfusion/dealflow-cli/internal/model"
)

// candidateSchema is the JSON shape the discovery oracle must return.
// Every candidate field is optional so partial records survive decoding
// and are filtered later by validation.
var candidateSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "deals": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "company_name": {"type": "string"},
          "industry": {"type": "string"},
          "stage": {"type": "string"},
          "funding_raised": {"type": "number"},
          "valuation": {"type": "number"},
          "headquarters": {"type": "string"},
          "description": {"type": "string"},
          "source_url": {"type": "string"}
        }
      }
    }
  },
  "required": ["deals"]
}`)

// buildBrief renders a profile's sourcing criteria into the natural
// language discovery prompt sent to the oracle.
func buildBrief(c model.SourcingCriteria, limit int) string {
	structures := "any stage"
	if len(c.DealStructures) > 0 {
		structures = strings.Join(c.DealStructures, ", ")
	}
	geography := "global"
	if len(c.GeographicPreferences) > 0 {
		geography = strings.Join(c.GeographicPreferences, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Find up to %d real, currently active private-market investment opportunities matching these criteria:\n", limit)
	fmt.Fprintf(&b, "- Industries: %s\n", strings.Join(c.TargetIndustries, ", "))
	fmt.Fprintf(&b, "- Investment size: $%.0f to $%.0f\n", c.MinInvestmentSize, c.MaxInvestmentSize)
	fmt.Fprintf(&b, "- Deal structures: %s\n", structures)
	fmt.Fprintf(&b, "- Geography: %s\n", geography)
	b.WriteString("Only include deals announced or updated in the last 30 days. ")
	b.WriteString("Return factual data only; omit any field you cannot verify.")
	return b.String()
}

// discover queries the oracle with the profile's brief and decodes the
// returned candidate list.
func (r *Runner) discover(ctx context.Context, profile model.UserProfile, limit int) ([]model.CandidateRecord, error) {
	brief := buildBrief(profile.SourcingCriteria, limit)

	raw, err := r.oracle.Query(ctx, brief, candidateSchema)
	if err != nil {
		return nil, eris.Wrap(err, "oracle query")
	}

	var payload struct {
		Deals []model.CandidateRecord `json:"deals"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, eris.Wrap(err, "decode oracle response")
	}
	return payload.Deals, nil
}
