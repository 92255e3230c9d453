package sourcing

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/flashfusion/dealflow-cli/internal/model"
	"github.com/flashfusion/dealflow-cli/pkg/entitystore"
)

var errMissingID = eris.New("record missing id")

// persistedDeal is a stored deal that entered this run: either newly
// created or matched to an existing record by company name.
type persistedDeal struct {
	ID      string
	Company string
}

// persistCandidates validates each candidate, deduplicates against the
// entity store by exact company name, and creates records for the rest.
// Candidate-level failures are logged and skipped so one bad candidate
// never sinks the profile.
func (r *Runner) persistCandidates(ctx context.Context, log *zap.Logger, candidates []model.CandidateRecord) []persistedDeal {
	persisted := make([]persistedDeal, 0, len(candidates))
	for _, c := range candidates {
		if !c.Valid() {
			log.Debug("skipping incomplete candidate", zap.String("company", c.CompanyName))
			continue
		}

		matches, err := r.entities.Filter(ctx, entitystore.EntityDeal, map[string]any{"company_name": c.CompanyName}, 0)
		if err != nil {
			log.Warn("deal lookup failed, skipping candidate",
				zap.String("company", c.CompanyName), zap.Error(err))
			continue
		}

		if len(matches) > 0 {
			id, err := recordID(matches[0])
			if err != nil {
				log.Warn("existing deal record has no id, skipping candidate",
					zap.String("company", c.CompanyName), zap.Error(err))
				continue
			}
			log.Debug("reusing existing deal",
				zap.String("company", c.CompanyName), zap.String("deal_id", id))
			persisted = append(persisted, persistedDeal{ID: id, Company: c.CompanyName})
			continue
		}

		created, err := r.entities.Create(ctx, entitystore.EntityDeal, c.ToStoredDeal())
		if err != nil {
			log.Warn("deal creation failed, skipping candidate",
				zap.String("company", c.CompanyName), zap.Error(err))
			continue
		}
		id, err := recordID(created)
		if err != nil {
			log.Warn("created deal record has no id, skipping candidate",
				zap.String("company", c.CompanyName), zap.Error(err))
			continue
		}
		persisted = append(persisted, persistedDeal{ID: id, Company: c.CompanyName})
	}
	return persisted
}

// recordID extracts the id field from a raw entity store record.
func recordID(raw json.RawMessage) (string, error) {
	var rec struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return "", err
	}
	if rec.ID == "" {
		return "", errMissingID
	}
	return rec.ID, nil
}
