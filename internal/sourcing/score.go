package sourcing

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/flashfusion/dealflow-cli/internal/model"
	"github.com/flashfusion/dealflow-cli/internal/resilience"
	"github.com/flashfusion/dealflow-cli/pkg/scoring"
)

// scoreDeals requests a score for each persisted deal on behalf of the
// user. Each deal gets a bounded number of attempts; when attempts are
// exhausted the deal simply produces no outcome for this run.
func (r *Runner) scoreDeals(ctx context.Context, log *zap.Logger, userEmail string, deals []persistedDeal) []model.ScoreOutcome {
	policy := resilience.Policy{
		MaxAttempts:    r.cfg.ScoreAttempts,
		InitialBackoff: time.Duration(r.cfg.ScoreBackoffMs) * time.Millisecond,
		ShouldRetry:    resilience.RetryAll,
		OnRetry:        resilience.Logger("scoring", "score"),
	}

	outcomes := make([]model.ScoreOutcome, 0, len(deals))
	for _, d := range deals {
		resp, err := resilience.Do(ctx, policy, func(ctx context.Context) (*scoring.ScoreResponse, error) {
			return r.scoring.Score(ctx, scoring.ScoreRequest{
				DealID:    d.ID,
				UserEmail: userEmail,
			})
		})
		if err != nil {
			log.Warn("scoring attempts exhausted, skipping deal",
				zap.String("deal_id", d.ID),
				zap.String("company", d.Company),
				zap.Error(err))
			continue
		}

		outcomes = append(outcomes, model.ScoreOutcome{
			DealID:  d.ID,
			Company: d.Company,
			Score:   resp.Scoring.OverallScore,
		})
	}
	return outcomes
}
