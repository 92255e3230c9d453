package sourcing

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/flashfusion/dealflow-cli/internal/model"
	"github.com/flashfusion/dealflow-cli/pkg/entitystore"
)

// recordEngagement marks the profile's discovery habit loop as active,
// bumps its trigger count, and replaces its pending deal list with this
// run's high scorers. All other engagement state on the profile is
// preserved by the merge.
func (r *Runner) recordEngagement(ctx context.Context, profile model.UserProfile, highIDs []string) error {
	loop := model.CurrentDiscoveryLoop(profile.EngagementState)

	merged := model.MergeEngagement(profile.EngagementState, model.EngagementPatch{
		HabitLoops: model.HabitLoopsPatch{
			Discovery: &model.DiscoveryLoop{
				Active:          true,
				TriggeredCount:  loop.TriggeredCount + 1,
				LastTriggeredAt: r.now().UTC(),
				PendingDeals:    highIDs,
			},
		},
	})

	err := r.entities.Update(ctx, entitystore.EntityUserProfile, profile.ID, map[string]any{
		"engagement_state": merged,
	})
	if err != nil {
		return eris.Wrapf(err, "update engagement state for %s", profile.Email)
	}
	return nil
}
