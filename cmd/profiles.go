package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/flashfusion/dealflow-cli/internal/model"
	"github.com/flashfusion/dealflow-cli/pkg/entitystore"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List subscriber profiles and their sourcing eligibility",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate(); err != nil {
			return err
		}
		entities := entitystore.NewClient(cfg.Entity.Key, cfg.Entity.BaseURL,
			entitystore.WithRateLimit(cfg.Entity.RateLimit))

		raws, err := entities.List(ctx, entitystore.EntityUserProfile, "-updated_date", cfg.Sourcing.MaxProfiles)
		if err != nil {
			return eris.Wrap(err, "list profiles")
		}
		if len(raws) == 0 {
			fmt.Fprintln(os.Stderr, "No profiles found.")
			return nil
		}

		formatProfilesList(os.Stdout, raws)
		return nil
	},
}

// formatProfilesList writes a tabular eligibility dry-run to w.
func formatProfilesList(out io.Writer, raws []json.RawMessage) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "EMAIL\tINDUSTRIES\tSTATE\tELIGIBLE")
	_, _ = fmt.Fprintln(w, "-----\t----------\t-----\t--------")

	for _, raw := range raws {
		var p model.UserProfile
		if err := json.Unmarshal(raw, &p); err != nil {
			_, _ = fmt.Fprintf(w, "?\t\t\tno (undecodable record)\n")
			continue
		}

		eligible := "yes"
		switch {
		case len(p.SourcingCriteria.TargetIndustries) == 0:
			eligible = "no (no target industries)"
		case p.Dormant():
			eligible = "no (dormant)"
		}

		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			p.Email,
			len(p.SourcingCriteria.TargetIndustries),
			p.LifecycleState.CurrentState,
			eligible,
		)
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}
