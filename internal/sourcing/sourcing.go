// Package sourcing implements the automated deal sourcing pipeline. For
// each subscribed user profile it queries the discovery oracle for
// candidate deals, deduplicates and persists them to the entity store,
// scores each deal against the profile, and updates the profile's
// discovery habit loop when a deal scores high enough.
package sourcing

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/flashfusion/dealflow-cli/internal/config"
	"github.com/flashfusion/dealflow-cli/internal/model"
	"github.com/flashfusion/dealflow-cli/pkg/entitystore"
	"github.com/flashfusion/dealflow-cli/pkg/oracle"
	"github.com/flashfusion/dealflow-cli/pkg/scoring"
)

// ErrNoProfiles is returned by Run when profile resolution yields no
// user profiles to process.
var ErrNoProfiles = eris.New("no profiles found")

// Runner drives one sourcing run across a set of user profiles.
type Runner struct {
	entities entitystore.Client
	oracle   oracle.Client
	scoring  scoring.Client
	cfg      config.SourcingConfig
	now      func() time.Time
}

// New creates a Runner wired to the given service clients.
func New(entities entitystore.Client, orc oracle.Client, scr scoring.Client, cfg config.SourcingConfig) *Runner {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 10
	}
	if cfg.MaxProfiles <= 0 {
		cfg.MaxProfiles = 100
	}
	if cfg.ProfileConcurrency <= 0 {
		cfg.ProfileConcurrency = 1
	}
	if cfg.ScoreAttempts <= 0 {
		cfg.ScoreAttempts = 3
	}
	return &Runner{
		entities: entities,
		oracle:   orc,
		scoring:  scr,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Run executes the pipeline for every resolved profile and returns the
// aggregate report. Profile-level failures are logged and surface as
// zero-result entries; only profile resolution errors fail the run.
func (r *Runner) Run(ctx context.Context, params model.RunParams) (*model.RunReport, error) {
	log := zap.L().With(zap.String("stage", "sourcing"))

	limit := params.Limit
	if limit <= 0 {
		limit = r.cfg.DefaultLimit
	}

	profiles, err := r.resolveProfiles(ctx, params.UserEmail)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, ErrNoProfiles
	}
	log.Info("resolved profiles", zap.Int("count", len(profiles)))

	results := make([]model.ProfileReport, len(profiles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.ProfileConcurrency)
	for i, profile := range profiles {
		g.Go(func() error {
			results[i] = r.processProfile(gctx, log, profile, limit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "sourcing pool")
	}

	report := &model.RunReport{
		Processed: len(results),
		Results:   results,
	}
	log.Info("run complete",
		zap.Int("processed", report.Processed))
	return report, nil
}

// resolveProfiles loads the target profiles: a single profile by email
// when one is given, otherwise all subscribed profiles most recently
// updated first, capped at MaxProfiles.
func (r *Runner) resolveProfiles(ctx context.Context, email string) ([]model.UserProfile, error) {
	var (
		raws []json.RawMessage
		err  error
	)
	if email != "" {
		raws, err = r.entities.Filter(ctx, entitystore.EntityUserProfile, map[string]any{"email": email}, 0)
	} else {
		raws, err = r.entities.List(ctx, entitystore.EntityUserProfile, "-updated_date", r.cfg.MaxProfiles)
	}
	if err != nil {
		return nil, eris.Wrap(err, "resolve profiles")
	}

	profiles := make([]model.UserProfile, 0, len(raws))
	for _, raw := range raws {
		var p model.UserProfile
		if err := json.Unmarshal(raw, &p); err != nil {
			zap.L().Warn("skipping undecodable profile record", zap.Error(err))
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// processProfile runs discovery, persistence, scoring, and engagement
// update for one profile. Any stage failure zeroes the profile's entry;
// a panic inside a stage is contained the same way.
func (r *Runner) processProfile(ctx context.Context, log *zap.Logger, profile model.UserProfile, limit int) (report model.ProfileReport) {
	report = model.ProfileReport{User: profile.Email}
	log = log.With(zap.String("user", profile.Email))

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("profile processing panicked", zap.Any("panic", rec))
			report = model.ProfileReport{User: profile.Email}
		}
	}()

	if reason, ok := eligible(profile); !ok {
		log.Info("skipping profile", zap.String("reason", reason))
		return report
	}

	candidates, err := r.discover(ctx, profile, limit)
	if err != nil {
		log.Error("discovery failed", zap.Error(err))
		return model.ProfileReport{User: profile.Email}
	}
	report.DealsFound = len(candidates)
	log.Info("discovered candidates", zap.Int("count", len(candidates)))

	persisted := r.persistCandidates(ctx, log, candidates)

	outcomes := r.scoreDeals(ctx, log, profile.Email, persisted)
	report.DealsScored = len(outcomes)

	var highIDs []string
	for _, o := range outcomes {
		if o.High() {
			highIDs = append(highIDs, o.DealID)
		}
	}
	report.HighScoreDeals = len(highIDs)

	if len(highIDs) > 0 {
		if err := r.recordEngagement(ctx, profile, highIDs); err != nil {
			log.Error("engagement update failed", zap.Error(err))
			return model.ProfileReport{User: profile.Email}
		}
		log.Info("engagement loop triggered", zap.Int("pending_deals", len(highIDs)))
	}
	return report
}

// eligible reports whether a profile should be sourced for, and the
// skip reason when it should not.
func eligible(p model.UserProfile) (string, bool) {
	if len(p.SourcingCriteria.TargetIndustries) == 0 {
		return "no target industries configured", false
	}
	if p.Dormant() {
		return "profile is dormant", false
	}
	return "", true
}
