// Package model defines the domain types shared by the sourcing pipeline.
package model

import "time"

// Lifecycle states a profile can be in. The pipeline only cares about
// dormant; everything else is eligible.
const LifecycleDormant = "dormant"

// UserProfile is a subscriber's saved sourcing criteria plus lifecycle and
// engagement state. Profiles are owned by the user-management subsystem;
// the pipeline reads criteria and lifecycle, and merge-writes
// engagement_state only.
type UserProfile struct {
	ID               string           `json:"id"`
	Email            string           `json:"email"`
	SourcingCriteria SourcingCriteria `json:"deal_sourcing_criteria"`
	LifecycleState   LifecycleState   `json:"lifecycle_state"`
	// EngagementState is kept raw so that sibling keys the pipeline does
	// not understand survive a merge-write untouched.
	EngagementState map[string]any `json:"engagement_state,omitempty"`
	UpdatedDate     time.Time      `json:"updated_date,omitempty"`
}

// SourcingCriteria describes what kinds of deals a subscriber wants to see.
type SourcingCriteria struct {
	TargetIndustries      []string `json:"target_industries,omitempty"`
	MinInvestmentSize     float64  `json:"min_investment_size,omitempty"`
	MaxInvestmentSize     float64  `json:"max_investment_size,omitempty"`
	DealStructures        []string `json:"deal_structures,omitempty"`
	GeographicPreferences []string `json:"geographic_preferences,omitempty"`
}

// LifecycleState tracks where the subscriber is in their lifecycle.
type LifecycleState struct {
	CurrentState string `json:"current_state,omitempty"`
}

// Dormant reports whether the profile should be skipped by batch jobs.
func (p UserProfile) Dormant() bool {
	return p.LifecycleState.CurrentState == LifecycleDormant
}
