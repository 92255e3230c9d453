package model

import "time"

// HighScoreThreshold is the inclusive cutoff above which a scored deal
// triggers engagement-state changes.
const HighScoreThreshold = 70.0

// ScoreOutcome is the transient result of scoring one persisted deal.
// Deals whose scoring exhausted all retries produce no outcome at all.
type ScoreOutcome struct {
	DealID  string  `json:"deal_id"`
	Company string  `json:"company"`
	Score   float64 `json:"score"`
}

// High reports whether this outcome meets the engagement threshold.
func (o ScoreOutcome) High() bool {
	return o.Score >= HighScoreThreshold
}

// ProfileReport is the per-profile line of a run report. DealsFound counts
// raw oracle candidates before validation; DealsScored counts candidates
// that produced a ScoreOutcome.
type ProfileReport struct {
	User           string `json:"user"`
	DealsFound     int    `json:"deals_found"`
	DealsScored    int    `json:"deals_scored"`
	HighScoreDeals int    `json:"high_score_deals"`
}

// RunReport aggregates one pipeline invocation.
type RunReport struct {
	Processed int             `json:"processed"`
	Results   []ProfileReport `json:"results"`
}

// RunStatus is the lifecycle of a recorded pipeline run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunParams captures the request that started a run.
type RunParams struct {
	UserEmail string `json:"user_email,omitempty"`
	Limit     int    `json:"limit"`
}

// Run is a recorded pipeline invocation in the local history store.
type Run struct {
	ID        string     `json:"id"`
	Params    RunParams  `json:"params"`
	Status    RunStatus  `json:"status"`
	Report    *RunReport `json:"report,omitempty"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
