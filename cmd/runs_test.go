package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/flashfusion/dealflow-cli/internal/model"
)

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "12345678", truncateID("12345678-abcd-efgh"))
	assert.Equal(t, "short", truncateID("short"))
}

func TestFormatRunsList(t *testing.T) {
	created := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:        "aaaabbbb-1111-2222",
			Params:    model.RunParams{UserEmail: "ana@fund.example", Limit: 5},
			Status:    model.RunStatusCompleted,
			Report:    &model.RunReport{Processed: 1},
			CreatedAt: created,
			UpdatedAt: created.Add(42 * time.Second),
		},
		{
			ID:        "ccccdddd-3333-4444",
			Status:    model.RunStatusFailed,
			Error:     "no profiles found",
			CreatedAt: created,
			UpdatedAt: created,
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)
	out := buf.String()

	assert.Contains(t, out, "aaaabbbb")
	assert.Contains(t, out, "ana@fund.example")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "42s")
	assert.Contains(t, out, "all profiles")
	assert.Contains(t, out, "failed")
}

func TestFormatProfilesList(t *testing.T) {
	active := model.UserProfile{
		Email:            "ana@fund.example",
		SourcingCriteria: model.SourcingCriteria{TargetIndustries: []string{"fintech"}},
		LifecycleState:   model.LifecycleState{CurrentState: "active"},
	}
	noIndustries := model.UserProfile{
		Email:          "ben@fund.example",
		LifecycleState: model.LifecycleState{CurrentState: "active"},
	}
	dormant := model.UserProfile{
		Email:            "cam@fund.example",
		SourcingCriteria: model.SourcingCriteria{TargetIndustries: []string{"fintech"}},
		LifecycleState:   model.LifecycleState{CurrentState: model.LifecycleDormant},
	}

	raws := make([]json.RawMessage, 0, 3)
	for _, p := range []model.UserProfile{active, noIndustries, dormant} {
		raw, err := json.Marshal(p)
		assert.NoError(t, err)
		raws = append(raws, raw)
	}

	var buf bytes.Buffer
	formatProfilesList(&buf, raws)
	out := buf.String()

	assert.Contains(t, out, "ana@fund.example")
	assert.Contains(t, out, "yes")
	assert.Contains(t, out, "no (no target industries)")
	assert.Contains(t, out, "no (dormant)")
}
