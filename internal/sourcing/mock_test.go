package sourcing

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/flashfusion/dealflow-cli/internal/model"
	"github.com/flashfusion/dealflow-cli/pkg/entitystore"
	"github.com/flashfusion/dealflow-cli/pkg/scoring"
)

type entityUpdate struct {
	Entity  string
	ID      string
	Partial map[string]any
}

// mockEntityClient is an in-memory entity store. Profiles are served by
// List and by Filter on email; deals are matched by company_name.
type mockEntityClient struct {
	mu sync.Mutex

	profiles  []model.UserProfile
	deals     map[string]json.RawMessage
	listErr   error
	filterErr error
	createErr error
	updateErr error

	listCalls   int
	filterCalls int
	created     []model.StoredDeal
	updates     []entityUpdate
	nextID      int
}

func newMockEntityClient(profiles ...model.UserProfile) *mockEntityClient {
	return &mockEntityClient{
		profiles: profiles,
		deals:    map[string]json.RawMessage{},
	}
}

func (m *mockEntityClient) addDeal(id, company string) {
	m.deals[company] = json.RawMessage(fmt.Sprintf(`{"id":%q,"company_name":%q}`, id, company))
}

func (m *mockEntityClient) List(_ context.Context, entity, _ string, _ int) ([]json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	if entity != entitystore.EntityUserProfile {
		return nil, fmt.Errorf("unexpected list entity %q", entity)
	}
	out := make([]json.RawMessage, 0, len(m.profiles))
	for _, p := range m.profiles {
		raw, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

func (m *mockEntityClient) Filter(_ context.Context, entity string, where map[string]any, _ int) ([]json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filterCalls++
	if m.filterErr != nil {
		return nil, m.filterErr
	}
	switch entity {
	case entitystore.EntityUserProfile:
		email, _ := where["email"].(string)
		for _, p := range m.profiles {
			if p.Email == email {
				raw, err := json.Marshal(p)
				if err != nil {
					return nil, err
				}
				return []json.RawMessage{raw}, nil
			}
		}
		return nil, nil
	case entitystore.EntityDeal:
		name, _ := where["company_name"].(string)
		if raw, ok := m.deals[name]; ok {
			return []json.RawMessage{raw}, nil
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected filter entity %q", entity)
	}
}

func (m *mockEntityClient) Create(_ context.Context, entity string, fields any) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	if entity != entitystore.EntityDeal {
		return nil, fmt.Errorf("unexpected create entity %q", entity)
	}
	deal, ok := fields.(model.StoredDeal)
	if !ok {
		return nil, fmt.Errorf("unexpected create payload %T", fields)
	}
	m.nextID++
	id := fmt.Sprintf("deal-%d", m.nextID)
	m.created = append(m.created, deal)
	raw := json.RawMessage(fmt.Sprintf(`{"id":%q,"company_name":%q}`, id, deal.CompanyName))
	m.deals[deal.CompanyName] = raw
	return raw, nil
}

func (m *mockEntityClient) Update(_ context.Context, entity, id string, partial any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	fields, ok := partial.(map[string]any)
	if !ok {
		return fmt.Errorf("unexpected update payload %T", partial)
	}
	m.updates = append(m.updates, entityUpdate{Entity: entity, ID: id, Partial: fields})
	return nil
}

// mockOracle returns a canned discovery response and records prompts.
type mockOracle struct {
	mu       sync.Mutex
	response json.RawMessage
	err      error
	calls    int
	prompts  []string
}

func (m *mockOracle) Query(_ context.Context, prompt string, _ json.RawMessage) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func oracleDeals(deals ...model.CandidateRecord) json.RawMessage {
	raw, err := json.Marshal(map[string]any{"deals": deals})
	if err != nil {
		panic(err)
	}
	return raw
}

// mockScorer returns per-deal scores and can fail a configured number of
// times per deal before succeeding.
type mockScorer struct {
	mu        sync.Mutex
	scores    map[string]float64
	failFirst map[string]int
	err       error
	calls     map[string]int
}

func newMockScorer(scores map[string]float64) *mockScorer {
	return &mockScorer{
		scores:    scores,
		failFirst: map[string]int{},
		calls:     map[string]int{},
	}
}

func (m *mockScorer) Score(_ context.Context, req scoring.ScoreRequest) (*scoring.ScoreResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[req.DealID]++
	if m.err != nil {
		return nil, m.err
	}
	if m.failFirst[req.DealID] > 0 {
		m.failFirst[req.DealID]--
		return nil, fmt.Errorf("scoring service unavailable")
	}
	return &scoring.ScoreResponse{
		Scoring: scoring.ScoringResult{OverallScore: m.scores[req.DealID]},
	}, nil
}
