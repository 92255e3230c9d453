package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashfusion/dealflow-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return &PostgresStore{pool: mock}, mock
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), string(model.RunStatusRunning), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), model.RunParams{UserEmail: "a@b.com", Limit: 10})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status = \$1, report = \$2`).
		WithArgs(string(model.RunStatusCompleted), pgxmock.AnyArg(), pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.CompleteRun(context.Background(), "run-1", &model.RunReport{Processed: 3})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status = \$1, report = \$2`).
		WithArgs(string(model.RunStatusCompleted), pgxmock.AnyArg(), pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.CompleteRun(context.Background(), "missing", &model.RunReport{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	now := time.Now().UTC()
	params, _ := json.Marshal(model.RunParams{UserEmail: "a@b.com", Limit: 10})
	report, _ := json.Marshal(model.RunReport{Processed: 1})

	mock.ExpectQuery(`SELECT id, params, status, report, error, created_at, updated_at FROM runs WHERE id = \$1`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "params", "status", "report", "error", "created_at", "updated_at"}).
			AddRow("run-1", params, string(model.RunStatusCompleted), report, (*string)(nil), now, now))

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", run.Params.UserEmail)
	assert.Equal(t, model.RunStatusCompleted, run.Status)
	require.NotNil(t, run.Report)
	assert.Equal(t, 1, run.Report.Processed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, params, status, report, error, created_at, updated_at FROM runs WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	now := time.Now().UTC()
	params, _ := json.Marshal(model.RunParams{Limit: 10})

	mock.ExpectQuery(`SELECT id, params, status, report, error, created_at, updated_at FROM runs WHERE status = \$1 ORDER BY created_at DESC LIMIT \$2`).
		WithArgs(string(model.RunStatusFailed), 50).
		WillReturnRows(pgxmock.NewRows([]string{"id", "params", "status", "report", "error", "created_at", "updated_at"}).
			AddRow("run-9", params, string(model.RunStatusFailed), []byte(nil), ptr("boom"), now, now))

	runs, err := s.ListRuns(context.Background(), RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-9", runs[0].ID)
	assert.Equal(t, "boom", runs[0].Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func ptr[T any](v T) *T { return &v }
