package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/investor-alpha/holdings-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_RecordAndListRuns(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run := &model.PipelineRun{
		Fund:       "Scion",
		CIK:        "0001649339",
		Status:     model.RunStatusOK,
		FilingDate: "2024-11-14",
		Holdings:   13,
		OutputPath: "data/processed/Scion_2024-11-14.csv",
	}
	require.NoError(t, st.RecordRun(ctx, run))

	// RecordRun fills in identity and timestamp.
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())

	runs, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "Scion", runs[0].Fund)
	assert.Equal(t, model.RunStatusOK, runs[0].Status)
	assert.Equal(t, 13, runs[0].Holdings)
	assert.Equal(t, "data/processed/Scion_2024-11-14.csv", runs[0].OutputPath)
}

func TestSQLite_ListRuns_Filters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.RecordRun(ctx, &model.PipelineRun{
		Fund: "Scion", CIK: "1", Status: model.RunStatusOK,
	}))
	require.NoError(t, st.RecordRun(ctx, &model.PipelineRun{
		Fund: "Scion", CIK: "1", Status: model.RunStatusSkipped, SkipReason: model.SkipNoFiling,
	}))
	require.NoError(t, st.RecordRun(ctx, &model.PipelineRun{
		Fund: "Baupost", CIK: "2", Status: model.RunStatusOK,
	}))

	byFund, err := st.ListRuns(ctx, RunFilter{Fund: "Scion"})
	require.NoError(t, err)
	assert.Len(t, byFund, 2)

	skipped, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusSkipped})
	require.NoError(t, err)
	require.Len(t, skipped, 1)
	assert.Equal(t, model.SkipNoFiling, skipped[0].SkipReason)

	both, err := st.ListRuns(ctx, RunFilter{Fund: "Scion", Status: model.RunStatusOK})
	require.NoError(t, err)
	assert.Len(t, both, 1)

	limited, err := st.ListRuns(ctx, RunFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSQLite_ListRuns_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)

	runs, err := st.ListRuns(context.Background(), RunFilter{Fund: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestSQLite_Migrate_Idempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	assert.NoError(t, st.Migrate(context.Background()))
}
