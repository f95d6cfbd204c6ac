package archive

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sklopivo/sklopivo.github.io/internal/batch"
	"github.com/sklopivo/sklopivo.github.io/internal/monitoring"
)

func init() {
	monitoring.SetLogger(nil)
}

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "brewstats.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }

func TestOpenAppliesMigrations(t *testing.T) {
	a := openTestArchive(t)

	// Fresh database answers queries against the migrated schema.
	runs, err := a.RecentRuns(5)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brewstats.db")

	a, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	// Reopening must not re-run or trip over applied migrations.
	a, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, a.Close())
}

func TestRecordRunStoresRunAndBatches(t *testing.T) {
	a := openTestArchive(t)

	brewMillis := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	batches := []batch.Batch{
		{ID: "b-1", Name: "Pale Ale", Style: strPtr("IPA"), Status: "Completed",
			BrewDate: &brewMillis, MeasuredABV: floatPtr(5.5)},
		{ID: "b-2", Name: "Mystery"},
		{Name: "no id, skipped"},
	}

	fetchedAt := time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC)
	run, err := a.RecordRun(fetchedAt, "data/raw.json", batches)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 3, run.BatchCount)

	stored, err := a.BatchCountForRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored, "rows without an id are not stored")

	runs, err := a.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, "data/raw.json", runs[0].RawPath)
	assert.True(t, runs[0].FetchedAt.Equal(fetchedAt))
}

func TestRecentRunsNewestFirst(t *testing.T) {
	a := openTestArchive(t)

	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := a.RecordRun(base.AddDate(0, 0, i), "raw.json", nil)
		require.NoError(t, err)
	}

	runs, err := a.RecentRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.True(t, runs[0].FetchedAt.After(runs[1].FetchedAt))
}
