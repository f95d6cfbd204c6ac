package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sklopivo/sklopivo.github.io/internal/config"
	"github.com/sklopivo/sklopivo.github.io/internal/fsutil"
	"github.com/sklopivo/sklopivo.github.io/internal/monitoring"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

func strPtr(s string) *string { return &s }

func pipelineConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		RawPath:     strPtr(filepath.Join(dir, "data", "raw.json")),
		StatsPath:   strPtr(filepath.Join(dir, "data", "stats.json")),
		SiteDir:     strPtr(filepath.Join(dir, "site")),
		ArchivePath: strPtr(filepath.Join(dir, "data", "archive.db")),
	}
}

const rawFixture = `[
  {"_id": "b-1", "name": "West Coast", "status": "Completed",
   "style": "IPA", "brewDate": 1672567200000, "measuredAbv": 6.5,
   "recipe": {"hops": [{"name": "Cascade", "amount": 0.05}]}},
  {"_id": "b-2", "name": "Mystery", "status": "Archived"}
]`

func TestAnalyzeThenRender(t *testing.T) {
	cfg := pipelineConfig(t)

	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.GetRawPath()), 0o755))
	require.NoError(t, os.WriteFile(cfg.GetRawPath(), []byte(rawFixture), 0o644))

	require.NoError(t, runAnalyze(cfg))

	data, err := os.ReadFile(cfg.GetStatsPath())
	require.NoError(t, err)

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &report))
	assert.EqualValues(t, 2, report["total_batches"])
	styles := report["styles"].(map[string]interface{})
	assert.EqualValues(t, 1, styles["IPA"])
	assert.EqualValues(t, 1, styles["Unknown"])

	require.NoError(t, runRender(cfg))
	assert.FileExists(t, filepath.Join(cfg.GetSiteDir(), "index.html"))
	assert.FileExists(t, filepath.Join(cfg.GetSiteDir(), "stats.json"))
	assert.FileExists(t, filepath.Join(cfg.GetSiteDir(), "timeline.png"))
}

func TestAnalyzeMissingRawFileFails(t *testing.T) {
	cfg := pipelineConfig(t)
	assert.Error(t, runAnalyze(cfg))
}

func TestRunFetchRequiresCredentials(t *testing.T) {
	t.Setenv("BREWFATHER_USER_ID", "")
	t.Setenv("BREWFATHER_API_KEY", "")

	err := runFetch(t.Context(), pipelineConfig(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BREWFATHER_USER_ID")
}

func TestEnsureParent(t *testing.T) {
	dir := t.TempDir()
	fsys := fsutil.OSFileSystem{}

	path := filepath.Join(dir, "a", "b", "out.json")
	require.NoError(t, ensureParent(fsys, path))
	assert.DirExists(t, filepath.Join(dir, "a", "b"))

	// Bare filenames have no parent to create.
	require.NoError(t, ensureParent(fsys, "out.json"))
}
