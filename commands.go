package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sklopivo/sklopivo.github.io/internal/archive"
	"github.com/sklopivo/sklopivo.github.io/internal/batch"
	"github.com/sklopivo/sklopivo.github.io/internal/brewfather"
	"github.com/sklopivo/sklopivo.github.io/internal/config"
	"github.com/sklopivo/sklopivo.github.io/internal/fsutil"
	"github.com/sklopivo/sklopivo.github.io/internal/monitoring"
	"github.com/sklopivo/sklopivo.github.io/internal/showcase"
	"github.com/sklopivo/sklopivo.github.io/internal/stats"
	"github.com/sklopivo/sklopivo.github.io/internal/timeutil"
	"github.com/sklopivo/sklopivo.github.io/internal/version"
)

func ensureParent(fsys fsutil.FileSystem, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		return fsys.MkdirAll(dir, 0o755)
	}
	return nil
}

// runFetch downloads every batch from Brewfather, writes the raw JSON
// dump, and records the run in the archive.
func runFetch(ctx context.Context, cfg *config.Config) error {
	userID := os.Getenv("BREWFATHER_USER_ID")
	apiKey := os.Getenv("BREWFATHER_API_KEY")
	if userID == "" || apiKey == "" {
		return fmt.Errorf("BREWFATHER_USER_ID and BREWFATHER_API_KEY must be set")
	}

	client, err := brewfather.NewClient(brewfather.Config{
		UserID:    userID,
		APIKey:    apiKey,
		BaseURL:   cfg.GetBaseURL(),
		PageLimit: cfg.GetPageLimit(),
		Throttle:  cfg.GetThrottle(),
	}, nil, nil)
	if err != nil {
		return err
	}

	clock := timeutil.RealClock{}
	start := clock.Now()
	raw, err := client.FetchAllBatches(ctx)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}
	monitoring.Logf("fetched %d batches in %s", len(raw), clock.Since(start))

	fsys := fsutil.OSFileSystem{}
	rawPath := cfg.GetRawPath()
	if err := ensureParent(fsys, rawPath); err != nil {
		return err
	}
	if err := brewfather.WriteRaw(fsys, rawPath, raw); err != nil {
		return err
	}

	batches, err := batch.ReadFile(fsys, rawPath)
	if err != nil {
		return fmt.Errorf("failed to reload raw dump: %w", err)
	}

	if err := ensureParent(fsys, cfg.GetArchivePath()); err != nil {
		return err
	}
	arch, err := archive.Open(cfg.GetArchivePath())
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer arch.Close()

	run, err := arch.RecordRun(start, rawPath, batches)
	if err != nil {
		return fmt.Errorf("failed to record fetch run: %w", err)
	}
	monitoring.Logf("recorded fetch run %s (%d batches)", run.ID, run.BatchCount)
	return nil
}

// runAnalyze aggregates the raw dump into the statistics report.
func runAnalyze(cfg *config.Config) error {
	fsys := fsutil.OSFileSystem{}

	batches, err := batch.ReadFile(fsys, cfg.GetRawPath())
	if err != nil {
		return err
	}

	report := stats.Aggregate(batches)
	if err := ensureParent(fsys, cfg.GetStatsPath()); err != nil {
		return err
	}
	if err := report.WriteFile(fsys, cfg.GetStatsPath()); err != nil {
		return err
	}
	monitoring.Logf("wrote statistics for %d batches to %s", report.TotalBatches, cfg.GetStatsPath())
	return nil
}

// runRender generates the static site from the statistics report: the
// chart page, the timeline PNG, and a copy of the report for static
// hosting.
func runRender(cfg *config.Config) error {
	fsys := fsutil.OSFileSystem{}

	report, err := stats.ReadFile(fsys, cfg.GetStatsPath())
	if err != nil {
		return err
	}

	siteDir := cfg.GetSiteDir()
	opts := showcase.Options{TopIngredients: cfg.GetTopIngredients()}
	if err := showcase.WriteHTML(fsys, siteDir, report, opts); err != nil {
		return err
	}
	if err := showcase.WriteTimelinePNG(siteDir, report); err != nil {
		return err
	}
	if err := report.WriteFile(fsys, filepath.Join(siteDir, "stats.json")); err != nil {
		return err
	}
	monitoring.Logf("rendered showcase site into %s", siteDir)
	return nil
}

// runAll runs the full pipeline in order.
func runAll(ctx context.Context, cfg *config.Config) error {
	if err := runFetch(ctx, cfg); err != nil {
		return err
	}
	if err := runAnalyze(cfg); err != nil {
		return err
	}
	return runRender(cfg)
}

// runRuns prints recent fetch runs from the archive, newest first.
func runRuns(cfg *config.Config, limit int) error {
	arch, err := archive.Open(cfg.GetArchivePath())
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer arch.Close()

	runs, err := arch.RecentRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no fetch runs recorded")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  %4d batches  %s\n",
			r.FetchedAt.Format("2006-01-02 15:04:05"), r.ID, r.BatchCount, r.RawPath)
	}
	return nil
}

// runServe previews the rendered site with the stats API.
func runServe(cfg *config.Config, addr string) error {
	return showcase.NewServer(cfg.GetSiteDir(), cfg.GetStatsPath()).ListenAndServe(addr)
}

func runVersion() error {
	fmt.Printf("brewstats %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
	return nil
}
