package loadgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caremesh/matchd/internal/domain/model"
	"github.com/caremesh/matchd/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete matching load test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting matchd load test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("referrals", config.NumReferrals),
		logger.Int("organizations", config.NumOrgs),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate the reference snapshot
	snap := generateSnapshot(ctx, config, stats)

	// Step 3: Load the snapshot into the service
	if err := loadSnapshot(ctx, config, snap); err != nil {
		return fmt.Errorf("snapshot load failed: %w", err)
	}

	// Step 4: Submit match jobs concurrently
	if err := submitJobs(ctx, config, snap.Referrals, stats); err != nil {
		return fmt.Errorf("job submission failed: %w", err)
	}

	// Step 5: Wait for processing
	logger.Get().Info(ctx, "waiting for match jobs to be processed")
	time.Sleep(ProcessingDelay)

	// Step 6: Retrieve ranked shortlists concurrently
	if err := retrieveShortlists(ctx, config, snap.Referrals, stats); err != nil {
		return fmt.Errorf("shortlist retrieval failed: %w", err)
	}

	// Step 7: Save the snapshot to file for replay
	if err := saveSnapshotToFile(ctx, config, snap); err != nil {
		logger.Get().Warn(ctx, "failed to save snapshot to file", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "load test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveSnapshotToFile saves the generated snapshot to a JSON file so a run
// can be replayed against a fresh service.
func saveSnapshotToFile(ctx context.Context, config *Config, snap model.Snapshot) error {
	// Determine output filename
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_snapshot_" + timestamp + ".json"
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := marshalJSON(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(filename, data, 0600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	logger.Get().Info(ctx, "snapshot saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, jobsPerSecond float64

	if stats.JobsSubmitted > 0 {
		successRate = float64(stats.JobsSuccessful) / float64(stats.JobsSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		jobsPerSecond = float64(stats.JobsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("referralsGenerated", stats.ReferralsGenerated),
		logger.Int("openingsGenerated", stats.OpeningsGenerated),
		logger.Int("jobsSubmitted", stats.JobsSubmitted),
		logger.Int("jobsSuccessful", stats.JobsSuccessful),
		logger.Int("jobsDuplicate", stats.JobsDuplicate),
		logger.Int("jobsFailed", stats.JobsFailed),
		logger.Int("shortlistsRetrieved", stats.ShortlistsRetrieved),
		logger.Int("shortlistsEmpty", stats.ShortlistsEmpty),
		logger.Int("matchesSeen", stats.MatchesSeen),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("jobsPerSecond", jobsPerSecond))
}
