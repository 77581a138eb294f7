package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/caremesh/matchd/internal/loadgen"
)

// Default configuration constants.
const (
	defaultNumReferrals   = 1000
	defaultNumOrgs        = 200
	defaultOpeningsPerOrg = 3
	defaultWorkers        = 2 // multiplier for runtime.NumCPU()
	defaultTimeout        = 30 * time.Second
	defaultTestTimeout    = 10 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numReferrals = flag.Int("referrals", defaultNumReferrals, "Number of referrals to generate and submit")
		numOrgs      = flag.Int("orgs", defaultNumOrgs, "Number of provider organizations to generate")
		openings     = flag.Int("openings", defaultOpeningsPerOrg, "Openings generated per organization")
		workers      = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile   = flag.String("output", "", "Output file for the generated snapshot (default: generated_snapshot_TIMESTAMP.json)")
		logFile      = flag.String("log", "", "Log file for test output (default: load_test_TIMESTAMP.log)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadgen.ShowHelp()
		return
	}

	// Setup logging
	if err := loadgen.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	// Create test configuration
	config := &loadgen.Config{
		BaseURL:        *baseURL,
		NumReferrals:   *numReferrals,
		NumOrgs:        *numOrgs,
		OpeningsPerOrg: *openings,
		Workers:        *workers,
		Timeout:        *timeout,
		OutputFile:     *outputFile,
		LogFile:        *logFile,
		Verbose:        *verbose,
	}

	// Run the test
	if err := loadgen.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Load test failed: " + err.Error() + "\n")
		return
	}
}
