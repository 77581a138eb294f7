package loadgen

import "time"

// Config holds configuration for the load test
type Config struct {
	BaseURL        string        // Base URL of the service
	NumReferrals   int           // Number of referrals to generate
	NumOrgs        int           // Number of provider organizations to generate
	OpeningsPerOrg int           // Openings generated per organization
	Workers        int           // Number of concurrent workers
	Timeout        time.Duration // HTTP request timeout
	OutputFile     string        // Output file for the generated snapshot
	LogFile        string        // Log file for test output
	Verbose        bool          // Enable verbose logging
}

// AckResponse represents the response from match-job submission
type AckResponse struct {
	Status    string `json:"status"`
	JobID     string `json:"job_id"`
	Duplicate bool   `json:"duplicate"`
}

// Stats holds test statistics
type Stats struct {
	ReferralsGenerated  int
	OpeningsGenerated   int
	JobsSubmitted       int
	JobsSuccessful      int
	JobsDuplicate       int
	JobsFailed          int
	ShortlistsRetrieved int
	ShortlistsEmpty     int
	MatchesSeen         int
	StartTime           time.Time
	EndTime             time.Time
	Duration            time.Duration
}
