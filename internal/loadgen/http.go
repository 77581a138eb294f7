package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/caremesh/matchd/internal/domain/model"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	return c.send(ctx, http.MethodPost, url, body)
}

// Put performs a PUT request with JSON body
func (c *HTTPClient) Put(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	return c.send(ctx, http.MethodPut, url, body)
}

func (c *HTTPClient) send(ctx context.Context, method, url string, body interface{}) (*http.Response, error) {
	jsonData, err := marshalJSON(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// marshalJSON marshals a struct to JSON
func marshalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// unmarshalJSON unmarshals JSON to a struct
func unmarshalJSON(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// loadSnapshot pushes the generated snapshot to the service.
func loadSnapshot(ctx context.Context, config *Config, snap model.Snapshot) error {
	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/snapshot"

	resp, err := client.Put(ctx, url, snap)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read snapshot response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("snapshot load failed with status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// jobRequest mirrors the POST /match-jobs body.
type jobRequest struct {
	JobID      string `json:"job_id"`
	ReferralID string `json:"referral_id"`
}

// submitJobs submits one match job per referral concurrently using worker pools
func submitJobs(ctx context.Context, config *Config, referrals []model.Referral, stats *Stats) error {
	log.Printf("submitting %d match jobs with %d workers...", len(referrals), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/match-jobs"

	// Counters for statistics
	var (
		successful int64
		duplicate  int64
		failed     int64
		submitted  int64
	)

	// Progress reporting
	var lastReport time.Time
	reportInterval := 1 * time.Second

	// Create worker pool
	refChan := make(chan model.Referral, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for ref := range refChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := submitSingleJob(ctx, client, url, ref.ID)

					// Update counters
					atomic.AddInt64(&submitted, 1)
					switch result {
					case "success":
						atomic.AddInt64(&successful, 1)
					case "duplicate":
						atomic.AddInt64(&duplicate, 1)
					case "failed":
						atomic.AddInt64(&failed, 1)
					}

					// Progress reporting
					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&submitted)
						succ := atomic.LoadInt64(&successful)
						dup := atomic.LoadInt64(&duplicate)
						fail := atomic.LoadInt64(&failed)

						if config.Verbose {
							log.Printf("progress: %d/%d submitted (success: %d, duplicate: %d, failed: %d)",
								total, len(referrals), succ, dup, fail)
						} else {
							fmt.Printf("\rsubmitted: %d/%d (success: %d, duplicate: %d, failed: %d)",
								total, len(referrals), succ, dup, fail)
						}
					}
				}
			}
		}()
	}

	// Send referrals to workers
	go func() {
		defer close(refChan)
		for _, ref := range referrals {
			select {
			case <-ctx.Done():
				return
			case refChan <- ref:
			}
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	// Final progress report
	if !config.Verbose {
		fmt.Println() // New line after progress indicator
	}

	// Update stats
	stats.JobsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.JobsSuccessful = int(atomic.LoadInt64(&successful))
	stats.JobsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.JobsFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`job submission completed:
   Successful: %d
   Duplicate: %d
   Failed: %d
`, stats.JobsSuccessful, stats.JobsDuplicate, stats.JobsFailed)

	return nil
}

// submitSingleJob submits one match job and returns the result
func submitSingleJob(ctx context.Context, client *HTTPClient, url, referralID string) string {
	resp, err := client.Post(ctx, url, jobRequest{ReferralID: referralID})
	if err != nil {
		return "failed"
	}

	// Read response body
	body, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	// Parse response based on status code
	switch resp.StatusCode {
	case StatusAccepted:
		// Accepted - new job
		var ack AckResponse
		if err := unmarshalJSON(body, &ack); err == nil && ack.Status == "accepted" {
			return "success"
		}
		return "success" // Assume success for 202 even if parsing fails
	case StatusOK:
		// OK - duplicate job
		var ack AckResponse
		if err := unmarshalJSON(body, &ack); err == nil && ack.Duplicate {
			return "duplicate"
		}
		return "duplicate" // Assume duplicate for 200 even if parsing fails
	default:
		// Error
		return "failed"
	}
}

// retrieveShortlists fetches the ranked shortlist for every referral and
// tallies how many produced matches.
func retrieveShortlists(ctx context.Context, config *Config, referrals []model.Referral, stats *Stats) error {
	log.Printf("retrieving %d shortlists with %d workers...", len(referrals), config.Workers)

	client := newHTTPClient(config.Timeout)

	var (
		retrieved int64
		empty     int64
		matches   int64
	)

	refChan := make(chan model.Referral, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for ref := range refChan {
				select {
				case <-ctx.Done():
					return
				default:
					outcome, err := fetchShortlist(ctx, client, config.BaseURL, ref.ID)
					if err != nil {
						continue
					}
					atomic.AddInt64(&retrieved, 1)
					if len(outcome.Results) == 0 {
						atomic.AddInt64(&empty, 1)
					}
					atomic.AddInt64(&matches, int64(len(outcome.Results)))
				}
			}
		}()
	}

	go func() {
		defer close(refChan)
		for _, ref := range referrals {
			select {
			case <-ctx.Done():
				return
			case refChan <- ref:
			}
		}
	}()

	wg.Wait()

	stats.ShortlistsRetrieved = int(atomic.LoadInt64(&retrieved))
	stats.ShortlistsEmpty = int(atomic.LoadInt64(&empty))
	stats.MatchesSeen = int(atomic.LoadInt64(&matches))

	log.Printf(`shortlist retrieval completed:
   Retrieved: %d
   Empty: %d
   Total matches: %d
`, stats.ShortlistsRetrieved, stats.ShortlistsEmpty, stats.MatchesSeen)

	return nil
}

// fetchShortlist fetches one referral's ranked shortlist.
func fetchShortlist(ctx context.Context, client *HTTPClient, baseURL, referralID string) (model.RankedOutcome, error) {
	var outcome model.RankedOutcome

	resp, err := client.Get(ctx, baseURL+"/referrals/"+referralID+"/matches")
	if err != nil {
		return outcome, fmt.Errorf("failed to fetch shortlist: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return outcome, fmt.Errorf("failed to read shortlist response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return outcome, fmt.Errorf("shortlist fetch failed with status: %d", resp.StatusCode)
	}
	if err := unmarshalJSON(body, &outcome); err != nil {
		return outcome, fmt.Errorf("failed to parse shortlist: %w", err)
	}
	return outcome, nil
}
