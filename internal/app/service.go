// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	jobqueue "github.com/caremesh/matchd/internal/adapters/mq/queue"
	workerpool "github.com/caremesh/matchd/internal/adapters/mq/worker"
	"github.com/caremesh/matchd/internal/adapters/repository"
	"github.com/caremesh/matchd/internal/config"
	"github.com/caremesh/matchd/internal/domain/dedupe"
	"github.com/caremesh/matchd/internal/domain/eligibility"
	"github.com/caremesh/matchd/internal/domain/explain"
	"github.com/caremesh/matchd/internal/domain/matching"
	"github.com/caremesh/matchd/internal/domain/model"
	"github.com/caremesh/matchd/internal/domain/ranking"
	"github.com/caremesh/matchd/internal/domain/scoring"
	"github.com/caremesh/matchd/pkg/logger"
	"github.com/caremesh/matchd/pkg/metrics"
)

// Service implements the API dependencies for the placement-matching system.
// It owns the snapshot store, the result store, the job queue and the worker
// pool, and it is the Matcher the workers call back into.
type Service struct {
	mu sync.RWMutex

	// Core components
	snapshots repository.SnapshotStore
	results   repository.ResultStore
	deduper   dedupe.Deduper
	jobQueue  jobqueue.Queue
	assembler *matching.Assembler
	ranker    *ranking.Ranker
	pool      *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	engine      config.EngineConfig

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the match-job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithEngineConfig sets the matching engine configuration.
func WithEngineConfig(engine config.EngineConfig) Option {
	return func(s *Service) {
		s.engine = engine
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Default runtime sizing, matching the config package defaults.
const (
	defaultWorkerMultiplier = 2
	defaultQueueSize        = 10_000
	defaultDedupeSize       = 100_000
)

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * defaultWorkerMultiplier,
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
		engine: config.EngineConfig{
			Weights:     scoring.DefaultWeights(),
			Constraints: eligibility.DefaultConstraints(),
			Thresholds:  matching.DefaultThresholds(),
			Ranking:     ranking.DefaultConfig(),
		},
		stopCh: make(chan struct{}),
		logger: nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting matching service...")

	// Initialize components
	s.snapshots = repository.NewMemSnapshotStore()
	s.results = repository.NewMemResultStore()
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.jobQueue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
		jobqueue.WithBufferSize(s.queueSize),
	)
	s.assembler = matching.NewAssembler(
		matching.WithChecker(eligibility.NewChecker(
			eligibility.WithConstraints(s.engine.Constraints),
		)),
		matching.WithScorer(scoring.NewFactorScorer(
			scoring.WithWeights(s.engine.Weights),
		)),
		matching.WithThresholds(s.engine.Thresholds),
	)
	s.ranker = ranking.NewRanker(
		ranking.WithConfig(s.engine.Ranking),
	)

	// Create and start worker pool; the service itself is the matcher.
	s.pool = workerpool.NewPool(s.workerCount, s.jobQueue, s, s.results)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "matching service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping matching service...")

	// Stop worker pool
	if s.pool != nil {
		s.pool.Stop()
	}

	// Close queue
	if q, ok := s.jobQueue.(*jobqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	// Signal cleanup loop to stop
	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "matching service stopped")
}

// SeenAndRecord atomically checks if a job id was seen and records it if not.
// Returns true if the job was already seen, false if it was newly recorded.
// This is the ONLY method for deduplication - thread-safe and atomic.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordJobDuplicate()
	}
	return seen
}

// Unrecord removes a job ID from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue submits a match job for asynchronous processing. Returns false
// when the queue rejects the job (backpressure or shutdown).
func (s *Service) Enqueue(ctx context.Context, job model.MatchJob) bool {
	s.logger.Debug(ctx, "enqueueing match job",
		logger.String("jobID", job.JobID),
		logger.String("referralID", job.ReferralID),
	)
	ok := s.jobQueue.Enqueue(ctx, job)
	if ok {
		metrics.UpdateQueueSize(s.jobQueue.Len(ctx))
	}
	return ok
}

// LoadSnapshot replaces the reference data snapshot wholesale.
func (s *Service) LoadSnapshot(ctx context.Context, snap model.Snapshot) error {
	if err := s.snapshots.Replace(ctx, snap); err != nil {
		return err
	}
	s.logger.Info(ctx, "snapshot replaced",
		logger.Int("referrals", len(snap.Referrals)),
		logger.Int("openings", len(snap.Openings)),
		logger.Int("organizations", len(snap.Organizations)),
	)
	return nil
}

// MatchAndRank runs the full pipeline for one referral: eligibility and
// factor scoring over the current snapshot, then the fairness-aware ranking
// pass. Workers call this for every dequeued job.
func (s *Service) MatchAndRank(ctx context.Context, referralID string) (model.RankedOutcome, error) {
	referral, err := s.snapshots.Referral(ctx, referralID)
	if err != nil {
		return model.RankedOutcome{}, err
	}
	candidates, err := s.snapshots.Candidates(ctx)
	if err != nil {
		return model.RankedOutcome{}, err
	}

	outcome, err := s.assembler.Match(ctx, &referral, candidates)
	if err != nil {
		return model.RankedOutcome{}, err
	}

	providers, err := s.snapshots.Providers(ctx)
	if err != nil {
		return model.RankedOutcome{}, err
	}
	ranked := s.ranker.Rank(outcome.Results, providers)

	return model.RankedOutcome{
		ReferralID: referralID,
		Results:    ranked,
		Meta:       outcome.Meta,
	}, nil
}

// Matches returns the latest stored ranked shortlist for a referral.
func (s *Service) Matches(ctx context.Context, referralID string) (model.RankedOutcome, error) {
	return s.results.Get(ctx, referralID)
}

// Explain builds the on-demand rationale bundle for one stored ranked match.
func (s *Service) Explain(ctx context.Context, referralID, openingID string) (model.Explanation, error) {
	outcome, err := s.results.Get(ctx, referralID)
	if err != nil {
		return model.Explanation{}, err
	}

	var match *model.RankedMatch
	for i := range outcome.Results {
		if outcome.Results[i].OpeningID == openingID {
			match = &outcome.Results[i]
			break
		}
	}
	if match == nil {
		return model.Explanation{}, repository.ErrOpeningNotFound
	}

	referral, err := s.snapshots.Referral(ctx, referralID)
	if err != nil {
		return model.Explanation{}, err
	}

	expl := model.Explanation{
		ReferralID:  referralID,
		OpeningID:   openingID,
		Explanation: explain.MatchExplanation(match.ScoreBreakdown, match.TotalScore),
		RiskFlags:   explain.RiskFlags(&referral, &match.MatchResult),
	}

	// The opening may have left the snapshot since the run; the staleness
	// notes are skipped in that case, the rest still applies.
	var openingPtr *model.Opening
	if opening, err := s.snapshots.Opening(ctx, openingID); err == nil {
		openingPtr = &opening
	}
	ranked := explain.Explain(match, openingPtr, time.Now().UTC())
	expl.MatchedBecause = ranked.MatchedBecause
	expl.PotentialConcerns = ranked.PotentialConcerns

	return expl, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.jobQueue.Len(ctx)
		resultCount := s.results.Count(ctx)

		stats["queueLength"] = queueLen
		stats["resultCount"] = resultCount
		for k, v := range s.snapshots.Counts(ctx) {
			stats[k] = v
		}

		// Update metrics
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateResultCount(resultCount)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}
