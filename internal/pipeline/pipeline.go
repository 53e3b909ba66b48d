// Package pipeline orchestrates a screening batch: fetch raw parcels,
// normalize and enrich them, evaluate program eligibility, and score fit.
//
// Per batch the pipeline is a state machine:
//
//	FETCHING -> NORMALIZING -> EVALUATING -> SCORING -> DONE
//
// FAILED is reachable from FETCHING only. A fetch failure aborts the whole
// batch (unless the fallback policy substitutes synthetic data);
// normalization failures are per-record — the record is excluded and recorded
// as a skipped-record diagnostic, and the batch continues.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/parcel-screening/internal/domain"
	"github.com/couchcryptid/parcel-screening/internal/observability"
	"github.com/couchcryptid/parcel-screening/internal/program"
)

// State names a batch phase, surfaced in logs.
type State string

const (
	StateFetching    State = "FETCHING"
	StateNormalizing State = "NORMALIZING"
	StateEvaluating  State = "EVALUATING"
	StateScoring     State = "SCORING"
	StateDone        State = "DONE"
	StateFailed      State = "FAILED"
)

// ErrNoProcessableRecords distinguishes a batch where every fetched record
// was structurally invalid from a legitimate "no eligible parcels" result.
var ErrNoProcessableRecords = errors.New("no processable records in batch")

// Options tune a Pipeline.
type Options struct {
	Workers          int             // concurrent normalize/enrich workers; default 4
	MaxFetchAttempts int             // bounded fetch retries per source; default 3
	Clock            clockwork.Clock // nil means real time
}

// Pipeline screens parcels for a program over a jurisdiction. Safe for
// concurrent Run calls: all per-run state lives on the stack.
type Pipeline struct {
	registry *program.Registry
	live     domain.ParcelSource
	fallback domain.ParcelSource // nil disables the fallback policy
	soils    domain.SoilSource   // nil disables soil enrichment
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock
	workers  int
	attempts int
	ready    atomic.Bool
}

// New creates a Pipeline. fallback and soils may be nil; a nil fallback means
// a live fetch failure fails the batch, never a silent substitution.
func New(registry *program.Registry, live domain.ParcelSource, fallback domain.ParcelSource, soils domain.SoilSource, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.MaxFetchAttempts <= 0 {
		opts.MaxFetchAttempts = 3
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		registry: registry,
		live:     live,
		fallback: fallback,
		soils:    soils,
		logger:   logger,
		metrics:  metrics,
		clock:    opts.Clock,
		workers:  opts.Workers,
		attempts: opts.MaxFetchAttempts,
	}
}

// CheckReadiness returns nil once the pipeline has completed at least one
// screening run.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a screening run yet")
	}
	return nil
}

// Run screens a jurisdiction's parcels against a program and returns the
// scored results plus the run diagnostics. Errors: *domain.NotFoundError for
// an unknown program key, *domain.DataSourceError when the fetch fails and no
// fallback is configured, ErrNoProcessableRecords when every fetched record
// was invalid.
func (p *Pipeline) Run(ctx context.Context, programKey string, j domain.Jurisdiction) (*Outcome, error) {
	prog, err := p.registry.Get(programKey)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	diag := newCollector(programKey, j, p.clock)
	logger := p.logger.With("run_id", diag.runID, "program", programKey, "jurisdiction", j.String())

	logger.Info("screening run started", "state", StateFetching)
	raw, err := p.fetchStage(ctx, j, diag, logger)
	if err != nil {
		logger.Error("screening run failed", "state", StateFailed, "error", err)
		p.metrics.ScreeningRuns.WithLabelValues("failed").Inc()
		return nil, err
	}
	p.metrics.ParcelsFetched.Add(float64(len(raw)))
	diag.fetched = len(raw)

	logger.Info("fetch complete", "state", StateNormalizing, "records", len(raw))
	parcels := p.normalizeStage(ctx, raw, diag, logger)
	if len(raw) > 0 && len(parcels) == 0 {
		logger.Error("screening run failed", "state", StateFailed, "error", ErrNoProcessableRecords)
		p.metrics.ScreeningRuns.WithLabelValues("failed").Inc()
		return nil, ErrNoProcessableRecords
	}

	logger.Info("normalization complete", "state", StateEvaluating, "parcels", len(parcels))
	evaluations := make([]domain.Evaluation, len(parcels))
	for i, parcel := range parcels {
		evaluations[i] = domain.Evaluate(parcel, prog)
	}

	logger.Info("evaluation complete", "state", StateScoring)
	results := make([]domain.ParcelResult, len(parcels))
	for i, parcel := range parcels {
		fitScore, subScores := domain.Score(parcel, prog)
		results[i] = domain.NewParcelResult(parcel, programKey, evaluations[i], fitScore, subScores)
	}
	sortResults(results)

	outcome := diag.finish(results)
	p.recordRunMetrics(outcome, time.Since(start))
	p.ready.Store(true)
	logger.Info("screening run complete",
		"state", StateDone,
		"screened", len(results),
		"eligible", outcome.Diagnostics.Eligible,
		"skipped", outcome.Diagnostics.SkippedCount,
		"fallback_used", outcome.Diagnostics.FallbackUsed,
	)
	return outcome, nil
}

// fetchStage pulls raw records from the live source with bounded retries and
// applies the fallback policy. Fallback is an explicit, logged decision:
// the live failure is always surfaced in diagnostics before any substitution.
func (p *Pipeline) fetchStage(ctx context.Context, j domain.Jurisdiction, diag *collector, logger *slog.Logger) ([]domain.RawParcelRecord, error) {
	fetchStart := time.Now()
	defer func() {
		p.metrics.FetchDuration.Observe(time.Since(fetchStart).Seconds())
	}()

	records, err := p.fetchWithRetry(ctx, p.live, j)
	if err == nil {
		return records, nil
	}

	logger.Error("live fetch failed", "source", p.live.Name(), "error", err)
	if p.fallback == nil {
		return nil, err
	}

	logger.Warn("fallback policy engaged, substituting synthetic data", "source", p.fallback.Name())
	diag.note("live fetch from " + p.live.Name() + " failed: " + err.Error())
	diag.note("fallback to " + p.fallback.Name() + " engaged")

	records, err = p.fetchWithRetry(ctx, p.fallback, j)
	if err != nil {
		return nil, err
	}
	diag.fallbackUsed = true
	p.metrics.FallbackUses.Inc()
	return records, nil
}

// fetchWithRetry is the only retry loop in the system: the adapters
// themselves never retry. Attempts are bounded and backoff is capped so a
// dead source fails the batch quickly instead of hanging it.
func (p *Pipeline) fetchWithRetry(ctx context.Context, source domain.ParcelSource, j domain.Jurisdiction) ([]domain.RawParcelRecord, error) {
	backoff := 200 * time.Millisecond
	const maxBackoff = 5 * time.Second

	var lastErr error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		records, err := source.FetchParcels(ctx, j)
		if err == nil {
			return records, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if attempt < p.attempts {
			p.logger.Warn("fetch attempt failed, retrying",
				"source", source.Name(), "attempt", attempt, "error", err)
			if !sleepWithContext(ctx, backoff) {
				break
			}
			backoff = nextBackoff(backoff, maxBackoff)
		}
	}
	return nil, lastErr
}

// normalizeStage enriches and normalizes raw records across a worker pool.
// Each record is independent, so the only shared state is the read-only soil
// source and the lock-guarded diagnostics collector. Output preserves input
// order regardless of worker scheduling; duplicate APNs keep the first record.
func (p *Pipeline) normalizeStage(ctx context.Context, raw []domain.RawParcelRecord, diag *collector, logger *slog.Logger) []domain.Parcel {
	type slot struct {
		parcel domain.Parcel
		ok     bool
	}
	slots := make([]slot, len(raw))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				record, outcome := domain.EnrichSoil(ctx, raw[i], p.soils, logger)
				if outcome != domain.SoilEnrichSkipped {
					p.metrics.SoilLookups.WithLabelValues(outcome).Inc()
				}

				parcel, err := domain.Normalize(record)
				if err != nil {
					var invalid *domain.InvalidRecordError
					if errors.As(err, &invalid) {
						logger.Warn("skipping invalid record",
							"apn", invalid.APN, "source", record.Source, "violations", invalid.Violations)
						diag.skip(SkippedRecord{APN: invalid.APN, Source: record.Source, Reasons: invalid.Violations})
					} else {
						logger.Warn("skipping record", "source", record.Source, "error", err)
						diag.skip(SkippedRecord{Source: record.Source, Reasons: []string{err.Error()}})
					}
					p.metrics.RecordsSkipped.Inc()
					continue
				}
				slots[i] = slot{parcel: parcel, ok: true}
			}
		}()
	}
	for i := range raw {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	seen := make(map[string]bool, len(raw))
	parcels := make([]domain.Parcel, 0, len(raw))
	for _, s := range slots {
		if !s.ok {
			continue
		}
		if seen[s.parcel.APN] {
			logger.Warn("skipping duplicate APN", "apn", s.parcel.APN)
			diag.skip(SkippedRecord{APN: s.parcel.APN, Source: sourceNameOf(raw), Reasons: []string{"duplicate apn in batch"}})
			p.metrics.RecordsSkipped.Inc()
			continue
		}
		seen[s.parcel.APN] = true
		parcels = append(parcels, s.parcel)
	}
	return parcels
}

// sourceNameOf returns the batch's source name for diagnostics; batches are
// single-source, so the first record speaks for all of them.
func sourceNameOf(raw []domain.RawParcelRecord) string {
	if len(raw) == 0 {
		return ""
	}
	return raw[0].Source
}

func (p *Pipeline) recordRunMetrics(outcome *Outcome, elapsed time.Duration) {
	p.metrics.ScreeningRuns.WithLabelValues("completed").Inc()
	p.metrics.ParcelsScreened.Add(float64(len(outcome.Results)))
	p.metrics.ParcelsEligible.Add(float64(outcome.Diagnostics.Eligible))
	p.metrics.RunDuration.Observe(elapsed.Seconds())
}

// sortResults orders by fit score descending, then APN for a stable,
// reproducible report order.
func sortResults(results []domain.ParcelResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].FitScore != results[j].FitScore {
			return results[i].FitScore > results[j].FitScore
		}
		return results[i].Parcel.APN < results[j].Parcel.APN
	})
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
