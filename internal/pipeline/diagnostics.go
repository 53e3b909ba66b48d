package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/parcel-screening/internal/domain"
)

// Outcome is the full product of a screening run: the scored results plus
// everything an operator needs to trust them.
type Outcome struct {
	Results     []domain.ParcelResult `json:"results"`
	Diagnostics Diagnostics           `json:"diagnostics"`
}

// Diagnostics records what happened during a run, including the records that
// never made it to a result.
type Diagnostics struct {
	RunID        string              `json:"run_id"`
	ProgramKey   string              `json:"program_key"`
	Jurisdiction domain.Jurisdiction `json:"jurisdiction"`
	StartedAt    time.Time           `json:"started_at"`
	FinishedAt   time.Time           `json:"finished_at"`
	FallbackUsed bool                `json:"fallback_used"`
	Fetched      int                 `json:"fetched"`
	Screened     int                 `json:"screened"`
	Eligible     int                 `json:"eligible"`
	SkippedCount int                 `json:"skipped_count"`
	Skipped      []SkippedRecord     `json:"skipped,omitempty"`
	Notes        []string            `json:"notes,omitempty"`
}

// SkippedRecord names a record excluded during normalization and why.
type SkippedRecord struct {
	APN     string   `json:"apn,omitempty"`
	Source  string   `json:"source"`
	Reasons []string `json:"reasons"`
}

// collector accumulates diagnostics during a run. Workers append skips
// concurrently, so mutations are lock-guarded.
type collector struct {
	runID        string
	programKey   string
	jurisdiction domain.Jurisdiction
	startedAt    time.Time
	clock        clockwork.Clock

	// Written by the single-threaded fetch stage only.
	fetched      int
	fallbackUsed bool

	mu      sync.Mutex
	skipped []SkippedRecord
	notes   []string
}

func newCollector(programKey string, j domain.Jurisdiction, clock clockwork.Clock) *collector {
	return &collector{
		runID:        uuid.NewString(),
		programKey:   programKey,
		jurisdiction: j,
		startedAt:    clock.Now().UTC(),
		clock:        clock,
	}
}

func (c *collector) skip(record SkippedRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skipped = append(c.skipped, record)
}

func (c *collector) note(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = append(c.notes, msg)
}

// finish assembles the Outcome. Called once, after the workers are done.
func (c *collector) finish(results []domain.ParcelResult) *Outcome {
	eligible := 0
	for _, r := range results {
		if r.Eligible {
			eligible++
		}
	}
	return &Outcome{
		Results: results,
		Diagnostics: Diagnostics{
			RunID:        c.runID,
			ProgramKey:   c.programKey,
			Jurisdiction: c.jurisdiction,
			StartedAt:    c.startedAt,
			FinishedAt:   c.clock.Now().UTC(),
			FallbackUsed: c.fallbackUsed,
			Fetched:      c.fetched,
			Screened:     len(results),
			Eligible:     eligible,
			SkippedCount: len(c.skipped),
			Skipped:      c.skipped,
			Notes:        c.notes,
		},
	}
}
