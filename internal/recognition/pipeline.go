package recognition

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// Detector hands the pipeline the faces visible in the current frame as
// fixed-length embeddings. Camera capture and the embedding model live
// behind this interface; the core never sees pixels.
type Detector interface {
	// Detect returns one DetectionEvent per face in the current frame.
	// An empty slice means no faces; an error means the frame was lost.
	Detect(ctx context.Context) ([]DetectionEvent, error)
	// Close releases the underlying capture resource.
	Close() error
}

// Outcome describes what happened to a single detection.
type Outcome struct {
	Match    MatchResult
	Accepted bool
	Record   *database.AttendanceRecord
	Err      error
}

// Stats are cumulative pipeline counters, safe for concurrent reads.
type Stats struct {
	Processed  uint64 `json:"processed"`
	Matched    uint64 `json:"matched"`
	Unknown    uint64 `json:"unknown"`
	Accepted   uint64 `json:"accepted"`
	Suppressed uint64 `json:"suppressed"`
	Failures   uint64 `json:"failures"`
}

// Pipeline orchestrates detection embedding -> matcher -> cooldown gate
// -> attendance store. The matcher is rebuilt lazily whenever the
// registry version moves; the gate and store may be shared with other
// pipelines or request handlers.
type Pipeline struct {
	registry  *Registry
	gate      *CooldownGate
	store     database.AttendanceStore
	threshold float64
	interval  time.Duration

	matcherMu sync.Mutex
	matcher   *Matcher

	busy atomic.Bool

	processed  atomic.Uint64
	matched    atomic.Uint64
	unknown    atomic.Uint64
	accepted   atomic.Uint64
	suppressed atomic.Uint64
	failures   atomic.Uint64
}

// NewPipeline wires a pipeline to its collaborators. The same gate and
// store instances must be shared by every pipeline and handler that can
// accept events, otherwise the cooldown invariant breaks.
func NewPipeline(registry *Registry, gate *CooldownGate, store database.AttendanceStore, threshold float64, interval time.Duration) *Pipeline {
	return &Pipeline{
		registry:  registry,
		gate:      gate,
		store:     store,
		threshold: threshold,
		interval:  interval,
	}
}

// currentMatcher returns a matcher built from the latest registry
// snapshot, rebuilding only when the registry version changed.
func (p *Pipeline) currentMatcher() *Matcher {
	p.matcherMu.Lock()
	defer p.matcherMu.Unlock()

	v := p.registry.Version()
	if p.matcher == nil || p.matcher.Version() != v {
		p.matcher = NewMatcher(p.registry.Snapshot(), p.registry.Dimension(), p.threshold, v)
	}
	return p.matcher
}

// Process runs one detection through classify -> gate -> persist and
// reports the outcome. A dimension mismatch degrades to Unknown instead
// of failing the pipeline. A persist failure is reported but not
// retried; the gate has already been updated, so the event is lost until
// the next cooldown window (see Outcome.Err).
func (p *Pipeline) Process(ctx context.Context, det DetectionEvent) Outcome {
	p.processed.Add(1)

	res, err := p.currentMatcher().Classify(det.Embedding)
	if err != nil {
		if errors.Is(err, ErrDimensionMismatch) {
			p.unknown.Add(1)
			return Outcome{
				Match: MatchResult{Label: UnknownLabel, Distance: math.Inf(1)},
				Err:   err,
			}
		}
		p.failures.Add(1)
		return Outcome{Err: err}
	}

	if res.IsUnknown() {
		p.unknown.Add(1)
		return Outcome{Match: res}
	}
	p.matched.Add(1)

	if !p.gate.TryAccept(res.Label, det.ObservedAt) {
		p.suppressed.Add(1)
		return Outcome{Match: res}
	}

	rec, err := p.store.Append(ctx, res.Label, det.ObservedAt)
	if err != nil {
		p.failures.Add(1)
		return Outcome{
			Match:    res,
			Accepted: true,
			Err:      fmt.Errorf("%w: %v", database.ErrStorageFailure, err),
		}
	}

	p.accepted.Add(1)
	return Outcome{Match: res, Accepted: true, Record: &rec}
}

// Run drives the periodic detection loop until ctx is cancelled. Ticks
// never overlap: when a cycle is still working, the new tick is dropped
// rather than queued. The detector is closed on every exit path.
func (p *Pipeline) Run(ctx context.Context, det Detector) error {
	defer func() {
		if err := det.Close(); err != nil {
			log.Printf("closing detector: %v", err)
		}
	}()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.Tick(ctx, det)
		}
	}
}

// Tick runs a single detection cycle. It returns false when a previous
// cycle was still in flight and this one was dropped.
func (p *Pipeline) Tick(ctx context.Context, det Detector) bool {
	if !p.busy.CompareAndSwap(false, true) {
		return false
	}
	defer p.busy.Store(false)

	detections, err := det.Detect(ctx)
	if err != nil {
		log.Printf("detection failed, skipping frame: %v", err)
		return true
	}

	// Faces in one frame are independent: classify and gate them in
	// parallel so one name's decision never blocks another's.
	var wg sync.WaitGroup
	for _, d := range detections {
		wg.Add(1)
		go func(d DetectionEvent) {
			defer wg.Done()
			out := p.Process(ctx, d)
			if out.Err != nil {
				log.Printf("processing detection: %v", out.Err)
			}
		}(d)
	}
	wg.Wait()
	return true
}

// Stats returns a snapshot of the cumulative counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Processed:  p.processed.Load(),
		Matched:    p.matched.Load(),
		Unknown:    p.unknown.Load(),
		Accepted:   p.accepted.Load(),
		Suppressed: p.suppressed.Load(),
		Failures:   p.failures.Load(),
	}
}
