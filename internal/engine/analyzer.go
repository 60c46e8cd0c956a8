package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/adilasif/WoWAnalyzer-sub001/internal/event"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/fight"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/metrics"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/normalize"
)

// Result is everything one analysis run produced.
type Result struct {
	RunID     string
	Fight     *fight.Fight
	Log       *event.Log
	Registry  *Registry
	Normalize normalize.Stats
	Dispatch  DispatchStats
}

// Analyzer runs normalize → resolve → dispatch for one fight at a time.
//
// An Analyzer holds no per-run state and may be reused; each Run builds a
// fresh registry.
type Analyzer struct {
	catalog  *Catalog
	roots    []Dependency
	pipeline []normalize.Normalizer
	logger   *slog.Logger
	runIDs   RunIDGenerator
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// WithNormalizers adds normalizers to the pipeline.
func WithNormalizers(n ...normalize.Normalizer) AnalyzerOption {
	return func(a *Analyzer) {
		a.pipeline = append(a.pipeline, n...)
	}
}

// WithRunIDs sets the run ID generator. Default: UUIDv7Generator.
func WithRunIDs(g RunIDGenerator) AnalyzerOption {
	return func(a *Analyzer) {
		a.runIDs = g
	}
}

// NewAnalyzer creates an Analyzer for the given roots of catalog.
func NewAnalyzer(catalog *Catalog, roots []Dependency, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		catalog: catalog,
		roots:   append([]Dependency(nil), roots...),
		logger:  slog.Default(),
		runIDs:  UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run analyzes one fight. Only configuration errors are returned; listener
// failures and normalization anomalies are reported on the Result.
func (a *Analyzer) Run(f *fight.Fight, events []event.Event) (*Result, error) {
	runID := a.runIDs.Generate()
	logger := a.logger.With("run_id", runID, "fight", f.ID)
	logger.Info("analysis starting", "events", len(events), "modules", len(a.roots))

	start := time.Now()
	pipeline := normalize.NewPipeline(a.pipeline, normalize.WithLogger(logger))
	log, nstats := pipeline.Run(f, events)
	metrics.ObservePhase("normalize", time.Since(start).Seconds())

	start = time.Now()
	reg, err := Resolve(a.catalog, a.roots, Env{Fight: f, Log: log, Logger: logger})
	metrics.ObservePhase("resolve", time.Since(start).Seconds())
	if err != nil {
		metrics.IncRun("error")
		logger.Error("module graph resolution failed", "error", err)
		return nil, fmt.Errorf("resolve modules: %w", err)
	}

	start = time.Now()
	dstats := Dispatch(reg, log, f, logger)
	metrics.ObservePhase("dispatch", time.Since(start).Seconds())
	metrics.IncRun("ok")

	logger.Info("analysis complete",
		"events", log.Len(),
		"relations", nstats.Relations,
		"normalize_anomalies", nstats.Anomalies,
		"deliveries", dstats.Deliveries,
		"listener_failures", dstats.Failures,
	)
	return &Result{
		RunID:     runID,
		Fight:     f,
		Log:       log,
		Registry:  reg,
		Normalize: nstats,
		Dispatch:  dstats,
	}, nil
}
