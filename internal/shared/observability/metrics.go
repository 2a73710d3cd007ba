package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ExtractionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crosscheck_extraction_seconds",
		Help:    "Time spent extracting a symbol table from one file version.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	ExtractionFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crosscheck_extraction_failures_total",
		Help: "Total number of symbol table extractions that failed.",
	}, []string{"language", "code"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crosscheck_analysis_seconds",
		Help:    "Time spent on one file's pairwise semantic analysis.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	PairEvaluationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crosscheck_pair_evaluations_total",
		Help: "Total number of ordered task pairs evaluated by detectors.",
	})

	PairsSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crosscheck_pairs_skipped_total",
		Help: "Total number of task pairs skipped because extraction was unavailable.",
	})

	ConflictsDetectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crosscheck_conflicts_detected_total",
		Help: "Total number of semantic conflicts reported, by kind and severity.",
	}, []string{"kind", "severity"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crosscheck_watcher_events_total",
		Help: "Total number of file system events received by the bundle watcher.",
	})

	AnalysisRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crosscheck_analysis_runs_total",
		Help: "Total number of analysis runs, by outcome.",
	}, []string{"outcome"})
)
