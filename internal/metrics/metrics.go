// Package metrics defines Prometheus collectors for the scan pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scan pipeline metrics
var (
	// ScansTotal tracks completed scan sessions by outcome.
	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scans_total",
			Help: "Total number of scan sessions by outcome",
		},
		[]string{"outcome"},
	)

	// ScanDuration tracks end-to-end scan session duration.
	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scan_duration_seconds",
			Help:    "Scan session duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
	)

	// ScansInProgress tracks currently running scan sessions.
	ScansInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scans_in_progress",
			Help: "Number of scan sessions currently in progress",
		},
	)

	// FilesAnalyzedTotal tracks per-file analysis outcomes.
	FilesAnalyzedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "files_analyzed_total",
			Help: "Total number of files analyzed by result",
		},
		[]string{"result"},
	)

	// FileAnalysisDuration tracks per-file analysis latency, dominated by
	// the external model call.
	FileAnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "file_analysis_duration_seconds",
			Help:    "Per-file analysis duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	// VulnerabilitiesFoundTotal counts vulnerability findings.
	VulnerabilitiesFoundTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vulnerabilities_found_total",
			Help: "Total number of vulnerability findings emitted",
		},
	)

	// CloneFailuresTotal counts failed repository acquisitions.
	CloneFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clone_failures_total",
			Help: "Total number of failed repository clones",
		},
	)
)

// Scan outcome label values.
const (
	OutcomeClean     = "clean"
	OutcomeFindings  = "findings"
	OutcomeNoFiles   = "no_files"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

// File result label values.
const (
	FileResultClean         = "clean"
	FileResultVulnerability = "vulnerability"
	FileResultSkippedEmpty  = "skipped_empty"
	FileResultError         = "error"
)
