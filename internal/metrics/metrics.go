// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Search pipeline metrics
	IncSearchExecuted(status string) // status: "success" or "failed"
	ObserveSearchDuration(duration time.Duration)
	AddCandidatesReturned(count int)
	AddDuplicatesRemoved(count int)

	// Email dispatch metrics
	IncEmailSent()
	IncEmailFailed()

	// Export metrics
	IncExportGenerated()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
