package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncSearchExecuted is a no-op.
func (n *NoopRecorder) IncSearchExecuted(status string) {}

// ObserveSearchDuration is a no-op.
func (n *NoopRecorder) ObserveSearchDuration(duration time.Duration) {}

// AddCandidatesReturned is a no-op.
func (n *NoopRecorder) AddCandidatesReturned(count int) {}

// AddDuplicatesRemoved is a no-op.
func (n *NoopRecorder) AddDuplicatesRemoved(count int) {}

// IncEmailSent is a no-op.
func (n *NoopRecorder) IncEmailSent() {}

// IncEmailFailed is a no-op.
func (n *NoopRecorder) IncEmailFailed() {}

// IncExportGenerated is a no-op.
func (n *NoopRecorder) IncExportGenerated() {}
