package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	SearchesSucceeded     uint64
	SearchesFailed        uint64
	SearchDurationCount   uint64
	SearchDurationTotalNs int64
	CandidatesReturned    uint64
	DuplicatesRemoved     uint64
	EmailsSent            uint64
	EmailsFailed          uint64
	ExportsGenerated      uint64
}

// InMemoryRecorder stores metrics in memory.
// Used by tests and the /metrics endpoint.
type InMemoryRecorder struct {
	searchesSucceeded     uint64
	searchesFailed        uint64
	searchDurationCount   uint64
	searchDurationTotalNs int64
	candidatesReturned    uint64
	duplicatesRemoved     uint64
	emailsSent            uint64
	emailsFailed          uint64
	exportsGenerated      uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		SearchesSucceeded:     atomic.LoadUint64(&m.searchesSucceeded),
		SearchesFailed:        atomic.LoadUint64(&m.searchesFailed),
		SearchDurationCount:   atomic.LoadUint64(&m.searchDurationCount),
		SearchDurationTotalNs: atomic.LoadInt64(&m.searchDurationTotalNs),
		CandidatesReturned:    atomic.LoadUint64(&m.candidatesReturned),
		DuplicatesRemoved:     atomic.LoadUint64(&m.duplicatesRemoved),
		EmailsSent:            atomic.LoadUint64(&m.emailsSent),
		EmailsFailed:          atomic.LoadUint64(&m.emailsFailed),
		ExportsGenerated:      atomic.LoadUint64(&m.exportsGenerated),
	}
}

// IncSearchExecuted increments the search counter for the given status.
func (m *InMemoryRecorder) IncSearchExecuted(status string) {
	if status == "success" {
		atomic.AddUint64(&m.searchesSucceeded, 1)
	} else {
		atomic.AddUint64(&m.searchesFailed, 1)
	}
}

// ObserveSearchDuration records one search duration.
func (m *InMemoryRecorder) ObserveSearchDuration(duration time.Duration) {
	atomic.AddUint64(&m.searchDurationCount, 1)
	atomic.AddInt64(&m.searchDurationTotalNs, duration.Nanoseconds())
}

// AddCandidatesReturned adds to the candidate counter.
func (m *InMemoryRecorder) AddCandidatesReturned(count int) {
	atomic.AddUint64(&m.candidatesReturned, uint64(count))
}

// AddDuplicatesRemoved adds to the duplicate counter.
func (m *InMemoryRecorder) AddDuplicatesRemoved(count int) {
	atomic.AddUint64(&m.duplicatesRemoved, uint64(count))
}

// IncEmailSent increments the sent-email counter.
func (m *InMemoryRecorder) IncEmailSent() {
	atomic.AddUint64(&m.emailsSent, 1)
}

// IncEmailFailed increments the failed-email counter.
func (m *InMemoryRecorder) IncEmailFailed() {
	atomic.AddUint64(&m.emailsFailed, 1)
}

// IncExportGenerated increments the export counter.
func (m *InMemoryRecorder) IncExportGenerated() {
	atomic.AddUint64(&m.exportsGenerated, 1)
}
