package model

import (
	"sync"
	"time"

	"github.com/edmon-lab/mentor/pkg/domain/types"
)

// IngestStatus is the observable state of one document ingestion task
type IngestStatus struct {
	DocumentID DocumentID
	Version    int
	Phase      types.IngestPhase
	ChunkCount int
	Error      string
	StartedAt  time.Time
	UpdatedAt  time.Time
}

// IngestStatusMap tracks ingestion tasks in memory. It is best-effort and
// non-durable: explicitly owned, injected state rather than a hidden
// module singleton.
type IngestStatusMap struct {
	mu       sync.RWMutex
	statuses map[DocumentID]*IngestStatus
}

// NewIngestStatusMap creates an empty status map
func NewIngestStatusMap() *IngestStatusMap {
	return &IngestStatusMap{
		statuses: make(map[DocumentID]*IngestStatus),
	}
}

// Set records the phase transition for a document ingestion task
func (m *IngestStatusMap) Set(docID DocumentID, version int, phase types.IngestPhase) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	st, ok := m.statuses[docID]
	if !ok {
		st = &IngestStatus{
			DocumentID: docID,
			Version:    version,
			StartedAt:  now,
		}
		m.statuses[docID] = st
	}
	st.Version = version
	st.Phase = phase
	st.UpdatedAt = now
}

// SetChunkCount records the number of chunks produced for a document
func (m *IngestStatusMap) SetChunkCount(docID DocumentID, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if st, ok := m.statuses[docID]; ok {
		st.ChunkCount = n
		st.UpdatedAt = time.Now().UTC()
	}
}

// Fail marks the task failed with the given error message
func (m *IngestStatusMap) Fail(docID DocumentID, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if st, ok := m.statuses[docID]; ok {
		st.Phase = types.IngestFailed
		st.Error = msg
		st.UpdatedAt = time.Now().UTC()
	}
}

// Get returns a copy of the status for a document, if tracked
func (m *IngestStatusMap) Get(docID DocumentID) (IngestStatus, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.statuses[docID]
	if !ok {
		return IngestStatus{}, false
	}
	return *st, true
}

// Clear removes all tracked statuses
func (m *IngestStatusMap) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = make(map[DocumentID]*IngestStatus)
}
