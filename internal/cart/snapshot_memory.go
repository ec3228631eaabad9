package cart

import (
	"context"
	"sync"
)

// MemorySnapshotRepository is an in-process SnapshotRepository used by
// tests and as the degraded fallback when Redis is not configured.
type MemorySnapshotRepository struct {
	mu    sync.Mutex
	lines []Line

	// FailLoad and FailSave force the next operation to fail, letting
	// tests exercise the fail-open paths.
	FailLoad error
	FailSave error
}

// NewMemorySnapshotRepository returns an empty in-memory repository.
func NewMemorySnapshotRepository() *MemorySnapshotRepository {
	return &MemorySnapshotRepository{}
}

// Load returns the stored lines.
func (m *MemorySnapshotRepository) Load(context.Context) ([]Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailLoad != nil {
		return nil, m.FailLoad
	}
	out := make([]Line, len(m.lines))
	copy(out, m.lines)
	return out, nil
}

// Save replaces the stored lines.
func (m *MemorySnapshotRepository) Save(_ context.Context, lines []Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSave != nil {
		return m.FailSave
	}
	m.lines = make([]Line, len(lines))
	copy(m.lines, lines)
	return nil
}
