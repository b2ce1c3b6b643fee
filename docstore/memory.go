package docstore

import (
	"context"
	"sync"
)

// MemoryStore keeps sheets in process memory. Used for local runs and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	sheets map[string][][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sheets: make(map[string][][]string)}
}

func (m *MemoryStore) RowCount(_ context.Context, sheet string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sheets[sheet]), nil
}

func (m *MemoryStore) AppendRow(_ context.Context, sheet string, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]string, len(row))
	copy(cp, row)
	m.sheets[sheet] = append(m.sheets[sheet], cp)
	return nil
}

func (m *MemoryStore) ReadAll(_ context.Context, sheet string) ([][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows, ok := m.sheets[sheet]
	if !ok {
		return nil, ErrSheetNotFound
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (m *MemoryStore) EnsureSheet(_ context.Context, sheet string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sheets[sheet]; ok {
		return false, nil
	}
	m.sheets[sheet] = [][]string{}
	return true, nil
}
