package progress

import (
	"context"
	"sync"
)

// MemoryPersister is an in-memory Persister. Its exported error fields let
// tests simulate unreadable or unwritable records.
type MemoryPersister struct {
	mu      sync.Mutex
	mastery []string
	wrong   map[string]int

	MasteryLoadErr error
	WrongLoadErr   error
	SaveErr        error

	MasterySaves int
	WrongSaves   int
}

// NewMemoryPersister returns a persister primed with the given records.
func NewMemoryPersister(mastery []string, wrong map[string]int) *MemoryPersister {
	m := &MemoryPersister{}
	m.mastery = append([]string(nil), mastery...)
	m.wrong = copyCounts(wrong)
	return m
}

// LoadMastery implements Persister.
func (m *MemoryPersister) LoadMastery(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MasteryLoadErr != nil {
		return nil, m.MasteryLoadErr
	}
	return append([]string(nil), m.mastery...), nil
}

// LoadWrongCounts implements Persister.
func (m *MemoryPersister) LoadWrongCounts(context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WrongLoadErr != nil {
		return nil, m.WrongLoadErr
	}
	return copyCounts(m.wrong), nil
}

// SaveMastery implements Persister.
func (m *MemoryPersister) SaveMastery(_ context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MasterySaves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mastery = append([]string(nil), keys...)
	return nil
}

// SaveWrongCounts implements Persister.
func (m *MemoryPersister) SaveWrongCounts(_ context.Context, counts map[string]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WrongSaves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.wrong = copyCounts(counts)
	return nil
}

// Mastery returns the last saved mastery record.
func (m *MemoryPersister) Mastery() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.mastery...)
}

// WrongCounts returns the last saved wrong-count record.
func (m *MemoryPersister) WrongCounts() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyCounts(m.wrong)
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
