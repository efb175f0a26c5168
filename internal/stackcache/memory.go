// AngelaMos | 2026
// memory.go

package stackcache

import (
	"context"
	"sync"

	"github.com/carterperez-dev/stackrec/internal/stack"
)

type MemoryStore struct {
	mu     sync.RWMutex
	stacks map[string]stack.Stack
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{stacks: make(map[string]stack.Stack)}
}

func (m *MemoryStore) Get(_ context.Context, archetypeID string) (stack.Stack, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.stacks[archetypeID]
	if !ok {
		return stack.Stack{}, notFound(archetypeID)
	}
	return s.Clone(), nil
}

func (m *MemoryStore) Put(_ context.Context, s stack.Stack) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stacks[s.ArchetypeID] = s.Clone()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, archetypeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.stacks, archetypeID)
	return nil
}

func (m *MemoryStore) List(_ context.Context) ([]stack.Stack, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]stack.Stack, 0, len(m.stacks))
	for _, s := range m.stacks {
		out = append(out, s.Clone())
	}
	return out, nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}
