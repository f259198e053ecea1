package store

import (
	"sync"
)

// Category is a named bucket of trigger phrases and candidate replies.
type Category struct {
	Name      string   `json:"name" yaml:"name"`
	Patterns  []string `json:"patterns" yaml:"patterns"`
	Responses []string `json:"responses" yaml:"responses"`
}

func (c Category) clone() Category {
	return Category{
		Name:      c.Name,
		Patterns:  append([]string(nil), c.Patterns...),
		Responses: append([]string(nil), c.Responses...),
	}
}

// MemoryStore is the live knowledge base table. Categories keep the order in
// which they were first registered; overwriting a category keeps its slot.
type MemoryStore struct {
	mu         sync.RWMutex
	order      []string
	categories map[string]Category
}

func NewMemoryStore(seed []Category) *MemoryStore {
	m := &MemoryStore{categories: make(map[string]Category, len(seed))}
	for _, c := range seed {
		m.putLocked(c)
	}
	return m
}

// Put inserts c or fully replaces the category with the same name.
func (m *MemoryStore) Put(c Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putLocked(c)
}

func (m *MemoryStore) putLocked(c Category) {
	if _, exists := m.categories[c.Name]; !exists {
		m.order = append(m.order, c.Name)
	}
	m.categories[c.Name] = c.clone()
}

func (m *MemoryStore) Get(name string) (Category, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.categories[name]
	if !ok {
		return Category{}, false
	}
	return c.clone(), true
}

// Categories returns a copy of the table in registration order.
func (m *MemoryStore) Categories() []Category {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Category, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.categories[name].clone())
	}
	return out
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}
