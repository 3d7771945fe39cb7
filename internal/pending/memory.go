package pending

import (
	"context"
	"fmt"
	"sync"
)

type memoryKey struct {
	conv   ConversationID
	intent Intent
}

// MemoryStore keeps pending choices in process memory.
type MemoryStore struct {
	opts    Options
	mu      sync.RWMutex
	entries map[memoryKey]Pending
}

// NewMemoryStore constructs an in-memory Store.
func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{
		opts:    opts,
		entries: make(map[memoryKey]Pending),
	}
}

func (m *MemoryStore) Set(_ context.Context, conv ConversationID, p Pending) error {
	if !p.Intent.Valid() {
		return fmt.Errorf("pending: invalid intent %q", p.Intent)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = m.opts.now()
	}
	p.Candidates = append([]Candidate(nil), p.Candidates...)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[memoryKey{conv, p.Intent}] = p
	return nil
}

func (m *MemoryStore) Get(_ context.Context, conv ConversationID, intent Intent) (Pending, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.entries[memoryKey{conv, intent}]
	if !ok || m.opts.expired(p.CreatedAt) {
		return Pending{}, false, nil
	}
	p.Candidates = append([]Candidate(nil), p.Candidates...)
	return p, true, nil
}

func (m *MemoryStore) Clear(_ context.Context, conv ConversationID, intent Intent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, memoryKey{conv, intent})
	return nil
}

func (m *MemoryStore) Sweep(_ context.Context) (int, error) {
	if m.opts.TTL <= 0 {
		return 0, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, p := range m.entries {
		if m.opts.expired(p.CreatedAt) {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

// Len reports the number of stored entries, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MemoryStore) Close() error { return nil }
