package cache

import (
	"context"
	"sync"
	"time"
)

// ============================================================
// Artifact Cache
// ============================================================

// DefaultTTL: планы неизменяемы, срок жизни ограничивает только память.
const DefaultTTL = 30 * time.Minute

// ArtifactCache хранит готовые тела ответов по ключу плана.
type ArtifactCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Key собирает ключ артефакта плана. Проект входит в ключ, чтобы чужой
// projectID в URL не находил закэшированный артефакт.
func Key(projectID, planID, artifact string) string {
	return "plan:" + projectID + ":" + planID + ":" + artifact
}

type entry struct {
	value   []byte
	expires time.Time
}

type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if m.now().After(e.expires) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{value: value, expires: m.now().Add(m.ttl)}
	return nil
}

// Cleanup удаляет просроченные записи.
func (m *Memory) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, e := range m.entries {
		if now.After(e.expires) {
			delete(m.entries, k)
		}
	}
}

// StartCleanup периодически чистит кэш до отмены ctx.
func (m *Memory) StartCleanup(ctx context.Context, every time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Cleanup()
			}
		}
	}()
}
