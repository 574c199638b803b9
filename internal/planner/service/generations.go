package service

import (
	"sync"

	"github.com/google/uuid"
)

// ============================================================
// Generation Tracker
// ============================================================

// GenerationTracker не даёт запустить две генерации одного проекта одновременно.
type GenerationTracker struct {
	mu      sync.Mutex
	running map[string]string // projectID -> token
}

func NewGenerationTracker() *GenerationTracker {
	return &GenerationTracker{
		running: make(map[string]string),
	}
}

// Begin выдаёт токен, если генерация проекта сейчас не идёт.
func (t *GenerationTracker) Begin(projectID string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, busy := t.running[projectID]; busy {
		return "", false
	}
	token := uuid.NewString()
	t.running[projectID] = token
	return token, true
}

// End снимает отметку только у владельца токена.
func (t *GenerationTracker) End(projectID, token string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running[projectID] == token {
		delete(t.running, projectID)
	}
}

func (t *GenerationTracker) Running(projectID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.running[projectID]
	return ok
}
