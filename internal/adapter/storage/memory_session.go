package storage

import (
	"sync"

	"github.com/rl1809/inventory-bot/internal/core/domain"
)

// MemorySessionRepository keeps conversation sessions in a process local
// map. Sessions are never persisted, so a restart drops every flow in
// progress.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[string]domain.Session)}
}

func (r *MemorySessionRepository) Get(sessionID string) (domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[sessionID]
	return sess, ok
}

func (r *MemorySessionRepository) Save(sess domain.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.UserID] = sess
}

func (r *MemorySessionRepository) Delete(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

func (r *MemorySessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
