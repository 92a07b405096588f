package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store tracks the live connections and the phase each one is in.
type Store interface {
	New(id uuid.UUID, remote string) error
	Get(id uuid.UUID) (Session, error)
	Set(id uuid.UUID, state State) error
	Clear(id uuid.UUID) error
	Phases() map[string]int
}

// Session describes one live connection.
type Session struct {
	Remote      string
	Started     time.Time
	Phase       string
	Transitions int
}

type MemoryStore struct {
	sessions map[uuid.UUID]Session
	mu       sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[uuid.UUID]Session),
	}
}

func (p *MemoryStore) New(id uuid.UUID, remote string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.sessions[id]; ok {
		return ErrSessionAlreadyExists
	}
	p.sessions[id] = Session{
		Remote:  remote,
		Started: time.Now(),
		Phase:   Initial().Name(),
	}
	return nil
}

func (p *MemoryStore) Get(id uuid.UUID) (Session, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if sess, ok := p.sessions[id]; ok {
		return sess, nil
	}
	return Session{}, ErrSessionNotFound
}

func (p *MemoryStore) Set(id uuid.UUID, state State) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	cpy, ok := p.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	cpy.Phase = state.Name()
	cpy.Transitions++
	p.sessions[id] = cpy
	return nil
}

func (p *MemoryStore) Clear(id uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(p.sessions, id)
	return nil
}

// Phases counts live sessions per phase.
func (p *MemoryStore) Phases() map[string]int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	phases := make(map[string]int)
	for _, sess := range p.sessions {
		phases[sess.Phase]++
	}
	return phases
}
