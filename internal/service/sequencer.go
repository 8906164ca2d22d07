package service

import "sync"

// Token identifies one request for a resource.
type Token struct {
	Resource string
	Gen      uint64
}

// Sequencer hands out increasing generations per resource so a response can
// be dropped when a newer request for the same resource was issued after it,
// or when the view that asked for it is gone.
type Sequencer struct {
	mu   sync.Mutex
	gens map[string]uint64
}

func NewSequencer() *Sequencer {
	return &Sequencer{gens: make(map[string]uint64)}
}

// Next issues the token for a new request on resource.
func (s *Sequencer) Next(resource string) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[resource]++
	return Token{Resource: resource, Gen: s.gens[resource]}
}

// IsCurrent reports whether t is still the latest request for its resource.
func (s *Sequencer) IsCurrent(t Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[t.Resource] == t.Gen
}

// Invalidate makes every outstanding token for resource stale.
func (s *Sequencer) Invalidate(resource string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[resource]++
}
