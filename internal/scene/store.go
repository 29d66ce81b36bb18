package scene

import (
	"sort"
	"sync"
)

// Store is a thread-safe store for scenes. Sources (file, demo walker,
// beacon scanner) write into it from their own goroutines; trackers read
// snapshots once per frame.
type Store struct {
	mu     sync.RWMutex
	scenes map[string]*Scene
}

// NewStore creates a new empty Store.
func NewStore() *Store {
	return &Store{
		scenes: make(map[string]*Scene),
	}
}

// Put adds or replaces a scene.
func (s *Store) Put(sc Scene) {
	cp := sc.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenes[sc.ID] = &cp
}

// Scene returns a copy of the scene with the given id.
func (s *Store) Scene(id string) (Scene, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.scenes[id]
	if !ok {
		return Scene{}, false
	}
	return sc.Clone(), true
}

// UpsertToken adds or updates a token in a scene. Returns false if the
// scene does not exist.
func (s *Store) UpsertToken(sceneID string, tok Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.scenes[sceneID]
	if !ok {
		return false
	}
	for i := range sc.Tokens {
		if sc.Tokens[i].ID == tok.ID {
			sc.Tokens[i] = tok
			return true
		}
	}
	sc.Tokens = append(sc.Tokens, tok)
	return true
}

// Update runs fn against the stored scene under the write lock.
func (s *Store) Update(sceneID string, fn func(*Scene)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.scenes[sceneID]
	if !ok {
		return false
	}
	fn(sc)
	return true
}

// RemoveToken deletes a token from a scene. Returns true if it existed.
func (s *Store) RemoveToken(sceneID, tokenID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.scenes[sceneID]
	if !ok {
		return false
	}
	for i := range sc.Tokens {
		if sc.Tokens[i].ID == tokenID {
			sc.Tokens = append(sc.Tokens[:i], sc.Tokens[i+1:]...)
			return true
		}
	}
	return false
}

// IDs returns the sorted scene ids.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.scenes))
	for id := range s.scenes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of tokens in a scene.
func (s *Store) Count(sceneID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sc, ok := s.scenes[sceneID]; ok {
		return len(sc.Tokens)
	}
	return 0
}
