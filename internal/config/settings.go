package config

import (
	"fmt"
	"sync"
)

// Store is a thread-safe namespaced settings store. Keys must be registered
// with a default before they can be set.
type Store struct {
	mu       sync.RWMutex
	defaults map[string]any
	values   map[string]any
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		defaults: make(map[string]any),
		values:   make(map[string]any),
	}
}

// Defaults returns a store with every motion tracker key registered.
func Defaults() *Store {
	s := NewStore()
	s.Register(Namespace, KeySize, DefaultSize)
	s.Register(Namespace, KeyMaxDistance, DefaultMaxDistance)
	// Registered for parity with the host settings; the scanner never reads it.
	s.Register(Namespace, KeySeePlayers, false)
	s.Register(Namespace, KeyMinSize, MinSize)
	s.Register(Namespace, KeyMaxSize, MaxSize)
	s.Register(Namespace, KeySpeed, DefaultSweepSpeed)
	s.Register(Namespace, KeyVolume, DefaultVolume)
	s.Register(Namespace, KeyDefeatedStatus, DefaultDefeatedStatus)
	return s
}

func key(namespace, k string) string {
	return namespace + "." + k
}

// Register declares a key and its default value.
func (s *Store) Register(namespace, k string, def any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults[key(namespace, k)] = def
}

// Set overrides a registered key. The value must have the default's type.
func (s *Store) Set(namespace, k string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	full := key(namespace, k)
	def, ok := s.defaults[full]
	if !ok {
		return fmt.Errorf("setting %s is not registered", full)
	}
	if fmt.Sprintf("%T", def) != fmt.Sprintf("%T", v) {
		return fmt.Errorf("setting %s: want %T, got %T", full, def, v)
	}
	s.values[full] = v
	return nil
}

// Get returns the current value of a key, falling back to its default.
func (s *Store) Get(namespace, k string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	full := key(namespace, k)
	if v, ok := s.values[full]; ok {
		return v, true
	}
	v, ok := s.defaults[full]
	return v, ok
}

// Float returns a float64 setting, or 0 if missing or mistyped.
func (s *Store) Float(namespace, k string) float64 {
	v, _ := s.Get(namespace, k)
	f, _ := v.(float64)
	return f
}

// Bool returns a bool setting, or false if missing or mistyped.
func (s *Store) Bool(namespace, k string) bool {
	v, _ := s.Get(namespace, k)
	b, _ := v.(bool)
	return b
}

// String returns a string setting, or "" if missing or mistyped.
func (s *Store) String(namespace, k string) string {
	v, _ := s.Get(namespace, k)
	str, _ := v.(string)
	return str
}
