package settings

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/shibukawa/gopiumlens"
)

// Loader reads the configuration store
type Loader func() (*gopiumlens.Config, error)

// ConfigFileLoader returns a Loader reading the given config file
func ConfigFileLoader(path string) Loader {
	return func() (*gopiumlens.Config, error) {
		return gopiumlens.LoadConfig(path)
	}
}

// Store owns the current snapshot. Every Reload builds a new snapshot from
// scratch, publishes it atomically and broadcasts it to subscribers.
type Store struct {
	loader  Loader
	current atomic.Pointer[Snapshot]

	reloadMu sync.Mutex
	version  uint64

	subsMu sync.Mutex
	subs   map[int]func(*Snapshot)
	nextID int
}

// NewStore creates a store and loads the first snapshot
func NewStore(loader Loader) (*Store, error) {
	s := &Store{
		loader: loader,
		subs:   make(map[int]func(*Snapshot)),
	}

	if _, err := s.Reload(); err != nil {
		return nil, err
	}

	return s, nil
}

// Current returns the latest published snapshot
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Reload rebuilds the snapshot from the loader. On failure the previous
// snapshot stays current.
func (s *Store) Reload() (*Snapshot, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	cfg, err := s.loader()
	if err != nil {
		return nil, fmt.Errorf("failed to reload settings: %w", err)
	}

	s.version++
	snapshot := FromConfig(cfg, s.version)
	s.current.Store(snapshot)

	// Broadcast while holding reloadMu so subscribers see versions in order.
	for _, fn := range s.subscribers() {
		fn(snapshot)
	}

	return snapshot, nil
}

// Subscribe registers fn for every snapshot published after this call.
// Callbacks must not call Reload. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(*Snapshot)) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) subscribers() []func(*Snapshot) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	fns := make([]func(*Snapshot), 0, len(s.subs))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.subs[id]; ok {
			fns = append(fns, fn)
		}
	}

	return fns
}
