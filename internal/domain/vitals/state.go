// Package vitals holds the current reading shared by the session engine, the
// agent bridge and the read surfaces.
//
// State is passed explicitly to whoever needs it. Readers depend on the
// Reader interface; the only way to change the current reading is through a
// Recorder, which the service hands exclusively to scan sessions.
package vitals

import (
	"sync"

	"github.com/silentsignal/vitals/internal/domain/model"
)

// Reader exposes the current reading.
type Reader interface {
	Current() model.ScoredReading
}

// State is the single source of truth for the most recent reading.
type State struct {
	mu      sync.RWMutex
	current model.ScoredReading
	version uint64
}

// NewState returns a State holding the Pending sentinel.
func NewState() *State {
	return &State{current: model.Pending()}
}

// Current returns a copy of the most recent reading.
func (s *State) Current() model.ScoredReading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Version counts committed readings; zero means still pending.
func (s *State) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *State) commit(r model.ScoredReading) {
	s.mu.Lock()
	s.current = r
	s.version++
	s.mu.Unlock()
}
