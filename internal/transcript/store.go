package transcript

import (
	"fmt"
	"sync"
)

// Store holds the ordered segment list for one pipeline run. It is the
// single shared structure between the orchestrator and the UI boundary:
// the orchestrator replaces it wholesale at stage boundaries, the user
// edits text while a manual run is suspended.
type Store struct {
	mu       sync.RWMutex
	segments []Segment
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// ReplaceAll swaps in a new segment list. The input is copied so callers
// cannot alias the store's backing slice.
func (s *Store) ReplaceAll(segments []Segment) {
	cp := make([]Segment, len(segments))
	copy(cp, segments)
	s.mu.Lock()
	s.segments = cp
	s.mu.Unlock()
}

// Clear empties the store at the start of a run.
func (s *Store) Clear() {
	s.mu.Lock()
	s.segments = nil
	s.mu.Unlock()
}

// UpdateText rewrites the text of the segment with the given id, leaving
// every other field and the ordering untouched.
func (s *Store) UpdateText(id int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.segments {
		if s.segments[i].ID == id {
			s.segments[i].Text = text
			return nil
		}
	}
	return fmt.Errorf("segment %d not found", id)
}

// Snapshot returns the current list by value so callers are insulated from
// concurrent edits made after the call.
func (s *Store) Snapshot() []Segment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]Segment, len(s.segments))
	copy(cp, s.segments)
	return cp
}

// Len reports the current segment count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.segments)
}
