// Package state holds the in-process conversation memory for the multi-step
// activity-creation flow. Entries are keyed by user ID and live only as long
// as the process; an explicit TTL bounds abandoned flows.
package state

import (
	"sync"
	"time"
)

// Step tags where a user is in the creation flow.
type Step string

// StepAwaitingDateTime means the user has named an activity (or opened the
// template menu) and the bot is waiting for a datetime-picker postback.
const StepAwaitingDateTime Step = "awaiting_datetime"

// Entry is one user's in-progress creation attempt.
type Entry struct {
	Step Step

	// Name is the activity name chosen so far. Empty while the template menu
	// is open with nothing selected.
	Name string
}

type record struct {
	entry    Entry
	deadline time.Time
}

// Store is a process-wide map from user ID to creation state with per-entry
// TTL. Expired entries are dropped lazily on Get and eagerly by Sweep.
type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	records map[string]record

	// now is swappable for tests.
	now func() time.Time
}

// New creates a Store whose entries expire ttl after their last write.
func New(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		records: make(map[string]record),
		now:     time.Now,
	}
}

// Set stores the entry for a user, resetting its TTL.
func (s *Store) Set(userID string, e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[userID] = record{entry: e, deadline: s.now().Add(s.ttl)}
}

// Get returns the entry for a user. Expired entries are removed and reported
// as absent.
func (s *Store) Get(userID string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[userID]
	if !ok {
		return Entry{}, false
	}
	if s.now().After(rec.deadline) {
		delete(s.records, userID)
		return Entry{}, false
	}

	return rec.entry, true
}

// Delete removes the entry for a user. Deleting an absent entry is a no-op.
func (s *Store) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, userID)
}

// SetName updates only the Name field of an existing entry, resetting its
// TTL. Returns false if the user has no live entry.
func (s *Store) SetName(userID, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[userID]
	if !ok || s.now().After(rec.deadline) {
		delete(s.records, userID)
		return false
	}

	rec.entry.Name = name
	rec.deadline = s.now().Add(s.ttl)
	s.records[userID] = rec

	return true
}

// Sweep removes all expired entries and returns how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	dropped := 0
	for userID, rec := range s.records {
		if now.After(rec.deadline) {
			delete(s.records, userID)
			dropped++
		}
	}

	return dropped
}

// Len returns the number of live and not-yet-swept entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}
