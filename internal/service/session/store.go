package session

import "sync"

// Store maps session ids to live sessions. Sessions are created on first
// use and purged on termination; nothing survives a process restart, which
// the transcript persistence written on terminal turns makes acceptable.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the live session for id, creating a fresh one in
// StateAwaitingSymptom when none exists.
func (s *Store) GetOrCreate(id, patientID string) *Session {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess = newSession(id, patientID)
	s.sessions[id] = sess
	return sess
}

// Purge destroys a session's state. The next message for the same id
// starts a brand new interview.
func (s *Store) Purge(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
