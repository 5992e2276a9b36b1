package store

import (
	"sync"

	"github.com/rohithkumar20211/murf-voice-agent/core"
)

// MemoryStore keeps per-session conversation history for the lifetime of the
// process. Sessions are created implicitly on first reference and are
// independent of each other: every session carries its own lock so appends for
// one session never contend with reads of another.
//
// History is append-only. The only removal paths are an explicit Clear and the
// optional MaxTurns cap, which drops the oldest turns once a session grows past
// the cap. MaxTurns zero means unbounded growth.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionHistory
	maxTurns int
}

type sessionHistory struct {
	mu    sync.Mutex
	turns []core.Turn

	// turnMu serializes whole conversation turns, not individual appends. It
	// lives here rather than in the orchestrator so every orchestrator built
	// over the same store serializes the same sessions.
	turnMu sync.Mutex
}

// NewMemoryStore creates an empty store. maxTurns caps the retained turns per
// session; pass 0 to keep everything.
func NewMemoryStore(maxTurns int) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*sessionHistory),
		maxTurns: maxTurns,
	}
}

// session returns the history bucket for the key, creating it if needed.
func (s *MemoryStore) session(key string) *sessionHistory {
	s.mu.RLock()
	h, ok := s.sessions[key]
	s.mu.RUnlock()
	if ok {
		return h
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok = s.sessions[key]; ok {
		return h
	}
	h = &sessionHistory{}
	s.sessions[key] = h
	return h
}

// LockSession takes the session's turn lock and returns its release func.
// Callers hold it across a whole conversation turn so the user/assistant
// pairing in history cannot interleave with a concurrent turn for the same
// session. The turn lock is separate from the append lock, so plain reads are
// never blocked by an in-flight turn.
func (s *MemoryStore) LockSession(sessionKey string) func() {
	h := s.session(sessionKey)
	h.turnMu.Lock()
	return h.turnMu.Unlock
}

// Append adds a turn to the end of the session's history.
func (s *MemoryStore) Append(sessionKey string, turn core.Turn) {
	h := s.session(sessionKey)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, turn)
	if s.maxTurns > 0 && len(h.turns) > s.maxTurns {
		// Drop oldest; copy so the trimmed prefix can be collected.
		trimmed := make([]core.Turn, s.maxTurns)
		copy(trimmed, h.turns[len(h.turns)-s.maxTurns:])
		h.turns = trimmed
	}
}

// Read returns a copy of the session's history in append order. An unknown
// session reads as empty.
func (s *MemoryStore) Read(sessionKey string) []core.Turn {
	s.mu.RLock()
	h, ok := s.sessions[sessionKey]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]core.Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Clear removes all turns for the session. The session key itself stays
// registered so a concurrent appender keeps its bucket.
func (s *MemoryStore) Clear(sessionKey string) {
	s.mu.RLock()
	h, ok := s.sessions[sessionKey]
	s.mu.RUnlock()
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = nil
}

// Len returns the number of turns recorded for the session.
func (s *MemoryStore) Len(sessionKey string) int {
	s.mu.RLock()
	h, ok := s.sessions[sessionKey]
	s.mu.RUnlock()
	if !ok {
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}

// Sessions returns the number of sessions seen so far.
func (s *MemoryStore) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
