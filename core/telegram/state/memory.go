package state

import "sync"

type memoryManager struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

// NewMemoryManager constructs an in-memory Manager.
func NewMemoryManager() Manager {
	return &memoryManager{
		sessions: make(map[int64]Session),
	}
}

// Get returns a copy of the chat session, or an idle session if none exists.
func (m *memoryManager) Get(chatID int64) Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if session, ok := m.sessions[chatID]; ok {
		return session.clone()
	}
	return Session{State: StateIdle}
}

// Set replaces the chat session. An idle session without data removes the record.
func (m *memoryManager) Set(chatID int64, s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if (s.State == StateIdle || s.State == "") && len(s.Data) == 0 {
		delete(m.sessions, chatID)
		return
	}
	m.sessions[chatID] = s.clone()
}

// SetState changes the state and drops any flow data.
func (m *memoryManager) SetState(chatID int64, st State) {
	m.Set(chatID, Session{State: st})
}

// GetState returns the current state of a chat, or StateIdle.
func (m *memoryManager) GetState(chatID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, ok := m.sessions[chatID]; ok && sess.State != "" {
		return sess.State
	}
	return StateIdle
}

// Clear removes the session for a chat.
func (m *memoryManager) Clear(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, chatID)
}

// InProgress reports whether the chat is inside a flow.
func (m *memoryManager) InProgress(chatID int64) bool {
	return m.GetState(chatID) != StateIdle
}
