package session

import "fmt"

// Manager tracks the ordered list of currently open sessions, one per
// open table.
type Manager struct {
	sessions []*Session
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{}
}

// OpenSession opens filename and registers it with the manager.
func (m *Manager) OpenSession(filename string) (*Session, error) {
	s, err := Open(filename)
	if err != nil {
		return nil, err
	}
	m.sessions = append(m.sessions, s)
	return s, nil
}

// CloseSession closes s and removes it from the manager's open list. It
// errors if s was not opened through this manager.
func (m *Manager) CloseSession(s *Session) error {
	idx := -1
	for i, open := range m.sessions {
		if open == s {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("session: %q is not open in this manager", s.TableName)
	}

	err := s.Close()
	m.sessions = append(m.sessions[:idx], m.sessions[idx+1:]...)
	return err
}

// Sessions returns the currently open sessions, in open order.
func (m *Manager) Sessions() []*Session {
	return m.sessions
}

// Find returns the open session for tableName, if any.
func (m *Manager) Find(tableName string) (*Session, bool) {
	for _, s := range m.sessions {
		if s.TableName == tableName {
			return s, true
		}
	}
	return nil, false
}
