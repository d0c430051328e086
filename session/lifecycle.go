package session

import (
	"context"

	"github.com/alumnx-ai-labs/agrigpt-frontend/history"
)

// StartNewSession archives the active session if it has messages and
// replaces it with an empty one. Repeated calls on an empty session only
// rotate the id; nothing is added to history.
func (m *Manager) StartNewSession(ctx context.Context) error {
	err := m.archiveActive(ctx)
	m.reset()
	return err
}

// LoadSession makes the archived session id active. The current session is
// archived first so its messages are not lost. Unknown ids change nothing
// and return false. Loading the session that is already active keeps its
// live log, which may be ahead of the archived copy.
func (m *Manager) LoadSession(ctx context.Context, id string) bool {
	if id == m.active.ID {
		if _, ok := m.history.Find(id); !ok {
			return false
		}
		m.log.Debug("session already active", "session_id", id, "messages", len(m.active.Messages))
		return true
	}

	if _, ok := m.history.Find(id); !ok {
		return false
	}
	_ = m.archiveActive(ctx)
	// archiving may have replaced the entry; read it again
	s, _ := m.history.Find(id)

	m.active = s
	m.draft = ""
	m.lastErr = nil
	m.log.Debug("session loaded", "session_id", id, "messages", len(s.Messages))
	return true
}

// DeleteSession removes id from history. Deleting the active session
// replaces it with a fresh one without archiving it.
func (m *Manager) DeleteSession(ctx context.Context, id string) error {
	var removed bool
	m.history, removed = m.history.Remove(id)

	if id == m.active.ID {
		m.reset()
	}
	if !removed {
		return nil
	}

	m.log.Info("session deleted", "session_id", id)
	return m.persistHistory(ctx)
}

// Archive saves the active session into history if it has messages. It is
// called before the process exits.
func (m *Manager) Archive(ctx context.Context) error {
	return m.archiveActive(ctx)
}

func (m *Manager) archiveActive(ctx context.Context) error {
	if len(m.active.Messages) == 0 {
		return nil
	}

	s := m.active.Clone()
	s.Title = history.DeriveTitle(s.Messages)
	s.LastActivity = m.stamp(s)
	m.active.Title = s.Title

	m.history = m.history.Upsert(s)
	m.log.Debug("session archived", "session_id", s.ID, "messages", len(s.Messages))
	return m.persistHistory(ctx)
}

func (m *Manager) reset() {
	m.active = m.freshSession()
	m.draft = ""
	m.lastErr = nil
}
