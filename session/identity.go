package session

import (
	"context"
	"strings"

	"github.com/alumnx-ai-labs/agrigpt-frontend/gateway"
	"github.com/alumnx-ai-labs/agrigpt-frontend/store"
)

// MaxDisplayNameLen bounds the display name, in characters
const MaxDisplayNameLen = 30

// Login stores the identity and starts a fresh session for it
func (m *Manager) Login(ctx context.Context, id store.Identity) error {
	id.Phone = strings.TrimSpace(id.Phone)
	if id.Phone == "" {
		return m.fail(gateway.Validation(MsgIdentityRequired))
	}
	id.Name = cutName(id.Name)
	if id.LoginTime.IsZero() {
		id.LoginTime = m.now()
	}

	if err := m.store.WriteIdentity(ctx, id); err != nil {
		m.log.Error("failed to persist identity", "error", err)
		return err
	}
	m.identity = id
	m.log.Info("signed in")
	return m.StartNewSession(ctx)
}

// Logout archives the active session and forgets the identity
func (m *Manager) Logout(ctx context.Context) error {
	archiveErr := m.archiveActive(ctx)
	m.reset()

	m.identity = store.Identity{}
	if err := m.store.ClearIdentity(ctx); err != nil {
		m.log.Error("failed to clear identity", "error", err)
		return err
	}
	m.log.Info("signed out")
	return archiveErr
}

// SetDisplayName changes the name shown for the signed-in user
func (m *Manager) SetDisplayName(ctx context.Context, name string) error {
	if m.identity.Phone == "" {
		return m.fail(gateway.Validation(MsgIdentityRequired))
	}

	m.identity.Name = cutName(name)
	if err := m.store.WriteIdentity(ctx, m.identity); err != nil {
		m.log.Error("failed to persist identity", "error", err)
		return err
	}
	return nil
}

func cutName(name string) string {
	name = strings.TrimSpace(name)
	if r := []rune(name); len(r) > MaxDisplayNameLen {
		return string(r[:MaxDisplayNameLen])
	}
	return name
}
