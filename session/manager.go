// Package session owns the active conversation, the archived history and
// the transient chat state (draft, pending request, last error).
//
// A Manager is not safe for concurrent use. Callers drive it from a single
// goroutine; only Dispatch.Run may execute elsewhere.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/alumnx-ai-labs/agrigpt-frontend/gateway"
	"github.com/alumnx-ai-labs/agrigpt-frontend/history"
	"github.com/alumnx-ai-labs/agrigpt-frontend/internal/logging"
	"github.com/alumnx-ai-labs/agrigpt-frontend/store"
)

// Store is the durable state the manager reads on Open and writes on change
type Store interface {
	ReadHistory(ctx context.Context) history.Collection
	WriteHistory(ctx context.Context, c history.Collection) error
	ReadIdentity(ctx context.Context) (store.Identity, bool)
	WriteIdentity(ctx context.Context, id store.Identity) error
	ClearIdentity(ctx context.Context) error
	ReadLanguage(ctx context.Context) (string, bool)
	WriteLanguage(ctx context.Context, lang string) error
}

// Manager holds the conversation state of one user
type Manager struct {
	store   Store
	gateway gateway.Client
	ids     history.IDGenerator
	now     func() time.Time
	log     *slog.Logger

	active  history.Session
	history history.Collection

	identity    store.Identity
	draft       string
	pending     *Dispatch
	lastErr     *gateway.Error
	resultLimit int
	language    string
}

// Option configures a Manager
type Option func(*Manager)

// WithIDGenerator replaces the random id generator
func WithIDGenerator(ids history.IDGenerator) Option {
	return func(m *Manager) {
		m.ids = ids
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithLogger sets the logger used for persistence warnings
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.log = l
	}
}

// WithResultLimit sets the starting result limit for image queries
func WithResultLimit(n int) Option {
	return func(m *Manager) {
		m.resultLimit = gateway.ClampResultLimit(n)
	}
}

// WithDefaultLanguage sets the language used until one is stored. Unknown
// codes are ignored.
func WithDefaultLanguage(code string) Option {
	return func(m *Manager) {
		if _, ok := LookupLanguage(code); ok {
			m.language = code
		}
	}
}

// New creates a manager with an empty active session. Call Open to restore
// stored state.
func New(st Store, gw gateway.Client, opts ...Option) *Manager {
	m := &Manager{
		store:       st,
		gateway:     gw,
		ids:         history.DefaultIDs{},
		now:         time.Now,
		history:     history.Collection{},
		resultLimit: gateway.DefaultResultLimit,
		language:    DefaultLanguage,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = logging.For("session")
	}
	m.active = m.freshSession()
	return m
}

// Open restores history, identity and language from the store
func (m *Manager) Open(ctx context.Context) {
	m.history = m.store.ReadHistory(ctx)

	if id, ok := m.store.ReadIdentity(ctx); ok {
		m.identity = id
	}
	if lang, ok := m.store.ReadLanguage(ctx); ok {
		if _, known := LookupLanguage(lang); known {
			m.language = lang
		} else {
			m.log.Warn("ignoring unknown stored language", "language", lang)
		}
	}

	m.log.Debug("session state restored",
		"sessions", len(m.history),
		"signed_in", m.identity.Phone != "",
		"language", m.language)
}

// Active returns a copy of the session being composed
func (m *Manager) Active() history.Session {
	return m.active.Clone()
}

// History returns the archived sessions, most recent first
func (m *Manager) History() []history.SessionInfo {
	return m.history.Infos()
}

// Draft returns the unsent query text
func (m *Manager) Draft() string {
	return m.draft
}

// Pending reports whether a request is in flight
func (m *Manager) Pending() bool {
	return m.pending != nil
}

// LastError returns the error of the last operation, or nil
func (m *Manager) LastError() *gateway.Error {
	return m.lastErr
}

// ResultLimit returns the top-K sent with image queries
func (m *Manager) ResultLimit() int {
	return m.resultLimit
}

// Language returns the active response language code
func (m *Manager) Language() string {
	return m.language
}

// Identity returns the signed-in user and whether there is one
func (m *Manager) Identity() (store.Identity, bool) {
	return m.identity, m.identity.Phone != ""
}

// SetDraftQuery replaces the unsent query text
func (m *Manager) SetDraftQuery(text string) {
	m.draft = text
}

// SetResultLimit sets the image query top-K, clamped to the allowed range
func (m *Manager) SetResultLimit(n int) {
	m.resultLimit = gateway.ClampResultLimit(n)
}

// ClearError dismisses the last error
func (m *Manager) ClearError() {
	m.lastErr = nil
}

func (m *Manager) freshSession() history.Session {
	return history.Session{
		ID:           m.ids.SessionID(),
		Title:        history.TitleFallback,
		Messages:     []history.Message{},
		LastActivity: m.now(),
	}
}

// stamp returns the current time clamped so it never precedes the last
// message of s.
func (m *Manager) stamp(s history.Session) time.Time {
	now := m.now()
	if n := len(s.Messages); n > 0 && now.Before(s.Messages[n-1].CreatedAt) {
		return s.Messages[n-1].CreatedAt
	}
	return now
}

func (m *Manager) persistHistory(ctx context.Context) error {
	if err := m.store.WriteHistory(ctx, m.history); err != nil {
		m.log.Error("failed to persist history", "error", err, "sessions", len(m.history))
		return err
	}
	return nil
}
