package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/alumnx-ai-labs/agrigpt-frontend/history"
	"github.com/alumnx-ai-labs/agrigpt-frontend/internal/logging"
)

const (
	KeyHistory  = "agrigpt_chat_history"
	KeyIdentity = "agrigpt_user"
	KeyLanguage = "agrigpt_language"
)

// Identity is the signed-in user. Phone is the token sent to the backend;
// Name is only displayed.
type Identity struct {
	Phone     string    `json:"phone"`
	Name      string    `json:"name,omitempty"`
	LoginTime time.Time `json:"loginTime"`
}

// Sessions reads and writes conversation state on top of a KV. Unreadable
// stored data is treated as absent rather than returned as an error.
type Sessions struct {
	kv  KV
	log *slog.Logger
}

func NewSessions(kv KV) *Sessions {
	return &Sessions{
		kv:  kv,
		log: logging.For("store"),
	}
}

// ReadHistory returns the stored collection, or an empty one when nothing
// usable is stored.
func (s *Sessions) ReadHistory(ctx context.Context) history.Collection {
	raw, ok, err := s.kv.Get(ctx, KeyHistory)
	if err != nil {
		s.log.Warn("history unreadable, starting empty", "error", err)
		return history.Collection{}
	}
	if !ok {
		return history.Collection{}
	}

	c, err := history.Decode([]byte(raw))
	if err != nil {
		s.log.Warn("history corrupt, starting empty", "error", err)
		return history.Collection{}
	}
	return c
}

// WriteHistory replaces the stored collection.
func (s *Sessions) WriteHistory(ctx context.Context, c history.Collection) error {
	data, err := history.Encode(c)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, KeyHistory, string(data)); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

// ReadIdentity returns the stored identity. A corrupt record is removed.
func (s *Sessions) ReadIdentity(ctx context.Context) (Identity, bool) {
	raw, ok, err := s.kv.Get(ctx, KeyIdentity)
	if err != nil {
		s.log.Warn("identity unreadable", "error", err)
		return Identity{}, false
	}
	if !ok {
		return Identity{}, false
	}

	var id Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil || id.Phone == "" {
		s.log.Warn("identity corrupt, clearing", "error", err)
		if err := s.kv.Delete(ctx, KeyIdentity); err != nil {
			s.log.Warn("failed to clear corrupt identity", "error", err)
		}
		return Identity{}, false
	}
	return id, true
}

func (s *Sessions) WriteIdentity(ctx context.Context, id Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}
	if err := s.kv.Set(ctx, KeyIdentity, string(data)); err != nil {
		return fmt.Errorf("failed to save identity: %w", err)
	}
	return nil
}

func (s *Sessions) ClearIdentity(ctx context.Context) error {
	if err := s.kv.Delete(ctx, KeyIdentity); err != nil {
		return fmt.Errorf("failed to clear identity: %w", err)
	}
	return nil
}

func (s *Sessions) ReadLanguage(ctx context.Context) (string, bool) {
	v, ok, err := s.kv.Get(ctx, KeyLanguage)
	if err != nil {
		s.log.Warn("language unreadable", "error", err)
		return "", false
	}
	return v, ok && v != ""
}

func (s *Sessions) WriteLanguage(ctx context.Context, lang string) error {
	if err := s.kv.Set(ctx, KeyLanguage, lang); err != nil {
		return fmt.Errorf("failed to save language: %w", err)
	}
	return nil
}
