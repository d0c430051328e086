package session

import (
	"context"
	"fmt"
)

// DefaultLanguage is used until the user picks another one
const DefaultLanguage = "en"

// Language is a response language the backend understands
type Language struct {
	Code  string
	Label string
}

// Languages lists the supported response languages in display order
var Languages = []Language{
	{Code: "en", Label: "English"},
	{Code: "hi", Label: "हिन्दी"},
	{Code: "te", Label: "తెలుగు"},
}

// LookupLanguage finds a supported language by code
func LookupLanguage(code string) (Language, bool) {
	for _, l := range Languages {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

// SetLanguage switches the response language and persists the choice
func (m *Manager) SetLanguage(ctx context.Context, code string) error {
	if _, ok := LookupLanguage(code); !ok {
		return fmt.Errorf("unsupported language %q", code)
	}
	m.language = code
	if err := m.store.WriteLanguage(ctx, code); err != nil {
		m.log.Error("failed to persist language", "error", err)
		return err
	}
	return nil
}
