package domain

import (
	"strings"
	"time"
)

// UserSettings holds per-user preferences. A missing row behaves like the
// zero value with DefaultDefinitions.
type UserSettings struct {
	OwnerID          string
	Definitions      string
	DefaultContextID *string
	UpdatedAt        time.Time
}

// DefaultUserSettings returns the settings used for an owner with no stored row.
func DefaultUserSettings(ownerID string) *UserSettings {
	return &UserSettings{
		OwnerID:     ownerID,
		Definitions: DefaultDefinitions,
	}
}

// EffectiveDefinitions returns the stored definitions, or the built-in
// default when none have been saved.
func (s *UserSettings) EffectiveDefinitions() string {
	if s == nil || strings.TrimSpace(s.Definitions) == "" {
		return DefaultDefinitions
	}
	return s.Definitions
}

// UsesDefaultDefinitions reports whether the effective definitions are the built-in text.
func (s *UserSettings) UsesDefaultDefinitions() bool {
	return s.EffectiveDefinitions() == DefaultDefinitions
}
