package domain

import (
	"errors"
	"strings"
	"time"
)

// PreachingContext is a named, reusable description of the setting a homily
// is preached in (occasion, audience, language).
type PreachingContext struct {
	ID        string
	OwnerID   string
	Name      string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate trims name and content and requires both.
func (c *PreachingContext) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Content = strings.TrimSpace(c.Content)
	if c.Name == "" {
		return errors.New("context name is required")
	}
	if c.Content == "" {
		return errors.New("context content is required")
	}
	return nil
}
