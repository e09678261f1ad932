package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/homilybuild/homily/internal/domain"
)

// Converted holds domain objects ready for persistence. Settings is nil when
// the archive carries none.
type Converted struct {
	Contexts []*domain.PreachingContext
	Homilies []*domain.Homily
	Settings *domain.UserSettings
}

// Convert turns a validated archive into domain objects owned by ownerID.
// Every row gets a fresh ID, so importing twice duplicates rather than
// overwrites. Call ValidateArchive first.
func Convert(a *Archive, ownerID string, now time.Time) (*Converted, error) {
	out := &Converted{}

	refMap := make(map[string]*domain.PreachingContext) // ref -> context
	for _, c := range a.Contexts {
		pc := &domain.PreachingContext{
			ID:        uuid.New().String(),
			OwnerID:   ownerID,
			Name:      c.Name,
			Content:   c.Content,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := pc.Validate(); err != nil {
			return nil, fmt.Errorf("context %q: %w", c.Ref, err)
		}
		refMap[c.Ref] = pc
		out.Contexts = append(out.Contexts, pc)
	}

	for i, hi := range a.Homilies {
		created, err := parseOptionalTime(hi.CreatedAt, now)
		if err != nil {
			return nil, fmt.Errorf("homilies[%d].created_at: %w", i, err)
		}
		updated, err := parseOptionalTime(hi.UpdatedAt, created)
		if err != nil {
			return nil, fmt.Errorf("homilies[%d].updated_at: %w", i, err)
		}

		h := &domain.Homily{
			ID:        uuid.New().String(),
			OwnerID:   ownerID,
			CreatedAt: created,
			UpdatedAt: updated,
		}
		h.DraftRecord = domain.DraftRecord{
			Title:           strings.TrimSpace(hi.Title),
			Description:     hi.Description,
			Context:         hi.Context,
			Readings:        hi.Readings,
			Definitions:     hi.Definitions,
			FirstQuestions:  hi.FirstQuestions,
			SecondQuestions: hi.SecondQuestions,
			FinalDraft:      hi.FinalDraft,
		}
		if h.Context == "" && hi.ContextRef != nil {
			if pc, ok := refMap[*hi.ContextRef]; ok {
				h.Context = pc.Content
			}
		}
		h.Refresh()
		out.Homilies = append(out.Homilies, h)
	}

	if s := a.Settings; s != nil {
		us := domain.DefaultUserSettings(ownerID)
		us.UpdatedAt = now
		if s.Definitions != nil {
			us.Definitions = *s.Definitions
		}
		if s.DefaultContextRef != nil {
			if pc, ok := refMap[*s.DefaultContextRef]; ok {
				id := pc.ID
				us.DefaultContextID = &id
			}
		}
		out.Settings = us
	}
	return out, nil
}

// Build assembles an archive from stored rows. Context refs are the
// contexts' IDs, so the archive round-trips through Convert.
func Build(homilies []*domain.Homily, contexts []*domain.PreachingContext, settings *domain.UserSettings, now time.Time) *Archive {
	a := &Archive{
		Version:    ArchiveVersion,
		ExportedAt: now.UTC().Format(time.RFC3339),
		Homilies:   make([]HomilyImport, 0, len(homilies)),
	}

	known := make(map[string]bool, len(contexts))
	for _, c := range contexts {
		known[c.ID] = true
		a.Contexts = append(a.Contexts, ContextImport{Ref: c.ID, Name: c.Name, Content: c.Content})
	}

	for _, h := range homilies {
		a.Homilies = append(a.Homilies, HomilyImport{
			Title:           h.Title,
			Description:     h.Description,
			Context:         h.Context,
			Readings:        h.Readings,
			Definitions:     h.Definitions,
			FirstQuestions:  h.FirstQuestions,
			SecondQuestions: h.SecondQuestions,
			FinalDraft:      h.FinalDraft,
			CreatedAt:       h.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt:       h.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}

	if settings != nil {
		si := &SettingsImport{}
		if !settings.UsesDefaultDefinitions() {
			defs := settings.Definitions
			si.Definitions = &defs
		}
		if id := settings.DefaultContextID; id != nil && known[*id] {
			ref := *id
			si.DefaultContextRef = &ref
		}
		if si.Definitions != nil || si.DefaultContextRef != nil {
			a.Settings = si
		}
	}
	return a
}

func parseOptionalTime(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
