package importer

import (
	"fmt"
	"strings"
	"time"
)

// ValidateArchive checks the archive before conversion and returns every
// problem found, not just the first.
func ValidateArchive(a *Archive) []error {
	var errs []error

	if a.Version != ArchiveVersion {
		errs = append(errs, fmt.Errorf("version: unsupported archive version %d (expected %d)", a.Version, ArchiveVersion))
	}
	if a.ExportedAt != "" {
		errs = append(errs, validateTimestamp("exported_at", a.ExportedAt)...)
	}

	refs := make(map[string]bool)
	errs = append(errs, validateContexts(a.Contexts, refs)...)
	errs = append(errs, validateSettings(a.Settings, refs)...)
	errs = append(errs, validateHomilies(a.Homilies, refs)...)
	return errs
}

func validateContexts(contexts []ContextImport, refs map[string]bool) []error {
	var errs []error
	names := make(map[string]bool)
	for i, c := range contexts {
		prefix := fmt.Sprintf("contexts[%d]", i)
		if c.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if refs[c.Ref] {
			errs = append(errs, fmt.Errorf("%s.ref %q is duplicated", prefix, c.Ref))
		} else {
			refs[c.Ref] = true
		}

		name := strings.TrimSpace(c.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		} else if key := strings.ToLower(name); names[key] {
			errs = append(errs, fmt.Errorf("%s.name %q is duplicated", prefix, name))
		} else {
			names[key] = true
		}
		if strings.TrimSpace(c.Content) == "" {
			errs = append(errs, fmt.Errorf("%s.content is required", prefix))
		}
	}
	return errs
}

func validateSettings(s *SettingsImport, refs map[string]bool) []error {
	if s == nil || s.DefaultContextRef == nil || *s.DefaultContextRef == "" {
		return nil
	}
	if !refs[*s.DefaultContextRef] {
		return []error{fmt.Errorf("settings.default_context_ref %q does not match any context", *s.DefaultContextRef)}
	}
	return nil
}

func validateHomilies(homilies []HomilyImport, refs map[string]bool) []error {
	var errs []error
	for i, h := range homilies {
		prefix := fmt.Sprintf("homilies[%d]", i)
		if strings.TrimSpace(h.Title) == "" {
			errs = append(errs, fmt.Errorf("%s.title is required", prefix))
		}
		if h.ContextRef != nil && *h.ContextRef != "" && !refs[*h.ContextRef] {
			errs = append(errs, fmt.Errorf("%s.context_ref %q does not match any context", prefix, *h.ContextRef))
		}

		var created, updated time.Time
		if h.CreatedAt != "" {
			t, err := time.Parse(time.RFC3339, h.CreatedAt)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s.created_at: invalid timestamp %q (expected RFC 3339)", prefix, h.CreatedAt))
			}
			created = t
		}
		if h.UpdatedAt != "" {
			t, err := time.Parse(time.RFC3339, h.UpdatedAt)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s.updated_at: invalid timestamp %q (expected RFC 3339)", prefix, h.UpdatedAt))
			}
			updated = t
		}
		if !created.IsZero() && !updated.IsZero() && updated.Before(created) {
			errs = append(errs, fmt.Errorf("%s.updated_at %q is before created_at %q", prefix, h.UpdatedAt, h.CreatedAt))
		}
	}
	return errs
}

func validateTimestamp(field, value string) []error {
	if _, err := time.Parse(time.RFC3339, value); err != nil {
		return []error{fmt.Errorf("%s: invalid timestamp %q (expected RFC 3339)", field, value)}
	}
	return nil
}
