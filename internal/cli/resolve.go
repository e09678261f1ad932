package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/homilybuild/homily/internal/domain"
	"github.com/homilybuild/homily/internal/repository"
)

// resolveHomilyID accepts a full id or a unique id prefix.
func resolveHomilyID(ctx context.Context, app *App, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("homily ID is required")
	}

	h, err := app.Homilies.GetByID(ctx, app.owner(), input)
	if err == nil {
		return h.ID, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	var matches []string
	params := repository.ListParams{Page: 1, PageSize: repository.MaxPageSize}
	for {
		page, err := app.Homilies.List(ctx, app.owner(), params)
		if err != nil {
			return "", err
		}
		for _, h := range page.Items {
			if strings.HasPrefix(h.ID, input) {
				matches = append(matches, h.ID)
			}
		}
		if params.Page >= page.TotalPages {
			break
		}
		params.Page++
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("homily not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("homily ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

// resolveContext finds a saved context by id, id prefix or name.
func resolveContext(ctx context.Context, app *App, input string) (*domain.PreachingContext, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("context is required")
	}
	list, err := app.Contexts.List(ctx, app.owner())
	if err != nil {
		return nil, err
	}

	var matches []*domain.PreachingContext
	for _, c := range list {
		if c.ID == input || strings.EqualFold(c.Name, input) {
			return c, nil
		}
		if strings.HasPrefix(c.ID, input) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("context not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("context ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}
