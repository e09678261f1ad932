package wizard

import (
	"context"

	"github.com/homilybuild/homily/internal/domain"
	"github.com/homilybuild/homily/internal/llm"
)

// Generator produces text for a rendered prompt. Ordinary failures are
// reported through the result's ErrorKind, never as a Go error.
type Generator interface {
	Generate(ctx context.Context, task llm.TaskType, prompt, identity string) llm.GenerationResult
}

// SaveRequest is one persistence call from a session.
type SaveRequest struct {
	// HomilyID is empty until the first successful save creates the row.
	HomilyID string
	OwnerID  string
	Record   domain.DraftRecord
	Status   domain.Status
	// Final marks the save issued by Finalize.
	Final bool
}

// Storage persists drafts. It returns the id of the saved homily.
type Storage interface {
	SaveDraft(ctx context.Context, req SaveRequest) (string, error)
}

// Navigator is the shareable location that carries the current step.
type Navigator interface {
	// Step returns the step encoded in the location, if any.
	Step() (int, bool)
	SetStep(step int)
	// Leave hands control back to the listing.
	Leave()
}

type nopNavigator struct{}

func (nopNavigator) Step() (int, bool) { return 0, false }
func (nopNavigator) SetStep(int)       {}
func (nopNavigator) Leave()            {}
