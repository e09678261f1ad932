package wizard

import (
	"errors"
	"fmt"

	"github.com/homilybuild/homily/internal/llm"
)

var (
	// ErrAuthenticationRequired is returned before any collaborator call when
	// the session has no caller identity.
	ErrAuthenticationRequired = errors.New("User authentication required")

	ErrSaveInProgress       = errors.New("save already in progress")
	ErrGenerationInProgress = errors.New("generation already in progress for this step")
	ErrNoGeneration         = errors.New("step has no generation action")
	ErrNotFinalStep         = errors.New("finalize is only available on the last step")
	ErrSessionFinished      = errors.New("session already finalized")
)

// ValidationError reports a refused forward transition.
type ValidationError struct {
	From, To int
	Blocking int
	Reason   string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// GenerationError reports a failed generate action. The draft is unchanged.
type GenerationError struct {
	Step    int
	Kind    llm.ErrorKind
	Message string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("step %d: %s", e.Step, e.Message)
}

// PersistenceError wraps a storage collaborator failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s draft: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
