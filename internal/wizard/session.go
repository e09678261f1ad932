package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/homilybuild/homily/internal/domain"
	"github.com/homilybuild/homily/internal/llm"
	"github.com/homilybuild/homily/internal/template"
	"go.uber.org/zap"
)

// Config wires a Session. Storage and Generator are required.
type Config struct {
	Steps     Steps
	HomilyID  string
	Identity  string
	Record    domain.DraftRecord
	Generator Generator
	Storage   Storage
	Navigator Navigator
	Notifier  Notifier
	// DefaultDefinitions pre-fills an empty definitions field when the
	// session enters the step that requires it.
	DefaultDefinitions string
	Logger             *zap.Logger
}

// Session is one editing pass over a homily draft. Methods are safe for
// concurrent use; the lock is never held across a collaborator call.
type Session struct {
	steps     Steps
	identity  string
	generator Generator
	storage   Storage
	nav       Navigator
	notifier  Notifier
	defaults  string
	logger    *zap.Logger

	mu         sync.Mutex
	homilyID   string
	record     domain.DraftRecord
	step       int
	saving     bool
	generating map[int]bool
	finished   bool
}

// NewSession builds a session positioned at the navigator's step, clamped
// into range.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Generator == nil {
		return nil, fmt.Errorf("wizard: generator is required")
	}
	if cfg.Storage == nil {
		return nil, fmt.Errorf("wizard: storage is required")
	}
	if cfg.Steps.Len() == 0 {
		cfg.Steps = DefaultSteps()
	}
	if cfg.Navigator == nil {
		cfg.Navigator = nopNavigator{}
	}
	if cfg.Notifier == nil {
		cfg.Notifier = NotifierFunc(func(Notification) {})
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	s := &Session{
		steps:      cfg.Steps,
		identity:   strings.TrimSpace(cfg.Identity),
		generator:  cfg.Generator,
		storage:    cfg.Storage,
		nav:        cfg.Navigator,
		notifier:   cfg.Notifier,
		defaults:   cfg.DefaultDefinitions,
		logger:     cfg.Logger.Named("wizard"),
		homilyID:   cfg.HomilyID,
		record:     cfg.Record,
		step:       1,
		generating: make(map[int]bool),
	}
	if step, ok := cfg.Navigator.Step(); ok {
		s.step = s.steps.Clamp(step)
	}
	s.prefillLocked()
	return s, nil
}

// Step returns the current step id.
func (s *Session) Step() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Steps returns the step sequence.
func (s *Session) Steps() Steps { return s.steps }

// HomilyID returns the persisted id, empty before the first save.
func (s *Session) HomilyID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.homilyID
}

// Record returns a copy of the draft.
func (s *Session) Record() domain.DraftRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

// Status derives the draft status from the current record.
func (s *Session) Status() domain.Status {
	return domain.DeriveStatus(s.Record())
}

// SetField edits one field. No validation runs on edit.
func (s *Session) SetField(f domain.Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return ErrSessionFinished
	}
	return s.record.Set(f, value)
}

// Busy reports whether a save is in flight and which steps are generating.
func (s *Session) Busy() (saving bool, generating []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.steps.All() {
		if s.generating[d.ID] {
			generating = append(generating, d.ID)
		}
	}
	return s.saving, generating
}

// Finished reports whether Finalize succeeded.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// GoTo moves to target when the validator allows it. Forward moves
// auto-save first; a failed save is reported but the move still happens.
// When a save is already in flight it stands in for the auto-save.
// A refused move returns a *ValidationError and changes nothing.
func (s *Session) GoTo(ctx context.Context, target int) (Decision, error) {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return Decision{}, ErrSessionFinished
	}
	from := s.step
	decision := CheckTransition(s.steps, from, target, s.record)
	s.mu.Unlock()

	if !decision.Allowed {
		s.notify(LevelError, decision.Reason, from)
		return decision, &ValidationError{From: from, To: target, Blocking: decision.Blocking, Reason: decision.Reason}
	}

	if target > from {
		err := s.SaveDraft(ctx)
		switch {
		case errors.Is(err, ErrSaveInProgress):
			s.logger.Debug("auto-save skipped, save in flight", zap.Int("from", from), zap.Int("to", target))
		case err != nil:
			s.logger.Warn("auto-save failed", zap.Int("from", from), zap.Int("to", target), zap.Error(err))
		}
	}

	s.mu.Lock()
	s.step = target
	s.prefillLocked()
	s.mu.Unlock()
	s.nav.SetStep(target)
	return decision, nil
}

// Next advances one step.
func (s *Session) Next(ctx context.Context) (Decision, error) {
	return s.GoTo(ctx, s.Step()+1)
}

// Back returns one step. On the first step it stays put.
func (s *Session) Back(ctx context.Context) (Decision, error) {
	return s.GoTo(ctx, max(s.Step()-1, 1))
}

// Generate renders the step's template against a snapshot of the record
// and stores the result in the step's field. On failure the field is left
// as it was.
func (s *Session) Generate(ctx context.Context, step int) (llm.GenerationResult, error) {
	def, ok := s.steps.Get(step)
	if !ok || !def.CanGenerate() {
		s.notify(LevelError, fmt.Sprintf("Step %d has nothing to generate", step), s.Step())
		return llm.GenerationResult{}, fmt.Errorf("%w: step %d", ErrNoGeneration, step)
	}
	if s.identity == "" {
		s.notify(LevelError, ErrAuthenticationRequired.Error(), step)
		return llm.GenerationResult{ErrorKind: llm.KindAuthRequired, Message: ErrAuthenticationRequired.Error()}, ErrAuthenticationRequired
	}

	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return llm.GenerationResult{}, ErrSessionFinished
	}
	if s.generating[step] {
		s.mu.Unlock()
		return llm.GenerationResult{}, ErrGenerationInProgress
	}
	s.generating[step] = true
	snapshot := s.record
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.generating, step)
		s.mu.Unlock()
	}()

	prompt := template.Render(def.Template, snapshot)
	result := s.generator.Generate(ctx, def.Task, prompt, s.identity)
	if !result.OK() {
		if result.ErrorKind == llm.KindNone {
			result.ErrorKind = llm.KindEmptyResponse
		}
		if result.Message == "" {
			result.Message = result.ErrorKind.Message("")
		}
		s.notify(LevelError, result.Message, step)
		return result, &GenerationError{Step: step, Kind: result.ErrorKind, Message: result.Message}
	}

	s.mu.Lock()
	_ = s.record.Set(def.GenerateField, result.Content)
	s.mu.Unlock()

	s.notify(LevelSuccess, capitalize(def.GenerateField.Label())+" generated", step)
	return result, nil
}

// SaveDraft persists the full record with its derived status. A second
// call while one is in flight returns ErrSaveInProgress without touching
// storage.
func (s *Session) SaveDraft(ctx context.Context) error {
	return s.save(ctx, false)
}

// Finalize saves from the last step and hands control to the listing.
func (s *Session) Finalize(ctx context.Context) error {
	if step := s.Step(); step != s.steps.Last() {
		s.notify(LevelError, "Finish is only available on the last step", step)
		return ErrNotFinalStep
	}
	if err := s.save(ctx, true); err != nil {
		return err
	}
	s.mu.Lock()
	s.finished = true
	s.mu.Unlock()
	s.nav.Leave()
	return nil
}

func (s *Session) save(ctx context.Context, final bool) error {
	step := s.Step()
	if s.identity == "" {
		s.notify(LevelError, ErrAuthenticationRequired.Error(), step)
		return ErrAuthenticationRequired
	}

	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return ErrSessionFinished
	}
	if s.saving {
		s.mu.Unlock()
		return ErrSaveInProgress
	}
	s.saving = true
	req := SaveRequest{
		HomilyID: s.homilyID,
		OwnerID:  s.identity,
		Record:   s.record,
		Status:   domain.DeriveStatus(s.record),
		Final:    final,
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.saving = false
		s.mu.Unlock()
	}()

	op := "update"
	if req.HomilyID == "" {
		op = "create"
	}
	id, err := s.storage.SaveDraft(ctx, req)
	if err != nil {
		perr := &PersistenceError{Op: op, Err: err}
		s.notify(LevelError, "Failed to save homily: "+err.Error(), step)
		return perr
	}

	s.mu.Lock()
	if id != "" {
		s.homilyID = id
	}
	s.mu.Unlock()

	msg := "Draft saved"
	if final {
		msg = "Homily saved"
	}
	s.notify(LevelSuccess, msg, step)
	return nil
}

// prefillLocked seeds definitions from the owner's defaults when the current
// step requires them and they are empty. Callers hold s.mu.
func (s *Session) prefillLocked() {
	def, ok := s.steps.Get(s.step)
	if !ok || def.RequiredField != domain.FieldDefinitions || s.defaults == "" {
		return
	}
	if !s.record.Filled(domain.FieldDefinitions) {
		s.record.Definitions = s.defaults
	}
}

func (s *Session) notify(level Level, msg string, step int) {
	s.notifier.Notify(Notification{Level: level, Message: msg, Step: step})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// IsBusy reports whether err is one of the re-entrancy rejections.
func IsBusy(err error) bool {
	return errors.Is(err, ErrSaveInProgress) || errors.Is(err, ErrGenerationInProgress)
}
