package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/homilybuild/homily/internal/domain"
	"github.com/homilybuild/homily/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	// genai, linked in through llm, starts an opencensus worker at init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type fakeStorage struct {
	mu    sync.Mutex
	calls []SaveRequest
	err   error
	id    string
	// gate, when set, blocks SaveDraft until closed; entered is signalled first.
	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeStorage) SaveDraft(ctx context.Context, req SaveRequest) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	gate, entered := f.gate, f.entered
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if f.err != nil {
		return "", f.err
	}
	if req.HomilyID != "" {
		return req.HomilyID, nil
	}
	return f.id, nil
}

func (f *fakeStorage) saves() []SaveRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SaveRequest(nil), f.calls...)
}

type fakeGenerator struct {
	mu      sync.Mutex
	result  llm.GenerationResult
	prompts []string
	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeGenerator) Generate(ctx context.Context, task llm.TaskType, prompt, identity string) llm.GenerationResult {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	gate, entered := f.gate, f.entered
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	return f.result
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeNavigator struct {
	start  int
	has    bool
	set    []int
	leaves int
}

func (n *fakeNavigator) Step() (int, bool) { return n.start, n.has }
func (n *fakeNavigator) SetStep(step int)  { n.set = append(n.set, step) }
func (n *fakeNavigator) Leave()            { n.leaves++ }

type harness struct {
	session *Session
	storage *fakeStorage
	gen     *fakeGenerator
	nav     *fakeNavigator
	inbox   *Inbox
}

func newHarness(t *testing.T, step int, record domain.DraftRecord, opts ...func(*Config)) *harness {
	t.Helper()
	h := &harness{
		storage: &fakeStorage{id: "new-id"},
		gen:     &fakeGenerator{result: llm.GenerationResult{Content: "generated"}},
		nav:     &fakeNavigator{start: step, has: step != 0},
		inbox:   &Inbox{},
	}
	cfg := Config{
		HomilyID:  "h1",
		Identity:  "owner-1",
		Record:    record,
		Generator: h.gen,
		Storage:   h.storage,
		Navigator: h.nav,
		Notifier:  h.inbox,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	s, err := NewSession(cfg)
	require.NoError(t, err)
	h.session = s
	return h
}

func TestNewSession_InitialStepIsClamped(t *testing.T) {
	tests := []struct {
		name string
		nav  int
		want int
	}{
		{"missing", 0, 1},
		{"in range", 4, 4},
		{"below", -3, 1},
		{"above", 42, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.nav, domain.DraftRecord{})
			assert.Equal(t, tt.want, h.session.Step())
		})
	}
}

func TestNewSession_RequiresCollaborators(t *testing.T) {
	_, err := NewSession(Config{Storage: &fakeStorage{}})
	assert.Error(t, err)
	_, err = NewSession(Config{Generator: &fakeGenerator{}})
	assert.Error(t, err)
}

func TestGoTo_RefusesForwardWhenContextMissing(t *testing.T) {
	h := newHarness(t, 2, domain.DraftRecord{Context: ""})

	d, err := h.session.GoTo(context.Background(), 3)

	assert.False(t, d.Allowed)
	assert.Contains(t, d.Reason, "context")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 2, verr.Blocking)
	assert.Equal(t, 2, h.session.Step())
	assert.Empty(t, h.storage.saves(), "refused transitions never reach storage")
	assert.Empty(t, h.nav.set)

	notes := h.inbox.Drain()
	require.Len(t, notes, 1)
	assert.Equal(t, LevelError, notes[0].Level)
	assert.Contains(t, notes[0].Message, "context")
}

func TestGoTo_ForwardSavesFullRecord(t *testing.T) {
	record := domain.DraftRecord{Title: "Advent I", Context: "Spanish-speaking community"}
	h := newHarness(t, 2, record)

	d, err := h.session.GoTo(context.Background(), 3)

	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 3, h.session.Step())
	assert.Equal(t, []int{3}, h.nav.set)

	saves := h.storage.saves()
	require.Len(t, saves, 1)
	assert.Equal(t, "h1", saves[0].HomilyID)
	assert.Equal(t, "owner-1", saves[0].OwnerID)
	assert.Equal(t, record, saves[0].Record)
	assert.Equal(t, domain.StatusNotStarted, saves[0].Status)
	assert.False(t, saves[0].Final)
}

func TestGoTo_WhitespaceDoesNotSatisfyRequirement(t *testing.T) {
	h := newHarness(t, 3, domain.DraftRecord{Readings: "  \n\t"})
	d, err := h.session.GoTo(context.Background(), 4)
	assert.False(t, d.Allowed)
	assert.Error(t, err)

	require.NoError(t, h.session.SetField(domain.FieldReadings, "  Lk 4:16-21 "))
	d, err = h.session.GoTo(context.Background(), 4)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestGoTo_BackwardAndLateralAlwaysAllowed(t *testing.T) {
	for target := 1; target <= 5; target++ {
		h := newHarness(t, 5, domain.DraftRecord{})
		d, err := h.session.GoTo(context.Background(), target)
		require.NoError(t, err)
		assert.True(t, d.Allowed, "target %d", target)
		assert.Equal(t, target, h.session.Step())
		assert.Empty(t, h.storage.saves(), "backward moves do not save")
	}
}

func TestGoTo_MultiStepJumpChecksIntermediateSteps(t *testing.T) {
	h := newHarness(t, 1, domain.DraftRecord{Context: "parish", Definitions: "d"})

	d, err := h.session.GoTo(context.Background(), 5)

	assert.Error(t, err)
	assert.Equal(t, 3, d.Blocking)
	assert.Contains(t, d.Reason, "readings")
	assert.Equal(t, 1, h.session.Step())
}

func TestGoTo_OutOfRangeRefused(t *testing.T) {
	h := newHarness(t, 7, domain.DraftRecord{})
	d, err := h.session.GoTo(context.Background(), 8)
	assert.False(t, d.Allowed)
	assert.Error(t, err)
	assert.Equal(t, 7, h.session.Step())
}

func TestGoTo_SaveFailureDoesNotBlockNavigation(t *testing.T) {
	h := newHarness(t, 1, domain.DraftRecord{})
	h.storage.err = errors.New("connection refused")

	d, err := h.session.GoTo(context.Background(), 2)

	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 2, h.session.Step())

	notes := h.inbox.Drain()
	require.Len(t, notes, 1)
	assert.Equal(t, LevelError, notes[0].Level)
	assert.Contains(t, notes[0].Message, "connection refused")
}

func TestNextBack(t *testing.T) {
	h := newHarness(t, 1, domain.DraftRecord{})
	ctx := context.Background()

	_, err := h.session.Back(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, h.session.Step())

	_, err = h.session.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, h.session.Step())

	_, err = h.session.Next(ctx)
	assert.Error(t, err, "context is required")

	_, err = h.session.Back(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, h.session.Step())
}

func TestGoTo_PrefillsDefinitions(t *testing.T) {
	record := domain.DraftRecord{Context: "c", Readings: "r"}
	h := newHarness(t, 3, record, func(c *Config) { c.DefaultDefinitions = "Homily: a sermon" })

	_, err := h.session.GoTo(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "Homily: a sermon", h.session.Record().Definitions)

	require.NoError(t, h.session.SetField(domain.FieldDefinitions, "mine"))
	_, err = h.session.GoTo(context.Background(), 3)
	require.NoError(t, err)
	_, err = h.session.GoTo(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "mine", h.session.Record().Definitions, "existing definitions are kept")
}

func TestNewSession_PrefillsWhenStartingOnDefinitions(t *testing.T) {
	h := newHarness(t, 4, domain.DraftRecord{}, func(c *Config) { c.DefaultDefinitions = "defaults" })
	assert.Equal(t, "defaults", h.session.Record().Definitions)
}

func TestGenerate_StoresContent(t *testing.T) {
	record := domain.DraftRecord{Readings: "Isaiah 61:1-2", Context: "English parish", Definitions: "short"}
	h := newHarness(t, 5, record)
	h.gen.result = llm.GenerationResult{Content: "1. Who is anointed?"}

	res, err := h.session.Generate(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, "1. Who is anointed?", res.Content)
	assert.Equal(t, "1. Who is anointed?", h.session.Record().FirstQuestions)
	assert.Equal(t, domain.StatusRoughDraft, h.session.Status())

	require.Equal(t, 1, h.gen.calls())
	assert.Contains(t, h.gen.prompts[0], "Here are the readings: Isaiah 61:1-2")
	assert.Contains(t, h.gen.prompts[0], "Here is the context: English parish")

	notes := h.inbox.Drain()
	require.Len(t, notes, 1)
	assert.Equal(t, "First questions generated", notes[0].Message)
}

func TestGenerate_FailureLeavesFieldUntouched(t *testing.T) {
	tests := []struct {
		name   string
		result llm.GenerationResult
		kind   llm.ErrorKind
	}{
		{"rate limited", llm.GenerationResult{ErrorKind: llm.KindRateLimited, Message: "Rate limit exceeded. Please try again in a moment."}, llm.KindRateLimited},
		{"empty content", llm.GenerationResult{Content: "   "}, llm.KindEmptyResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, 6, domain.DraftRecord{SecondQuestions: "previous answers"})
			h.gen.result = tt.result

			_, err := h.session.Generate(context.Background(), 6)

			var gerr *GenerationError
			require.ErrorAs(t, err, &gerr)
			assert.Equal(t, tt.kind, gerr.Kind)
			assert.Equal(t, "previous answers", h.session.Record().SecondQuestions)

			notes := h.inbox.Drain()
			require.Len(t, notes, 1)
			assert.Equal(t, LevelError, notes[0].Level)
			assert.NotEmpty(t, notes[0].Message)
		})
	}
}

func TestGenerate_RequiresIdentity(t *testing.T) {
	h := newHarness(t, 5, domain.DraftRecord{}, func(c *Config) { c.Identity = " " })

	res, err := h.session.Generate(context.Background(), 5)

	assert.ErrorIs(t, err, ErrAuthenticationRequired)
	assert.Equal(t, llm.KindAuthRequired, res.ErrorKind)
	assert.Zero(t, h.gen.calls(), "no network call without identity")
	assert.Equal(t, "User authentication required", h.inbox.Drain()[0].Message)
}

func TestGenerate_StepWithoutGeneration(t *testing.T) {
	h := newHarness(t, 2, domain.DraftRecord{})
	_, err := h.session.Generate(context.Background(), 2)
	assert.ErrorIs(t, err, ErrNoGeneration)
	_, err = h.session.Generate(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNoGeneration)

	notes := h.inbox.Drain()
	require.Len(t, notes, 2, "each refusal is reported once")
	assert.Equal(t, Notification{Level: LevelError, Message: "Step 2 has nothing to generate", Step: 2}, notes[0])
	assert.Equal(t, "Step 99 has nothing to generate", notes[1].Message)
	assert.Zero(t, h.gen.calls())
}

func TestGenerate_SameStepGuard(t *testing.T) {
	h := newHarness(t, 5, domain.DraftRecord{})
	h.gen.gate = make(chan struct{})
	h.gen.entered = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() {
		_, err := h.session.Generate(context.Background(), 5)
		done <- err
	}()
	<-h.gen.entered

	_, busy := h.session.Busy()
	assert.Equal(t, []int{5}, busy)

	_, err := h.session.Generate(context.Background(), 5)
	assert.ErrorIs(t, err, ErrGenerationInProgress)
	assert.True(t, IsBusy(err))

	close(h.gen.gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, h.gen.calls())

	_, busy = h.session.Busy()
	assert.Empty(t, busy)
}

func TestGenerate_DifferentStepsRunConcurrently(t *testing.T) {
	h := newHarness(t, 5, domain.DraftRecord{})
	h.gen.gate = make(chan struct{})
	h.gen.entered = make(chan struct{}, 2)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, step := range []int{5, 6} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = h.session.Generate(context.Background(), step)
		}()
	}
	<-h.gen.entered
	<-h.gen.entered
	close(h.gen.gate)
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.Equal(t, "generated", h.session.Record().FirstQuestions)
	assert.Equal(t, "generated", h.session.Record().SecondQuestions)
}

func TestSaveDraft_ReentrancyGuard(t *testing.T) {
	h := newHarness(t, 1, domain.DraftRecord{FirstQuestions: "q"})
	h.storage.gate = make(chan struct{})
	h.storage.entered = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() { done <- h.session.SaveDraft(context.Background()) }()
	<-h.storage.entered

	saving, _ := h.session.Busy()
	assert.True(t, saving)

	err := h.session.SaveDraft(context.Background())
	assert.ErrorIs(t, err, ErrSaveInProgress)

	close(h.storage.gate)
	require.NoError(t, <-done)

	saves := h.storage.saves()
	require.Len(t, saves, 1, "exactly one storage call")
	assert.Equal(t, domain.StatusRoughDraft, saves[0].Status)

	notes := h.inbox.Drain()
	require.Len(t, notes, 1, "the rejected call is not notified")
	assert.Equal(t, "Draft saved", notes[0].Message)
}

func TestGoTo_InFlightSaveStandsInForAutoSave(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	h := newHarness(t, 1, domain.DraftRecord{Title: "Advent I"}, func(c *Config) { c.Logger = zap.New(core) })
	h.storage.gate = make(chan struct{})
	h.storage.entered = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() { done <- h.session.SaveDraft(context.Background()) }()
	<-h.storage.entered

	_, err := h.session.GoTo(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, h.session.Step())

	close(h.storage.gate)
	require.NoError(t, <-done)

	assert.Len(t, h.storage.saves(), 1)
	assert.Equal(t, 1, logs.FilterMessage("auto-save skipped, save in flight").Len())
	assert.Zero(t, logs.FilterLevelExact(zap.WarnLevel).Len())
}

func TestSaveDraft_FailureReleasesGuard(t *testing.T) {
	h := newHarness(t, 1, domain.DraftRecord{})
	h.storage.err = errors.New("disk full")

	err := h.session.SaveDraft(context.Background())
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "update", perr.Op)

	h.storage.err = nil
	require.NoError(t, h.session.SaveDraft(context.Background()))
	assert.Len(t, h.storage.saves(), 2)
}

func TestSaveDraft_AdoptsCreatedID(t *testing.T) {
	h := newHarness(t, 1, domain.DraftRecord{}, func(c *Config) { c.HomilyID = "" })

	require.NoError(t, h.session.SaveDraft(context.Background()))
	require.NoError(t, h.session.SaveDraft(context.Background()))

	saves := h.storage.saves()
	require.Len(t, saves, 2)
	assert.Empty(t, saves[0].HomilyID)
	assert.Equal(t, "new-id", saves[1].HomilyID)
	assert.Equal(t, "new-id", h.session.HomilyID())
}

func TestSaveDraft_RequiresIdentity(t *testing.T) {
	h := newHarness(t, 1, domain.DraftRecord{}, func(c *Config) { c.Identity = "" })
	assert.ErrorIs(t, h.session.SaveDraft(context.Background()), ErrAuthenticationRequired)
	assert.Empty(t, h.storage.saves())
}

func TestFinalize(t *testing.T) {
	h := newHarness(t, 6, domain.DraftRecord{FinalDraft: "Complete homily text"})
	ctx := context.Background()

	assert.ErrorIs(t, h.session.Finalize(ctx), ErrNotFinalStep)
	assert.Equal(t, []Notification{{Level: LevelError, Message: "Finish is only available on the last step", Step: 6}}, h.inbox.Drain())
	assert.Empty(t, h.storage.saves())

	_, err := h.session.GoTo(ctx, 7)
	assert.Error(t, err, "second questions are required")
	require.NoError(t, h.session.SetField(domain.FieldSecondQuestions, "answers"))
	_, err = h.session.GoTo(ctx, 7)
	require.NoError(t, err)

	require.NoError(t, h.session.Finalize(ctx))
	assert.True(t, h.session.Finished())
	assert.Equal(t, 1, h.nav.leaves)

	saves := h.storage.saves()
	last := saves[len(saves)-1]
	assert.True(t, last.Final)
	assert.Equal(t, domain.StatusComplete, last.Status)

	assert.ErrorIs(t, h.session.SetField(domain.FieldTitle, "x"), ErrSessionFinished)
	_, err = h.session.GoTo(ctx, 1)
	assert.ErrorIs(t, err, ErrSessionFinished)
}

func TestFinalize_FailureKeepsSessionOpen(t *testing.T) {
	h := newHarness(t, 7, domain.DraftRecord{})
	h.storage.err = errors.New("timeout")

	assert.Error(t, h.session.Finalize(context.Background()))
	assert.False(t, h.session.Finished())
	assert.Zero(t, h.nav.leaves)
}

func TestSession_URLNavigatorRoundTrip(t *testing.T) {
	nav, err := NewURLNavigator("https://homily.build/homilies/h1/edit?step=2", "/homilies")
	require.NoError(t, err)

	s, err := NewSession(Config{
		HomilyID:  "h1",
		Identity:  "owner-1",
		Record:    domain.DraftRecord{Context: "parish"},
		Generator: &fakeGenerator{},
		Storage:   &fakeStorage{},
		Navigator: nav,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Step())

	_, err = s.GoTo(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "https://homily.build/homilies/h1/edit?step=3", nav.Location())
}
