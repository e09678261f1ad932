package wizard

import (
	"fmt"

	"github.com/homilybuild/homily/internal/domain"
	"github.com/homilybuild/homily/internal/llm"
	"github.com/homilybuild/homily/internal/template"
)

// StepDefinition describes one wizard stage.
type StepDefinition struct {
	ID   int
	Name string

	// RequiredField must be filled before the wizard may move past this
	// step. Empty means no requirement.
	RequiredField domain.Field

	// GenerateField is overwritten by a successful Generate on this step.
	// Empty means the step has no generation action.
	GenerateField domain.Field
	Template      template.PromptTemplate
	Task          llm.TaskType
}

// CanGenerate reports whether the step declares a generation action.
func (d StepDefinition) CanGenerate() bool {
	return d.GenerateField != ""
}

// Steps is an immutable, contiguous sequence of step definitions.
type Steps struct {
	defs []StepDefinition
}

// NewSteps validates that ids run 1..N in order and that every generating
// step has a template.
func NewSteps(defs ...StepDefinition) (Steps, error) {
	if len(defs) == 0 {
		return Steps{}, fmt.Errorf("wizard needs at least one step")
	}
	for i, d := range defs {
		if d.ID != i+1 {
			return Steps{}, fmt.Errorf("step %q has id %d, want %d", d.Name, d.ID, i+1)
		}
		if d.CanGenerate() && d.Template.Text == "" {
			return Steps{}, fmt.Errorf("step %d generates %s but has no template", d.ID, d.GenerateField)
		}
	}
	return Steps{defs: append([]StepDefinition(nil), defs...)}, nil
}

// DefaultSteps is the seven-stage homily sequence.
func DefaultSteps() Steps {
	steps, err := NewSteps(
		StepDefinition{ID: 1, Name: "Title & Description"},
		StepDefinition{ID: 2, Name: "Context", RequiredField: domain.FieldContext},
		StepDefinition{ID: 3, Name: "Scripture Readings", RequiredField: domain.FieldReadings},
		StepDefinition{ID: 4, Name: "Definitions", RequiredField: domain.FieldDefinitions},
		StepDefinition{
			ID:            5,
			Name:          "First Questions",
			RequiredField: domain.FieldFirstQuestions,
			GenerateField: domain.FieldFirstQuestions,
			Template:      template.FirstQuestions,
			Task:          llm.TaskFirstQuestions,
		},
		StepDefinition{
			ID:            6,
			Name:          "Second Questions",
			RequiredField: domain.FieldSecondQuestions,
			GenerateField: domain.FieldSecondQuestions,
			Template:      template.SecondQuestions,
			Task:          llm.TaskSecondQuestions,
		},
		StepDefinition{
			ID:            7,
			Name:          "Final Draft",
			GenerateField: domain.FieldFinalDraft,
			Template:      template.FinalDraft,
			Task:          llm.TaskFinalDraft,
		},
	)
	if err != nil {
		panic(err)
	}
	return steps
}

// Len returns the number of steps.
func (s Steps) Len() int { return len(s.defs) }

// Last returns the id of the final step.
func (s Steps) Last() int { return len(s.defs) }

// Get returns the step with the given id.
func (s Steps) Get(id int) (StepDefinition, bool) {
	if id < 1 || id > len(s.defs) {
		return StepDefinition{}, false
	}
	return s.defs[id-1], true
}

// All returns a copy of the definitions.
func (s Steps) All() []StepDefinition {
	return append([]StepDefinition(nil), s.defs...)
}

// Clamp forces id into [1, Len()].
func (s Steps) Clamp(id int) int {
	if id < 1 {
		return 1
	}
	if id > len(s.defs) {
		return len(s.defs)
	}
	return id
}

// StepFor returns the first step whose requirement or generation targets f.
func (s Steps) StepFor(f domain.Field) (StepDefinition, bool) {
	for _, d := range s.defs {
		if d.RequiredField == f || d.GenerateField == f {
			return d, true
		}
	}
	return StepDefinition{}, false
}
