package domain

import "fmt"

// Status is the progress stage of a homily. It is always derived from the
// draft fields and never assigned by callers.
type Status string

const (
	StatusNotStarted  Status = "NotStarted"
	StatusRoughDraft  Status = "RoughDraft"
	StatusSecondDraft Status = "SecondDraft"
	StatusComplete    Status = "Complete"
)

// AllStatuses lists statuses in progression order.
var AllStatuses = []Status{StatusNotStarted, StatusRoughDraft, StatusSecondDraft, StatusComplete}

// Label returns the human-facing name, e.g. "Rough Draft".
func (s Status) Label() string {
	switch s {
	case StatusNotStarted:
		return "Not Started"
	case StatusRoughDraft:
		return "Rough Draft"
	case StatusSecondDraft:
		return "Second Draft"
	case StatusComplete:
		return "Complete"
	default:
		return string(s)
	}
}

// ParseStatus accepts either the stored value ("RoughDraft") or the label
// ("Rough Draft"), case-insensitively.
func ParseStatus(s string) (Status, error) {
	for _, st := range AllStatuses {
		if equalFold(s, string(st)) || equalFold(s, st.Label()) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Field names one of the editable text fields of a draft.
type Field string

const (
	FieldTitle           Field = "title"
	FieldDescription     Field = "description"
	FieldContext         Field = "context"
	FieldReadings        Field = "readings"
	FieldDefinitions     Field = "definitions"
	FieldFirstQuestions  Field = "firstQuestions"
	FieldSecondQuestions Field = "secondQuestions"
	FieldFinalDraft      Field = "finalDraft"
)

// AllFields lists every draft field in wizard order.
var AllFields = []Field{
	FieldTitle,
	FieldDescription,
	FieldContext,
	FieldReadings,
	FieldDefinitions,
	FieldFirstQuestions,
	FieldSecondQuestions,
	FieldFinalDraft,
}

// ParseField resolves a field name. Both camelCase ("firstQuestions") and
// snake_case ("first_questions") spellings are accepted.
func ParseField(s string) (Field, error) {
	for _, f := range AllFields {
		if equalFold(s, string(f)) || equalFold(s, f.Column()) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown field %q", s)
}

// Column returns the snake_case storage column for the field.
func (f Field) Column() string {
	switch f {
	case FieldFirstQuestions:
		return "first_questions"
	case FieldSecondQuestions:
		return "second_questions"
	case FieldFinalDraft:
		return "final_draft"
	default:
		return string(f)
	}
}

// Label is the lower-case display name used in messages, e.g. "first questions".
func (f Field) Label() string {
	switch f {
	case FieldFirstQuestions:
		return "first questions"
	case FieldSecondQuestions:
		return "second questions"
	case FieldFinalDraft:
		return "final draft"
	default:
		return string(f)
	}
}
