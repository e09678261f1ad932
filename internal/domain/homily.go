package domain

import (
	"fmt"
	"strings"
	"time"
)

// Fallbacks applied when a draft is persisted without a title or description.
const (
	DraftTitleFallback  = "Draft Homily"
	FinalTitleFallback  = "New Homily"
	DescriptionFallback = "Homily in progress"
)

// DraftRecord is the set of text fields edited through the wizard.
type DraftRecord struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Context         string `json:"context"`
	Readings        string `json:"readings"`
	Definitions     string `json:"definitions"`
	FirstQuestions  string `json:"firstQuestions"`
	SecondQuestions string `json:"secondQuestions"`
	FinalDraft      string `json:"finalDraft"`
}

// Get returns the value of field f. Unknown fields read as "".
func (r DraftRecord) Get(f Field) string {
	switch f {
	case FieldTitle:
		return r.Title
	case FieldDescription:
		return r.Description
	case FieldContext:
		return r.Context
	case FieldReadings:
		return r.Readings
	case FieldDefinitions:
		return r.Definitions
	case FieldFirstQuestions:
		return r.FirstQuestions
	case FieldSecondQuestions:
		return r.SecondQuestions
	case FieldFinalDraft:
		return r.FinalDraft
	default:
		return ""
	}
}

// Set assigns value to field f.
func (r *DraftRecord) Set(f Field, value string) error {
	switch f {
	case FieldTitle:
		r.Title = value
	case FieldDescription:
		r.Description = value
	case FieldContext:
		r.Context = value
	case FieldReadings:
		r.Readings = value
	case FieldDefinitions:
		r.Definitions = value
	case FieldFirstQuestions:
		r.FirstQuestions = value
	case FieldSecondQuestions:
		r.SecondQuestions = value
	case FieldFinalDraft:
		r.FinalDraft = value
	default:
		return fmt.Errorf("unknown field %q", f)
	}
	return nil
}

// Filled reports whether field f holds non-whitespace content.
func (r DraftRecord) Filled(f Field) bool {
	return strings.TrimSpace(r.Get(f)) != ""
}

// DeriveStatus maps the draft fields to a Status. The most advanced filled
// stage wins, so a record with a final draft is Complete even if earlier
// fields are blank.
func DeriveStatus(r DraftRecord) Status {
	switch {
	case r.Filled(FieldFinalDraft):
		return StatusComplete
	case r.Filled(FieldSecondQuestions):
		return StatusSecondDraft
	case r.Filled(FieldFirstQuestions):
		return StatusRoughDraft
	default:
		return StatusNotStarted
	}
}

// WithFallbacks returns a copy with blank title and description replaced.
func (r DraftRecord) WithFallbacks(title string) DraftRecord {
	out := r
	out.Title = CoalesceTrimmed(r.Title, title)
	out.Description = CoalesceTrimmed(r.Description, DescriptionFallback)
	return out
}

// Homily is a persisted draft owned by a single user.
type Homily struct {
	ID      string
	OwnerID string
	DraftRecord
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Refresh recomputes Status from the draft fields.
func (h *Homily) Refresh() {
	h.Status = DeriveStatus(h.DraftRecord)
}

// DisplayID returns the first 8 characters of the ID.
func (h *Homily) DisplayID() string {
	if len(h.ID) >= 8 {
		return h.ID[:8]
	}
	return h.ID
}

// DisplayTitle returns the title or a placeholder for untitled drafts.
func (h *Homily) DisplayTitle() string {
	return CoalesceTrimmed(h.Title, "(untitled)")
}
