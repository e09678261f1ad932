package template

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/homilybuild/homily/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_FirstQuestionsSubstitutesReadingsAndContext(t *testing.T) {
	record := domain.DraftRecord{
		Readings: "Isaiah 61:1-2",
		Context:  "English parish, 300 attendees",
	}

	got := Render(FirstQuestions, record)

	assert.Contains(t, got, "Here are the readings: Isaiah 61:1-2\n")
	assert.Contains(t, got, "Here is the context: English parish, 300 attendees\n")
	assert.Contains(t, got, "Here is what makes an excellent homily: \n")
	for _, tok := range Tokens() {
		assert.NotContains(t, got, string(tok))
	}
}

func TestRender_Deterministic(t *testing.T) {
	record := domain.DraftRecord{
		Readings:        "Mk 1:1-8",
		Context:         "Advent",
		Definitions:     "Brief.",
		FirstQuestions:  "A1",
		SecondQuestions: "A2",
	}
	for _, tmpl := range All() {
		first := Render(tmpl, record)
		second := Render(tmpl, record)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("%s rendered differently (-first +second):\n%s", tmpl.Name, diff)
		}
	}
}

func TestRender_ExactOutput(t *testing.T) {
	tmpl := PromptTemplate{Name: "t", Text: "R=READINGS C=CONTEXT D=DEFINITIONS 1=FIRST_SET_OF_QUESTIONS 2=SECOND_SET_OF_QUESTIONS"}
	record := domain.DraftRecord{
		Readings:        "r",
		Context:         "c",
		Definitions:     "d",
		FirstQuestions:  "q1",
		SecondQuestions: "q2",
		FinalDraft:      "ignored",
	}

	want := "R=r C=c D=d 1=q1 2=q2"
	if diff := cmp.Diff(want, Render(tmpl, record)); diff != "" {
		t.Errorf("Render mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_ReplacesEveryOccurrence(t *testing.T) {
	got := RenderText("CONTEXT / CONTEXT / CONTEXT", domain.DraftRecord{Context: "x"})
	assert.Equal(t, "x / x / x", got)
}

func TestRender_EmptyFieldBecomesEmptyString(t *testing.T) {
	got := RenderText("[DEFINITIONS]", domain.DraftRecord{})
	assert.Equal(t, "[]", got)
}

func TestRender_UnknownTokensStayLiteral(t *testing.T) {
	text := "Theme: HOMILY_THEME; readings: READINGS; saint: PATRON_SAINT"
	got := RenderText(text, domain.DraftRecord{Readings: "Lk 2"})

	assert.Equal(t, "Theme: HOMILY_THEME; readings: Lk 2; saint: PATRON_SAINT", got)
	assert.Equal(t, []string{"HOMILY_THEME", "PATRON_SAINT"}, Unresolved(got))
}

func TestRender_SubstitutedValuesAreNotRescanned(t *testing.T) {
	record := domain.DraftRecord{
		Definitions: "mention the READINGS explicitly",
		Readings:    "Ps 23",
	}
	got := RenderText("DEFINITIONS | READINGS", record)
	assert.Equal(t, "mention the READINGS explicitly | Ps 23", got)
}

func TestPlaceholders_CanonicalTemplates(t *testing.T) {
	tests := []struct {
		tmpl PromptTemplate
		want []Token
	}{
		{FirstQuestions, []Token{TokenDefinitions, TokenReadings, TokenContext}},
		{SecondQuestions, []Token{TokenDefinitions, TokenFirstQuestions, TokenContext}},
		{FinalDraft, []Token{TokenDefinitions, TokenSecondQuestions, TokenContext}},
	}
	for _, tt := range tests {
		t.Run(tt.tmpl.Name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tmpl.Placeholders())
			assert.Empty(t, Unresolved(tt.tmpl.Text))
		})
	}
}

func TestFinalDraft_CarriesLanguageInstruction(t *testing.T) {
	assert.True(t, strings.Contains(FinalDraft.Text, "in the language provided in the context"))
}

func TestFieldFor(t *testing.T) {
	f, ok := FieldFor(TokenSecondQuestions)
	require.True(t, ok)
	assert.Equal(t, domain.FieldSecondQuestions, f)

	_, ok = FieldFor(Token("TITLE"))
	assert.False(t, ok)
	assert.Len(t, Tokens(), 5)
}

func TestLookup(t *testing.T) {
	tmpl, err := Lookup("final-draft")
	require.NoError(t, err)
	assert.Equal(t, FinalDraft, tmpl)

	_, err = Lookup("sermon")
	assert.Error(t, err)
}
