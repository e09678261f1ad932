package template

import (
	"fmt"
	"sort"
)

// PromptTemplate is a named prompt containing zero or more tokens.
type PromptTemplate struct {
	Name string
	Text string
}

// Placeholders returns the recognised tokens used by the template.
func (t PromptTemplate) Placeholders() []Token {
	return Placeholders(t.Text)
}

const answerPreface = "Preface your response by telling the user to read these questions and answer them in the same text area.  " +
	"The user should add any additional comments or direction at the end of the list."

// FirstQuestions asks for the opening set of framing questions.
var FirstQuestions = PromptTemplate{
	Name: "first-questions",
	Text: "Here are the readings: READINGS\n" +
		"Here is the context: CONTEXT\n" +
		"Here is what makes an excellent homily: DEFINITIONS\n" +
		"Generate thoughtful questions that explore the main themes and messages. \n" +
		"These should be initial questions that help frame the homily's direction.  \n" +
		"Do not generate any other response other than the questions for the user to answer.\n" +
		answerPreface,
}

// SecondQuestions follows up on the user's answers to the first round.
var SecondQuestions = PromptTemplate{
	Name: "second-questions",
	Text: "Here are the responses to your first set of questions: FIRST_SET_OF_QUESTIONS\n" +
		"Here is the context: CONTEXT\n" +
		"Here is what makes an excellent homily: DEFINITIONS\n" +
		"Generate one final set of questions before producing the final homily. \n" +
		"Do not generate any other response other than the questions for the user to answer.\n" +
		answerPreface,
}

// FinalDraft produces the homily itself, in the language named by the context.
var FinalDraft = PromptTemplate{
	Name: "final-draft",
	Text: "Here are the final responses to your second set of questions: SECOND_SET_OF_QUESTIONS\n" +
		"Here is the context: CONTEXT\n" +
		"Ensure that you abide by the context strictly.  " +
		"When outputting the final draft, ensure that you output the homily in the language provided in the context.\n" +
		"Here is what makes an excellent homily: DEFINITIONS\n" +
		"Do not generate any other response other than the final draft of the homily",
}

var canonical = map[string]PromptTemplate{
	FirstQuestions.Name:  FirstQuestions,
	SecondQuestions.Name: SecondQuestions,
	FinalDraft.Name:      FinalDraft,
}

// Lookup returns a canonical template by name.
func Lookup(name string) (PromptTemplate, error) {
	t, ok := canonical[name]
	if !ok {
		return PromptTemplate{}, fmt.Errorf("unknown template %q", name)
	}
	return t, nil
}

// All returns the canonical templates sorted by name.
func All() []PromptTemplate {
	out := make([]PromptTemplate, 0, len(canonical))
	for _, t := range canonical {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
