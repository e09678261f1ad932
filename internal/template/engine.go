package template

import (
	"regexp"
	"strings"

	"github.com/homilybuild/homily/internal/domain"
)

// Token is a placeholder recognised inside a prompt template.
type Token string

const (
	TokenDefinitions     Token = "DEFINITIONS"
	TokenReadings        Token = "READINGS"
	TokenFirstQuestions  Token = "FIRST_SET_OF_QUESTIONS"
	TokenSecondQuestions Token = "SECOND_SET_OF_QUESTIONS"
	TokenContext         Token = "CONTEXT"
)

// binding ties a token to the draft field it is replaced with.
type binding struct {
	token Token
	field domain.Field
}

// bindings is the complete substitution table. Adding a templated field
// means adding a row here; there is no other way to introduce a token.
var bindings = [...]binding{
	{TokenDefinitions, domain.FieldDefinitions},
	{TokenReadings, domain.FieldReadings},
	{TokenFirstQuestions, domain.FieldFirstQuestions},
	{TokenSecondQuestions, domain.FieldSecondQuestions},
	{TokenContext, domain.FieldContext},
}

// Tokens returns the recognised tokens in substitution order.
func Tokens() []Token {
	out := make([]Token, len(bindings))
	for i, b := range bindings {
		out[i] = b.token
	}
	return out
}

// FieldFor returns the draft field bound to tok.
func FieldFor(tok Token) (domain.Field, bool) {
	for _, b := range bindings {
		if b.token == tok {
			return b.field, true
		}
	}
	return "", false
}

// Render substitutes every recognised token in t with the matching field of
// record. Empty fields substitute as "". Anything that is not one of the
// five tokens is copied through untouched. Substituted values are not
// scanned again, so field text that happens to contain a token name is
// preserved verbatim.
func Render(t PromptTemplate, record domain.DraftRecord) string {
	return RenderText(t.Text, record)
}

// RenderText is Render for a raw template string.
func RenderText(text string, record domain.DraftRecord) string {
	pairs := make([]string, 0, len(bindings)*2)
	for _, b := range bindings {
		pairs = append(pairs, string(b.token), record.Get(b.field))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// Placeholders reports which recognised tokens appear in text, in
// substitution order.
func Placeholders(text string) []Token {
	var out []Token
	for _, b := range bindings {
		if strings.Contains(text, string(b.token)) {
			out = append(out, b.token)
		}
	}
	return out
}

var capsWord = regexp.MustCompile(`\b[A-Z][A-Z0-9]*(?:_[A-Z0-9]+)+\b`)

// Unresolved lists SCREAMING_SNAKE words in text that look like tokens but
// are not in the table. Render leaves these as literal text.
func Unresolved(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range capsWord.FindAllString(text, -1) {
		if _, ok := FieldFor(Token(w)); ok || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}
