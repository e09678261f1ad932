package service

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/homilybuild/homily/internal/domain"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// exportSections are rendered in order when filled.
var exportSections = []struct {
	field   domain.Field
	heading string
}{
	{domain.FieldFinalDraft, "Homily"},
	{domain.FieldReadings, "Readings"},
	{domain.FieldContext, "Context"},
	{domain.FieldSecondQuestions, "Second Questions"},
	{domain.FieldFirstQuestions, "First Questions"},
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

// Markdown assembles the homily as a markdown document.
func Markdown(h *domain.Homily) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", h.DisplayTitle())
	if d := strings.TrimSpace(h.Description); d != "" {
		fmt.Fprintf(&b, "_%s_\n\n", d)
	}
	fmt.Fprintf(&b, "Status: **%s**\n\n", h.Status.Label())
	for _, sec := range exportSections {
		v := strings.TrimSpace(h.Get(sec.field))
		if v == "" {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", sec.heading, v)
	}
	return b.String()
}

// RenderHTML converts the homily to a standalone HTML page. Raw HTML in the
// draft text is not passed through.
func RenderHTML(h *domain.Homily) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(Markdown(h)), &body); err != nil {
		return nil, fmt.Errorf("rendering homily %s: %w", h.ID, err)
	}

	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&out, "<title>%s</title>\n", html.EscapeString(h.DisplayTitle()))
	out.WriteString("</head>\n<body>\n")
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")
	return out.Bytes(), nil
}
