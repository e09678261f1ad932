package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/homilybuild/homily/internal/domain"
	"github.com/homilybuild/homily/internal/service"
	"github.com/homilybuild/homily/internal/template"
)

const (
	// StyleAuto picks a glamour style from the terminal background.
	StyleAuto = "auto"
	// StylePlain renders markdown without ANSI sequences.
	StylePlain = "notty"
)

// FormatHomilyList renders one page of homilies with a paging footer.
func FormatHomilyList(p *service.Page) string {
	headers := []string{"ID", "Title", "Status", "Description", "Updated"}
	rows := make([][]string, 0, len(p.Items))
	for _, h := range p.Items {
		rows = append(rows, []string{
			Dim(h.DisplayID()),
			Bold(Truncate(h.DisplayTitle(), 40)),
			StatusPill(h.Status),
			Truncate(h.Description, 40),
			HumanTimestamp(h.UpdatedAt),
		})
	}

	var b strings.Builder
	b.WriteString(RenderTable(headers, rows))
	fmt.Fprintf(&b, "\n%s\n", Dim(fmt.Sprintf("Page %d of %d · %d homilies", p.CurrentPage, max(p.TotalPages, 1), p.Total)))
	return b.String()
}

// RenderMarkdown renders md for the terminal with the given glamour style.
func RenderMarkdown(md, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == StyleAuto {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	return r.Render(md)
}

// FormatHomilyDetail renders the whole homily as markdown through glamour.
func FormatHomilyDetail(h *domain.Homily, style string) (string, error) {
	body, err := RenderMarkdown(service.Markdown(h), style, 80)
	if err != nil {
		return "", err
	}
	meta := Dim(fmt.Sprintf("id %s · created %s · updated %s",
		h.ID, HumanDate(h.CreatedAt), HumanTimestamp(h.UpdatedAt)))
	return body + "\n" + meta + "\n", nil
}

// FormatDashboard summarises counts per status and the latest homilies.
func FormatDashboard(d *service.Dashboard) string {
	var b strings.Builder
	b.WriteString(Header("Dashboard"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Total      %s\n", Bold(fmt.Sprint(d.Total)))
	for _, s := range domain.AllStatuses {
		fmt.Fprintf(&b, "  %-10s %d\n", s.Label(), d.Counts[s])
	}
	if len(d.Recent) == 0 {
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(Header("Recent"))
	b.WriteString("\n")
	for _, h := range d.Recent {
		fmt.Fprintf(&b, "  %s  %s  %s\n", Dim(h.DisplayID()), StatusPill(h.Status), h.DisplayTitle())
	}
	return b.String()
}

// FormatContextList renders saved contexts, marking the owner's default.
func FormatContextList(contexts []*domain.PreachingContext, defaultID string) string {
	headers := []string{"ID", "Name", "Content", ""}
	rows := make([][]string, 0, len(contexts))
	for _, c := range contexts {
		mark := ""
		if c.ID == defaultID {
			mark = StyleGreen.Render("default")
		}
		rows = append(rows, []string{Dim(shortID(c.ID)), Bold(c.Name), Truncate(c.Content, 50), mark})
	}
	return RenderTable(headers, rows)
}

// FormatSettings shows the effective definitions and default context.
func FormatSettings(s *domain.UserSettings, defaultContext *domain.PreachingContext) string {
	var b strings.Builder
	b.WriteString(Header("Settings"))
	b.WriteString("\n")

	source := "custom"
	if s.UsesDefaultDefinitions() {
		source = "built-in"
	}
	ctxName := Dim("none")
	if defaultContext != nil {
		ctxName = defaultContext.Name
	}
	fmt.Fprintf(&b, "  Default context:  %s\n", ctxName)
	fmt.Fprintf(&b, "  Definitions:      %s\n\n", Dim(source))
	b.WriteString(s.EffectiveDefinitions())
	b.WriteString("\n")
	return b.String()
}

// FormatTemplate prints a prompt template with its placeholders.
func FormatTemplate(t template.PromptTemplate) string {
	var b strings.Builder
	b.WriteString(Header(t.Name))
	b.WriteString("\n")
	tokens := t.Placeholders()
	names := make([]string, len(tokens))
	for i, tok := range tokens {
		names[i] = StylePurple.Render(string(tok))
	}
	fmt.Fprintf(&b, "  Placeholders: %s\n\n", strings.Join(names, ", "))
	b.WriteString(t.Text)
	b.WriteString("\n")
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
