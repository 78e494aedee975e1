package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"aiusage/internal/record"
)

// linesPerItem is the number of terminal lines each interaction occupies.
const linesPerItem = 2

// renderList renders the left panel: captured interactions with scrolling.
func (m model) renderList(width, height int) string {
	if len(m.items) == 0 {
		return lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("Waiting for interactions...")
	}

	var lines []string
	for i, in := range m.items {
		if i < m.listOffset {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		lines = append(lines, formatItemLines(in, width, i == m.cursor)...)
	}

	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

// formatItemLines formats one interaction as two lines:
//
//	line 1: [>] kind  HH:MM  language
//	line 2:    response excerpt (dimmed)
func formatItemLines(in record.Interaction, width int, selected bool) []string {
	var kind string
	switch in.Kind {
	case record.KindCompletion:
		kind = styleKindCompletion.Render("compl")
	case record.KindChat:
		kind = styleKindChat.Render("chat ")
	default:
		kind = in.Kind
	}

	clock := time.UnixMilli(in.Timestamp).Format("15:04")

	lang := in.Language
	langMax := width - 2 - 5 - 5 - 4
	if langMax < 0 {
		langMax = 0
	}
	if runewidth.StringWidth(lang) > langMax {
		lang = runewidth.Truncate(lang, langMax, "")
	}

	line1 := fmt.Sprintf("%s %s %s", kind, clock, lang)
	if selected {
		line1 = styleListSelected.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	excerpt := strings.ReplaceAll(in.Response, "\n", " ")
	excerpt = strings.ReplaceAll(excerpt, "\t", " ")
	excerptMax := width - 4
	if excerptMax < 0 {
		excerptMax = 0
	}
	if runewidth.StringWidth(excerpt) > excerptMax {
		excerpt = runewidth.Truncate(excerpt, excerptMax, "")
	}
	line2 := "    " + lipgloss.NewStyle().Foreground(colorDim).Render(excerpt)

	return []string{line1, line2}
}

// renderDetail renders the preview pane for one interaction.
func renderDetail(in record.Interaction, width int) string {
	label := lipgloss.NewStyle().Foreground(colorDim)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", label.Render("kind:"), in.Kind)
	fmt.Fprintf(&b, "%s %s\n", label.Render("time:"), time.UnixMilli(in.Timestamp).Format(time.RFC3339))
	fmt.Fprintf(&b, "%s %s\n", label.Render("lang:"), in.Language)
	if in.ModelName != "" {
		fmt.Fprintf(&b, "%s %s\n", label.Render("model:"), in.ModelName)
	}
	if in.SourceLocator != record.SourceChat {
		fmt.Fprintf(&b, "%s %s:%d\n", label.Render("source:"), in.SourceLocator, in.LineNumber)
	}
	if in.LatencyMs > 0 {
		fmt.Fprintf(&b, "%s %d ms\n", label.Render("latency:"), in.LatencyMs)
	}
	if in.Prompt != "" {
		b.WriteString("\n")
		b.WriteString(label.Render("prompt"))
		b.WriteString("\n")
		b.WriteString(wrap(in.Prompt, width))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(label.Render("response"))
	b.WriteString("\n")
	b.WriteString(wrap(in.Response, width))
	return b.String()
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	var out []string
	for _, line := range strings.Split(s, "\n") {
		for runewidth.StringWidth(line) > width {
			cut := runewidth.Truncate(line, width, "")
			out = append(out, cut)
			line = strings.TrimPrefix(line, cut)
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := listHeight / linesPerItem
	if visibleItems < 1 {
		visibleItems = 1
	}
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}
