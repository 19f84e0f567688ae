package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	TextStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	BoldStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	BulletStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

const bulletGlyph = "• "

// RenderTerminal renders blocks for a terminal of the given width. Bullets get
// a hanging indent; accent, when set, colours the bullet glyphs.
func RenderTerminal(blocks []Block, width int, accent lipgloss.Color) string {
	if width < 10 {
		width = 10
	}

	bulletStyle := BulletStyle
	if accent != "" {
		bulletStyle = bulletStyle.Foreground(accent)
	}

	lines := make([]string, 0, len(blocks))
	for _, block := range blocks {
		content := renderSpans(block.Spans)

		if block.Kind == BulletItem {
			body := lipgloss.NewStyle().Width(width - lipgloss.Width(bulletGlyph)).Render(content)
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, bulletStyle.Render(bulletGlyph), body))
			continue
		}

		lines = append(lines, lipgloss.NewStyle().Width(width).Render(content))
	}

	return strings.Join(lines, "\n")
}

func renderSpans(spans []Span) string {
	var sb strings.Builder
	for _, span := range spans {
		switch span.Kind {
		case Bold:
			sb.WriteString(BoldStyle.Render(span.Text))
		default:
			sb.WriteString(TextStyle.Render(span.Text))
		}
	}
	return sb.String()
}

// RenderMarkdown writes blocks back out as markdown with normalized bullets
func RenderMarkdown(blocks []Block) string {
	var sb strings.Builder
	for i, block := range blocks {
		if i > 0 {
			sb.WriteString("\n")
			// Keep paragraphs apart, keep list items together
			if block.Kind == Paragraph || blocks[i-1].Kind == Paragraph {
				sb.WriteString("\n")
			}
		}
		if block.Kind == BulletItem {
			sb.WriteString("- ")
		}
		for _, span := range block.Spans {
			if span.Kind == Bold {
				sb.WriteString("**" + span.Text + "**")
			} else {
				sb.WriteString(span.Text)
			}
		}
	}
	return sb.String()
}

// RenderPlain renders the visible text only, one block per line
func RenderPlain(blocks []Block) string {
	lines := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if block.Kind == BulletItem {
			lines = append(lines, bulletGlyph+block.Text())
			continue
		}
		lines = append(lines, block.Text())
	}
	return strings.Join(lines, "\n")
}

func (k BlockKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k SpanKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
