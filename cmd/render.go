package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"

	"github.com/mabhi256/medi/internal/report"
	"github.com/mabhi256/medi/internal/tui"
)

const defaultCLIWidth = 100

func terminalWidth() int {
	width, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || width <= 0 {
		return defaultCLIWidth
	}
	return min(width, defaultCLIWidth)
}

// renderCLI lays the four sections out one after another for a plain terminal
func renderCLI(doc report.Document, width int) string {
	var sb strings.Builder

	title := "Analysis Results"
	if doc.FileName != "" {
		title += ": " + doc.FileName
	}
	sb.WriteString(tui.HeaderStyle.Render(title) + "\n")
	sb.WriteString(tui.MutedStyle.Render(strings.Repeat("─", width)) + "\n")

	for _, section := range doc.Sections {
		accent := section.Specialist.Accent()
		heading := lipgloss.NewStyle().Foreground(accent).Bold(true).
			Render(fmt.Sprintf("%s %s", section.Specialist.Icon(), section.Title))
		sb.WriteString("\n" + heading + "\n\n")

		if len(section.Blocks) == 0 {
			sb.WriteString(tui.MutedStyle.Render("No report provided.") + "\n")
			continue
		}
		sb.WriteString(report.RenderTerminal(section.Blocks, width, accent) + "\n")
	}

	sb.WriteString("\n" + tui.DisclaimerStyle.Width(width).Render("⚠️ "+report.Disclaimer) + "\n")
	return sb.String()
}

func newConsoleLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
