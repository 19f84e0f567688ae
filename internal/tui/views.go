package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mabhi256/medi/internal/analysis"
	"github.com/mabhi256/medi/internal/report"
	"github.com/mabhi256/medi/utils"
)

func (m *Model) renderIdle() string {
	var held string
	if file := m.ctrl.File(); file != nil {
		held = fmt.Sprintf("📄 %s %s", TextStyle.Render(file.Name), MutedStyle.Render("("+file.HumanSize()+")"))
	} else {
		held = MutedStyle.Render("No file selected")
	}

	hint := MutedStyle.Render(fmt.Sprintf("Upload a medical report (.txt or .pdf, up to %s) • %s",
		m.ctrl.MaxUpload(), m.picker.CurrentDirectory))

	return lipgloss.JoinVertical(lipgloss.Left, held, hint, "", m.picker.View())
}

func (m *Model) renderSubmitting() string {
	name := ""
	if m.state.File != nil {
		name = m.state.File.Name
	}

	lines := []string{
		fmt.Sprintf("%s Analyzing %s %s",
			m.spinner.View(),
			TextStyle.Render(name),
			MutedStyle.Render(utils.FormatDuration(time.Since(m.startedAt).Truncate(100*time.Millisecond)))),
		"",
	}
	for _, s := range analysis.AllSpecialists() {
		step := lipgloss.NewStyle().Foreground(s.Accent()).Render(s.Icon() + " " + s.Progress())
		lines = append(lines, "  "+step)
	}
	lines = append(lines, "", MutedStyle.Render("This may take a minute. Press n to start over."))

	return BoxStyle.Width(m.boxWidth()).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderResults(height int) string {
	title := lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render("Analysis Results"),
		MutedStyle.Render(" Comprehensive review by 3 AI specialists + team summary"),
	)
	tabBar := m.renderTabBar()
	disclaimer := DisclaimerStyle.Width(m.width).Render("⚠️ " + report.Disclaimer)

	bodyHeight := height - lipgloss.Height(title) - lipgloss.Height(tabBar) - lipgloss.Height(disclaimer) - 2
	bodyHeight = max(bodyHeight, 1)

	body := m.applyScrolling(m.renderSection(m.activeTab), bodyHeight)
	body = lipgloss.NewStyle().Height(bodyHeight).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, title, tabBar, "", body, "", disclaimer)
}

func (m *Model) renderSection(s analysis.Specialist) string {
	heading := lipgloss.NewStyle().Foreground(s.Accent()).Bold(true).Render(s.Icon() + " " + s.String())

	blocks := m.sections[s]
	if len(blocks) == 0 {
		return heading + "\n\n" + MutedStyle.Render("No report provided.")
	}
	return heading + "\n\n" + report.RenderTerminal(blocks, max(m.width-2, 10), s.Accent())
}

func (m *Model) renderRateLimited() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		WarningStyle.Render("⏳ Daily limit reached"),
		"",
		"You've used all 5 free analyses for today.",
		"Please come back tomorrow to analyze more reports.",
	)
	return RateLimitBoxStyle.Width(m.boxWidth()).Render(body)
}

func (m *Model) renderFailed() string {
	message := m.state.Message
	if message == "" {
		message = analysis.FallbackMessage
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		CriticalStyle.Render("Analysis failed"),
		"",
		message,
		"",
		MutedStyle.Render("Press n to try again."),
	)
	return ErrorBoxStyle.Width(m.boxWidth()).Render(body)
}

func (m *Model) boxWidth() int {
	return max(min(m.width-2, 72), 20)
}
