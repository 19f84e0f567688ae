package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mabhi256/medi/internal/analysis"
)

func initialModel(ctx context.Context, ctrl *analysis.Controller, opts Options) *Model {
	ctx, cancel := context.WithCancel(ctx)

	picker := filepicker.New()
	picker.AutoHeight = true
	picker.CurrentDirectory = opts.StartDir
	if picker.CurrentDirectory == "" {
		if wd, err := os.Getwd(); err == nil {
			picker.CurrentDirectory = wd
		}
	}

	m := &Model{
		ctx:             ctx,
		cancel:          cancel,
		ctrl:            ctrl,
		state:           ctrl.State(),
		activeTab:       analysis.Cardiologist,
		scrollPositions: make(map[analysis.Specialist]int),
		picker:          picker,
		spinner:         spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(InfoStyle)),
		help:            help.New(),
		keys:            DefaultKeyMap(),
	}

	if opts.InitialPath != "" {
		m.selectFile(opts.InitialPath)
	}
	m.updateKeyStates()
	return m
}

// StartTUI runs the interactive client until the user quits. Cancelling ctx
// or quitting aborts a request still in flight.
func StartTUI(ctx context.Context, ctrl *analysis.Controller, opts Options) error {
	model := initialModel(ctx, ctrl, opts)
	defer model.cancel()

	program := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
		tea.WithContext(ctx),
	)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func (m *Model) Init() tea.Cmd {
	return m.picker.Init()
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := m.renderHeader()
	footer := m.renderFooter()

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	contentHeight = max(contentHeight, 1)

	var content string
	switch m.state.Phase {
	case analysis.PhaseSubmitting:
		content = m.renderSubmitting()
	case analysis.PhaseSucceeded:
		content = m.renderResults(contentHeight)
	case analysis.PhaseRateLimited:
		content = m.renderRateLimited()
	case analysis.PhaseFailed:
		content = m.renderFailed()
	default:
		content = m.renderIdle()
	}

	content = lipgloss.NewStyle().Height(contentHeight).MaxHeight(contentHeight).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (m *Model) renderHeader() string {
	title := "🩺 Medi Analyser"
	if file := m.ctrl.File(); file != nil {
		title += " - " + file.Name
	} else if m.state.File != nil {
		title += " - " + m.state.File.Name
	}

	headerLine := TruncateString(title, max(m.width-24, 10)) + " • " + m.getStatus()
	separatorLine := strings.Repeat("─", m.width)

	return lipgloss.JoinVertical(lipgloss.Left,
		HeaderStyle.Render(headerLine),
		MutedStyle.Render(separatorLine),
	)
}

func (m *Model) getStatus() string {
	switch m.state.Phase {
	case analysis.PhaseSubmitting:
		return InfoStyle.Render("Analyzing")
	case analysis.PhaseSucceeded:
		return GoodStyle.Render("✅ Complete")
	case analysis.PhaseRateLimited:
		return WarningStyle.Render("⏳ Limit reached")
	case analysis.PhaseFailed:
		return CriticalStyle.Render("🔴 Failed")
	default:
		if m.ctrl.File() != nil {
			return GoodStyle.Render("Ready")
		}
		return MutedStyle.Render("Select a report")
	}
}

func (m *Model) renderFooter() string {
	var lines []string
	if m.notice != "" {
		style := GoodStyle
		if m.noticeIsError {
			style = CriticalLightStyle
		}
		lines = append(lines, style.Render(TruncateString(m.notice, max(m.width, 10))))
	}
	lines = append(lines, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderTabBar() string {
	var tabs []string
	for _, s := range analysis.AllSpecialists() {
		label := fmt.Sprintf("%s %s", s.Icon(), s.Short())
		if m.width >= 80 {
			label = fmt.Sprintf("%s %s", s.Icon(), s.String())
		}
		tabs = append(tabs, TabStyle(s == m.activeTab, s.Accent()).Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}
