package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mabhi256/medi/internal/analysis"
	"github.com/mabhi256/medi/internal/html"
	"github.com/mabhi256/medi/internal/report"
	"github.com/mabhi256/medi/internal/upload"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle global keys first
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.cancel()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)

	case analysisDoneMsg:
		return m.handleAnalysisDone(msg)

	case exportDoneMsg:
		if msg.err != nil {
			m.setNotice(fmt.Sprintf("Export failed: %v", msg.err), true)
		} else {
			m.setNotice("📄 Saved "+msg.path, false)
		}
		return m, nil

	case spinner.TickMsg:
		if m.state.Phase != analysis.PhaseSubmitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	// Directory listings and other picker internals
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m *Model) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.help.Width = msg.Width

	// Leave room for header, held-file line and footer
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(tea.WindowSizeMsg{Width: msg.Width, Height: max(msg.Height-6, 3)})
	return m, cmd
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Reset):
		return m.reset()
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.Clear):
		if err := m.ctrl.Clear(); err != nil {
			m.setNotice(err.Error(), true)
		} else {
			m.clearNotice()
		}
		m.updateKeyStates()
		return m, nil
	case key.Matches(msg, m.keys.Export):
		return m, m.exportHTML()
	}

	switch m.state.Phase {
	case analysis.PhaseIdle:
		return m.handleIdleKeys(msg)
	case analysis.PhaseSucceeded:
		return m.handleResultKeys(msg)
	}
	return m, nil
}

func (m *Model) handleIdleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.selectFile(path)
	}
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	last := analysis.Team

	switch {
	case key.Matches(msg, m.keys.Next):
		m.activeTab = nextTab(m.activeTab, last)
	case key.Matches(msg, m.keys.Prev):
		m.activeTab = prevTab(m.activeTab, last)
	case key.Matches(msg, m.keys.Up):
		m.scrollUp(1)
	case key.Matches(msg, m.keys.Down):
		m.scrollDown(1)
	case key.Matches(msg, m.keys.PageUp):
		m.scrollUp(PageSize)
	case key.Matches(msg, m.keys.PageDn):
		m.scrollDown(PageSize)
	default:
		switch msg.String() {
		case "1", "2", "3", "4":
			m.activeTab = analysis.Specialist(msg.String()[0] - '1')
		}
	}
	return m, nil
}

func (m *Model) selectFile(path string) {
	file, err := m.ctrl.Select(path)
	if err != nil {
		var verr *upload.ValidationError
		switch {
		case errors.As(err, &verr):
			m.setNotice(verr.Error(), true)
		case errors.Is(err, analysis.ErrBusy):
			m.setNotice("Finish or reset the current analysis first", true)
		default:
			m.setNotice(fmt.Sprintf("Cannot use %s: %v", path, err), true)
		}
		m.updateKeyStates()
		return
	}

	m.setNotice(fmt.Sprintf("Selected %s (%s)", file.Name, file.HumanSize()), false)
	m.updateKeyStates()
}

func (m *Model) submit() (tea.Model, tea.Cmd) {
	req, err := m.ctrl.Begin()
	if err != nil {
		if errors.Is(err, analysis.ErrNothingToSubmit) {
			m.setNotice("Select a .txt or .pdf report first", true)
		}
		return m, nil
	}

	m.state = m.ctrl.State()
	m.startedAt = time.Now()
	m.clearNotice()
	m.updateKeyStates()

	return m, tea.Batch(m.spinner.Tick, m.runAnalysis(req))
}

// runAnalysis performs the request off the event loop. The controller's fence
// decides later whether the outcome still applies.
func (m *Model) runAnalysis(req analysis.Request) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return analysisDoneMsg{event: ctrl.Run(ctx, req)}
	}
}

func (m *Model) handleAnalysisDone(msg analysisDoneMsg) (tea.Model, tea.Cmd) {
	if !m.ctrl.Resolve(msg.event) {
		return m, nil
	}

	m.state = m.ctrl.State()
	if m.state.Phase == analysis.PhaseSucceeded && m.state.Result != nil {
		name := ""
		if m.state.File != nil {
			name = m.state.File.Name
		}
		doc := report.FromResult(name, m.state.Result)
		m.doc = &doc
		m.sections = make(map[analysis.Specialist][]report.Block, len(doc.Sections))
		for _, section := range doc.Sections {
			m.sections[section.Specialist] = section.Blocks
		}
		m.activeTab = analysis.Cardiologist
		clear(m.scrollPositions)
	}

	m.updateKeyStates()
	return m, nil
}

func (m *Model) reset() (tea.Model, tea.Cmd) {
	if m.state.Phase == analysis.PhaseIdle && m.ctrl.File() == nil {
		return m, nil
	}

	m.ctrl.Reset()
	m.state = m.ctrl.State()
	m.doc = nil
	m.sections = nil
	clear(m.scrollPositions)
	m.clearNotice()
	m.updateKeyStates()
	return m, m.picker.Init()
}

func (m *Model) exportHTML() tea.Cmd {
	if m.doc == nil {
		return nil
	}
	doc := *m.doc
	return func() tea.Msg {
		path, err := html.GenerateHTMLReport(doc, html.GetDefaultOutputPath())
		return exportDoneMsg{path: path, err: err}
	}
}

// updateKeyStates enables exactly the bindings that make sense in the
// current phase, which also keeps the help bar honest.
func (m *Model) updateKeyStates() {
	phase := m.state.Phase
	idle := phase == analysis.PhaseIdle
	results := phase == analysis.PhaseSucceeded

	m.keys.Submit.SetEnabled(idle && m.ctrl.File() != nil)
	m.keys.Clear.SetEnabled(idle && m.ctrl.File() != nil)
	m.keys.Reset.SetEnabled(!idle)
	m.keys.Export.SetEnabled(results)
	m.keys.Next.SetEnabled(results)
	m.keys.Prev.SetEnabled(results)
	m.keys.Up.SetEnabled(results)
	m.keys.Down.SetEnabled(results)
	m.keys.PageUp.SetEnabled(results)
	m.keys.PageDn.SetEnabled(results)
}

func (m *Model) setNotice(text string, isError bool) {
	m.notice = text
	m.noticeIsError = isError
}

func (m *Model) clearNotice() {
	m.notice = ""
	m.noticeIsError = false
}
