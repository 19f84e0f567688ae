package tui

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabhi256/medi/internal/analysis"
	"github.com/mabhi256/medi/internal/upload"
)

type stubService struct {
	result *analysis.Result
	err    error
	calls  int
}

func (s *stubService) Analyze(ctx context.Context, file *upload.File) (*analysis.Result, error) {
	s.calls++
	return s.result, s.err
}

var sampleResult = &analysis.Result{
	Cardiologist:  "**Rhythm** regular\n- BP 120/80",
	Psychologist:  "Mild **anxiety**",
	Pulmonologist: "Clear lungs",
	Team:          "- Follow up in 3 months",
}

func newTestModel(t *testing.T, svc analysis.Service) (*Model, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "labs.txt")
	require.NoError(t, os.WriteFile(path, []byte("chest pain"), 0o644))

	ctrl := analysis.NewController(upload.NewGate(0), svc, slog.New(slog.DiscardHandler))
	m := initialModel(context.Background(), ctrl, Options{StartDir: dir})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, path
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd = m.Update(msg)
	}
	return cmd
}

// doneMsg runs the batch returned by submit and picks out the analysis outcome
func doneMsg(t *testing.T, cmd tea.Cmd) analysisDoneMsg {
	t.Helper()
	require.NotNil(t, cmd)

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	for _, c := range batch {
		if c == nil {
			continue
		}
		if done, ok := c().(analysisDoneMsg); ok {
			return done
		}
	}
	t.Fatal("no analysis outcome in batch")
	return analysisDoneMsg{}
}

func TestIdleRequiresFile(t *testing.T) {
	svc := &stubService{result: sampleResult}
	m, _ := newTestModel(t, svc)

	assert.Contains(t, m.View(), "No file selected")
	assert.False(t, m.keys.Submit.Enabled())

	press(m, "a")
	assert.Equal(t, analysis.PhaseIdle, m.state.Phase)
	assert.Zero(t, svc.calls)
}

func TestInvalidSelectionShowsNotice(t *testing.T) {
	m, path := newTestModel(t, &stubService{})
	bad := filepath.Join(filepath.Dir(path), "scan.png")
	require.NoError(t, os.WriteFile(bad, []byte("x"), 0o644))

	m.selectFile(path)
	m.selectFile(bad)

	assert.True(t, m.noticeIsError)
	assert.Contains(t, m.notice, "scan.png")
	require.NotNil(t, m.ctrl.File())
	assert.Equal(t, "labs.txt", m.ctrl.File().Name, "held file untouched")
}

func TestSuccessFlow(t *testing.T) {
	svc := &stubService{result: sampleResult}
	m, path := newTestModel(t, svc)

	m.selectFile(path)
	assert.True(t, m.keys.Submit.Enabled())
	assert.Contains(t, m.View(), "labs.txt")

	cmd := press(m, "a")
	assert.Equal(t, analysis.PhaseSubmitting, m.state.Phase)
	assert.False(t, m.keys.Submit.Enabled(), "submit disabled while in flight")
	view := m.View()
	for _, s := range analysis.AllSpecialists() {
		assert.Contains(t, view, s.Progress())
	}

	m.Update(doneMsg(t, cmd))
	require.Equal(t, analysis.PhaseSucceeded, m.state.Phase)
	assert.Equal(t, 1, svc.calls)

	view = m.View()
	assert.Contains(t, view, "Analysis Results")
	assert.Contains(t, view, "Rhythm")
	assert.Contains(t, view, "BP 120/80")
	assert.NotContains(t, view, "**")

	press(m, "tab")
	assert.Equal(t, analysis.Psychologist, m.activeTab)
	assert.Contains(t, m.View(), "anxiety")

	press(m, "4")
	assert.Equal(t, analysis.Team, m.activeTab)
	press(m, "tab")
	assert.Equal(t, analysis.Cardiologist, m.activeTab, "tabs wrap around")

	press(m, "n")
	assert.Equal(t, analysis.PhaseIdle, m.state.Phase)
	assert.Nil(t, m.ctrl.File())
	assert.Nil(t, m.doc)
}

func TestRateLimited(t *testing.T) {
	m, path := newTestModel(t, &stubService{err: analysis.ErrRateLimited})
	m.selectFile(path)

	m.Update(doneMsg(t, press(m, "a")))

	assert.Equal(t, analysis.PhaseRateLimited, m.state.Phase)
	assert.Contains(t, m.View(), "Daily limit reached")
	assert.False(t, m.keys.Submit.Enabled())
	assert.True(t, m.keys.Reset.Enabled())
}

func TestFailedShowsDetail(t *testing.T) {
	m, path := newTestModel(t, &stubService{err: &analysis.ServiceError{Status: 500, Detail: "model unavailable"}})
	m.selectFile(path)

	m.Update(doneMsg(t, press(m, "a")))

	assert.Equal(t, analysis.PhaseFailed, m.state.Phase)
	assert.Contains(t, m.View(), "model unavailable")
}

func TestLateResponseAfterResetIsDiscarded(t *testing.T) {
	m, path := newTestModel(t, &stubService{result: sampleResult})
	m.selectFile(path)

	done := doneMsg(t, press(m, "a"))
	press(m, "n")
	require.Equal(t, analysis.PhaseIdle, m.state.Phase)

	m.Update(done)
	assert.Equal(t, analysis.PhaseIdle, m.state.Phase)
	assert.Nil(t, m.doc)
}

func TestQuitCancelsContext(t *testing.T) {
	m, _ := newTestModel(t, &stubService{})

	cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Error(t, m.ctx.Err())
}

func TestApplyScrolling(t *testing.T) {
	m, _ := newTestModel(t, &stubService{})
	content := strings.TrimSuffix(strings.Repeat("line\n", 20), "\n")

	assert.Equal(t, content, m.applyScrolling(content, 25), "fits")

	m.scrollDown(100)
	out := m.applyScrolling(content, 5)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 5)
	assert.Contains(t, lines[4], "(Line 16-20 of 20)")
	assert.Equal(t, 15, m.scrollPositions[m.activeTab], "clamped to the last page")

	m.scrollUp(PageSize)
	assert.Equal(t, 5, m.scrollPositions[m.activeTab])
}
