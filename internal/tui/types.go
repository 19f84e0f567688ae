package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"

	"github.com/mabhi256/medi/internal/analysis"
	"github.com/mabhi256/medi/internal/report"
)

const PageSize = 10 // Number of lines to scroll per page

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	ctrl  *analysis.Controller
	state analysis.State

	// Derived from a successful result
	doc      *report.Document
	sections map[analysis.Specialist][]report.Block

	// UI State
	activeTab       analysis.Specialist
	scrollPositions map[analysis.Specialist]int
	width           int
	height          int
	startedAt       time.Time
	notice          string
	noticeIsError   bool

	picker  filepicker.Model
	spinner spinner.Model
	help    help.Model
	keys    KeyMap
}

type Options struct {
	// InitialPath is selected before the first frame when set
	InitialPath string
	// StartDir is where the file picker opens; defaults to the working directory
	StartDir string
}

// analysisDoneMsg carries the outcome of one service call back to Update
type analysisDoneMsg struct {
	event analysis.Event
}

type exportDoneMsg struct {
	path string
	err  error
}
