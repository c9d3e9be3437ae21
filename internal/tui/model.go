// Package tui renders the live watch dashboard and terminal swatches.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/tokenflow/internal/a11y"
	"github.com/alexisbeaulieu97/tokenflow/internal/preview"
)

// maxHistory bounds the reload log shown in the dashboard.
const maxHistory = 8

// ReloadMsg reports that the palette file was reloaded.
type ReloadMsg struct {
	Path   string
	Tokens int
	Err    error
	Time   time.Time
}

// BatchMsg carries the engine state after a batch was applied.
type BatchMsg struct {
	Result preview.BatchResult
	Stats  preview.Stats
}

// ReportMsg carries the latest accessibility report.
type ReportMsg struct {
	Report a11y.Report
}

// Model is the Bubbletea state for the watch dashboard.
type Model struct {
	name      string
	path      string
	budget    time.Duration
	reloads   []ReloadMsg
	lastBatch preview.BatchResult
	stats     preview.Stats
	report    a11y.Report
	hasReport bool
	quitting  bool
}

// NewModel constructs a dashboard for the named palette file.
func NewModel(name, path string, budget time.Duration) Model {
	return Model{name: name, path: path, budget: budget}
}

// Init starts the Bubbletea program.
func (m Model) Init() tea.Cmd {
	return nil
}

// Reloads returns the retained reload history, oldest first.
func (m Model) Reloads() []ReloadMsg {
	return append([]ReloadMsg(nil), m.reloads...)
}

// Quitting reports whether the user asked to leave.
func (m Model) Quitting() bool {
	return m.quitting
}
