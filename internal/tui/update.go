package tui

import tea "github.com/charmbracelet/bubbletea"

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ReloadMsg:
		m.reloads = append(m.reloads, msg)
		if len(m.reloads) > maxHistory {
			m.reloads = m.reloads[len(m.reloads)-maxHistory:]
		}
		return m, nil
	case BatchMsg:
		m.lastBatch = msg.Result
		m.stats = msg.Stats
		return m, nil
	case ReportMsg:
		m.report = msg.Report
		m.hasReport = true
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}
