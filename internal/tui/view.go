package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/tokenflow/internal/tui/components"
)

// View renders the current state of the model.
func (m Model) View() string {
	var sections []string

	sections = append(sections, titleStyle.Render(fmt.Sprintf("tokenflow • %s", m.title())))
	if m.path != "" {
		sections = append(sections, mutedStyle.Render("watching "+m.path))
	}

	gauge := components.NewBudgetGauge(m.budget).View(m.lastBatch.Duration)
	sections = append(sections, sectionStyle.Render("Last batch"), gauge)
	sections = append(sections, fmt.Sprintf("%d changes • %s", m.lastBatch.AppliedCount, strings.Join(m.lastBatch.Domains, ", ")))

	sections = append(sections, sectionStyle.Render("Performance"), m.renderStats())

	if m.hasReport {
		sections = append(sections, sectionStyle.Render("Accessibility"), m.renderReport())
	}

	if len(m.reloads) > 0 {
		sections = append(sections, sectionStyle.Render("Reloads"), renderReloads(m.reloads))
	}

	sections = append(sections, summaryStyle.Render(mutedStyle.Render("q to quit")))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) title() string {
	if strings.TrimSpace(m.name) != "" {
		return m.name
	}
	return "palette"
}

func (m Model) renderStats() string {
	line := fmt.Sprintf("%d batches • mean %s • max %s", m.stats.Batches, m.stats.Mean.Truncate(time.Microsecond), m.stats.Max.Truncate(time.Microsecond))
	if m.stats.BudgetOverruns > 0 {
		return line + " • " + warningStyle.Render(fmt.Sprintf("%d over budget", m.stats.BudgetOverruns))
	}
	return line
}

func (m Model) renderReport() string {
	if m.report.AllValid {
		return successStyle.Render(fmt.Sprintf("✓ %d pairs pass", len(m.report.Pairs)))
	}
	lines := []string{failureStyle.Render(fmt.Sprintf("✗ %d of %d pairs fail", len(m.report.Violations), len(m.report.Pairs)))}
	for _, v := range m.report.Violations {
		lines = append(lines, "  "+v.Message())
	}
	return strings.Join(lines, "\n")
}

func renderReloads(reloads []ReloadMsg) string {
	lines := make([]string, 0, len(reloads))
	for i := len(reloads) - 1; i >= 0; i-- {
		r := reloads[i]
		stamp := r.Time.Format("15:04:05")
		if r.Err != nil {
			lines = append(lines, fmt.Sprintf(" %s %s %s", failureStyle.Render("✗"), stamp, r.Err))
			continue
		}
		lines = append(lines, fmt.Sprintf(" %s %s %d tokens", successStyle.Render("✓"), stamp, r.Tokens))
	}
	return strings.Join(lines, "\n")
}
