package components

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// BudgetGauge renders how much of the per-batch time budget a batch used.
type BudgetGauge struct {
	bar    progress.Model
	budget time.Duration
}

// NewBudgetGauge creates a gauge for the given budget.
func NewBudgetGauge(budget time.Duration) BudgetGauge {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 30
	return BudgetGauge{bar: bar, budget: budget}
}

// View renders the gauge for the provided batch duration. Overruns fill the
// bar but the label keeps the real duration.
func (g BudgetGauge) View(used time.Duration) string {
	ratio := 0.0
	if g.budget > 0 {
		ratio = math.Min(1.0, float64(used)/float64(g.budget))
	}
	label := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%s/%s", formatMillis(used), formatMillis(g.budget)))
	return lipgloss.JoinHorizontal(lipgloss.Left, label, " ", g.bar.ViewAs(ratio))
}

func formatMillis(d time.Duration) string {
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000)
}
