// Interactive browser for a finished simulation run
package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"degradesim/internal/model"
	"degradesim/internal/sim"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	markerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
)

const helpText = "←/h previous step • →/l next step • home/end first/last • q quit"

// Model is a bubbletea model stepping through one run.
type Model struct {
	res   *sim.Results
	step  int
	width int
	table table.Model
}

// New builds a model positioned at the first step.
func New(res *sim.Results) Model {
	cols := []table.Column{
		{Title: "Component", Width: 14},
		{Title: "k", Width: 4},
		{Title: "p", Width: 6},
		{Title: "Level", Width: 6},
		{Title: "Health", Width: 12},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(len(res.Components)+1))
	m := Model{res: res, table: t, width: 80}
	m.refresh()
	return m
}

// Step returns the index of the displayed step.
func (m Model) Step() int { return m.step }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetWidth(msg.Width)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.seek(m.step - 1)
		case "right", "l":
			m.seek(m.step + 1)
		case "home", "g":
			m.seek(0)
		case "end", "G":
			m.seek(m.res.Steps() - 1)
		}
	}
	return m, nil
}

func (m *Model) seek(t int) {
	if n := m.res.Steps(); t >= n {
		t = n - 1
	}
	if t < 0 {
		t = 0
	}
	m.step = t
	m.refresh()
}

func (m *Model) refresh() {
	if m.res.Steps() == 0 {
		m.table.SetRows(nil)
		return
	}
	states := m.res.StateAt(m.step)
	rows := make([]table.Row, len(m.res.Components))
	for i, c := range m.res.Components {
		rows[i] = table.Row{
			c.Name,
			strconv.Itoa(c.K),
			strconv.FormatFloat(c.P, 'f', 2, 64),
			strconv.Itoa(states[i]),
			healthBar(states[i], c.K),
		}
	}
	m.table.SetRows(rows)
}

// healthBar draws filled cells for the degradation level, capped at 10.
// Levels outside [0, k] are clamped.
func healthBar(level, k int) string {
	if k < 1 {
		return ""
	}
	level = max(0, min(level, k))
	width := min(k, 10)
	filled := level * width / k
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func (m Model) View() string {
	var b strings.Builder
	n := m.res.Steps()
	b.WriteString(titleStyle.Render(fmt.Sprintf("Run %s (seed %d)", m.res.RunID, m.res.Seed)))
	b.WriteString("\n")
	if n == 0 {
		b.WriteString("no steps recorded\n")
		return b.String()
	}

	sig := m.res.SensorSignals[m.step]
	fmt.Fprintf(&b, "%s %d/%d  %s %s",
		labelStyle.Render("step"), m.step, n-1,
		labelStyle.Render("signal"), sim.SignalStyle(sig).Render(strings.ToUpper(sig.String())))
	if m.maintainedAt(m.step) {
		b.WriteString("  " + markerStyle.Render("MAINTENANCE"))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %.2f\n\n", labelStyle.Render("cumulative cost"), m.res.CostData.CumulativeCosts[m.step])

	b.WriteString(m.table.View())
	b.WriteString("\n\n")
	b.WriteString(wordwrap.String(m.summaryLine(), m.width))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(wordwrap.String(helpText, m.width)))
	b.WriteString("\n")
	return b.String()
}

func (m Model) maintainedAt(t int) bool {
	for _, e := range m.res.MaintenanceEvents {
		if e == t {
			return true
		}
		if e > t {
			break
		}
	}
	return false
}

func (m Model) summaryLine() string {
	pm := m.res.PerformanceMetrics
	return fmt.Sprintf("failures %d • interventions %d • downtime %d • uptime %s%% • MTBF %s • efficiency %s • total cost %.2f",
		m.res.FailureCount, m.res.InterventionCount, m.res.DowntimeSteps,
		formatFloat(pm.UptimePercentage), formatFloat(pm.MTBF), formatFloat(pm.MaintenanceEfficiency),
		m.res.Costs.TotalCost)
}

func formatFloat(f model.Float) string {
	return strconv.FormatFloat(float64(f), 'f', 2, 64)
}

// Run opens the interactive viewer and blocks until the user quits.
func Run(res *sim.Results) error {
	_, err := tea.NewProgram(New(res), tea.WithAltScreen()).Run()
	return err
}
