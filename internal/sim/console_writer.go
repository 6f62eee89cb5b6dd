// ConsoleWriter prints human-friendly, colorized step rows
package sim

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"degradesim/internal/config"
	"degradesim/internal/model"
)

var (
	styleGreen  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleYellow = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleRed    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	styleDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleTitle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

// SignalStyle returns the colour style used for a sensor signal.
func SignalStyle(sig model.SensorSignal) lipgloss.Style {
	switch sig {
	case model.SignalRed:
		return styleRed
	case model.SignalYellow:
		return styleYellow
	default:
		return styleGreen
	}
}

// ConsoleWriter prints step rows using terminal colours.
type ConsoleWriter struct {
	params *config.Resolved
	out    io.Writer
	once   sync.Once
}

// NewConsoleWriter creates a ConsoleWriter writing to os.Stdout. params may be
// nil, in which case no overview header is printed.
func NewConsoleWriter(params *config.Resolved) *ConsoleWriter {
	return &ConsoleWriter{params: params, out: os.Stdout}
}

func (w *ConsoleWriter) printOverview() {
	if w.params == nil {
		return
	}
	fmt.Fprintln(w.out, styleTitle.Render("Simulation Configuration"))
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Steps:\t%d\n", w.params.Steps)
	fmt.Fprintf(tw, "Maintenance Labor Cost:\t%.2f\n", w.params.MaintenanceCost)
	fmt.Fprintf(tw, "Failure Cost:\t%.2f\n", w.params.FailureCost)
	fmt.Fprintf(tw, "Inspection Cost:\t%.2f\n", w.params.InspectionCost)
	tw.Flush()

	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, styleTitle.Render("Components"))
	tw = tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name\tThreshold\tProbability\tCost\n")
	for _, c := range w.params.Components {
		fmt.Fprintf(tw, "%s\t%d\t%.3f\t%.2f\n", c.Name, c.K, c.P, c.Cost)
	}
	tw.Flush()
	fmt.Fprintln(w.out)
}

// WriteStep prints one step row.
func (w *ConsoleWriter) WriteStep(row model.StepRow) error {
	w.once.Do(w.printOverview)
	states := make([]string, len(row.States))
	for i, s := range row.States {
		states[i] = fmt.Sprintf("%d", s)
	}
	line := fmt.Sprintf("%s %s states=[%s] cost=%.2f",
		styleDim.Render(fmt.Sprintf("[%05d]", row.Step)),
		SignalStyle(row.Signal).Render(fmt.Sprintf("%-6s", strings.ToUpper(row.Signal.String()))),
		strings.Join(states, " "),
		row.CumulativeCost,
	)
	if row.Maintenance {
		line += " " + styleRed.Render("MAINTENANCE")
	}
	_, err := fmt.Fprintln(w.out, line)
	return err
}

// WriteSteps prints multiple step rows.
func (w *ConsoleWriter) WriteSteps(rows []model.StepRow) error {
	for _, r := range rows {
		if err := w.WriteStep(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary prints the end-of-run metrics table.
func (w *ConsoleWriter) WriteSummary(s model.RunSummary) error {
	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, styleTitle.Render("Run "+s.RunID))
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Seed:\t%d\n", s.Seed)
	fmt.Fprintf(tw, "Failures:\t%d\n", s.FailureCount)
	fmt.Fprintf(tw, "Interventions:\t%d\n", s.InterventionCount)
	fmt.Fprintf(tw, "Uptime %%:\t%.2f\n", float64(s.Metrics.UptimePercentage))
	fmt.Fprintf(tw, "MTBF:\t%.2f\n", float64(s.Metrics.MTBF))
	fmt.Fprintf(tw, "Maintenance Efficiency:\t%.2f\n", float64(s.Metrics.MaintenanceEfficiency))
	fmt.Fprintf(tw, "False Alarm Rate %%:\t%.2f\n", float64(s.Metrics.FalseAlarmRate))
	fmt.Fprintf(tw, "Maintenance Cost:\t%.2f\n", s.Costs.MaintenanceCost)
	fmt.Fprintf(tw, "Failure Cost:\t%.2f\n", s.Costs.FailureCost)
	fmt.Fprintf(tw, "Inspection Cost:\t%.2f\n", s.Costs.InspectionCost)
	fmt.Fprintf(tw, "Total Cost:\t%.2f\n", s.Costs.TotalCost)
	return tw.Flush()
}
