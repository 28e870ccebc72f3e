package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/bpmnlayout/pkg/layout/report"
	"github.com/matzehuels/bpmnlayout/pkg/layout/strategy"
)

// Terminal colors (ANSI 256).
var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorFail   = lipgloss.Color("167")
	colorLink   = lipgloss.Color("75")
	colorText   = lipgloss.Color("255")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
)

var (
	// StyleHighlight marks element IDs and other values worth noticing.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	// StyleDim is used for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorFaint)

	styleValue       = lipgloss.NewStyle().Foreground(colorText)
	styleWarning     = lipgloss.NewStyle().Foreground(colorWarn)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleCached      = lipgloss.NewStyle().Foreground(colorOK)
	styleComputed    = lipgloss.NewStyle().Foreground(colorMuted)
	styleCommand     = lipgloss.NewStyle().Foreground(colorLink)
	styleHeader      = lipgloss.NewStyle().Foreground(colorMuted).Bold(true)
	styleKey         = lipgloss.NewStyle().Foreground(colorMuted).Width(14)
)

// A marker is the colored glyph that starts a status line.
type marker struct {
	glyph string
	color lipgloss.Color
}

var (
	markSuccess = marker{"✓", colorOK}
	markError   = marker{"✗", colorFail}
	markWarning = marker{"!", colorWarn}
	markInfo    = marker{"›", colorMuted}
)

func (m marker) line(format string, args ...any) string {
	return lipgloss.NewStyle().Foreground(m.color).Render(m.glyph) + " " + fmt.Sprintf(format, args...)
}

func printSuccess(format string, args ...any) { fmt.Println(markSuccess.line(format, args...)) }
func printError(format string, args ...any)   { fmt.Println(markError.line(format, args...)) }
func printInfo(format string, args ...any)    { fmt.Println(markInfo.line(format, args...)) }

func printWarning(format string, args ...any) {
	fmt.Println(markWarning.line("%s", styleWarning.Render(fmt.Sprintf(format, args...))))
}

// printDetail prints an indented, dimmed line under a status line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile announces a file that was written.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + styleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + styleValue.Render(value))
}

func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() { fmt.Println() }

// printStats prints the size of a laid-out diagram and where the result came
// from on a single line.
func printStats(elements, flows int, st strategy.Strategy, cached bool) {
	parts := []string{
		fmt.Sprintf("%d elements", elements),
		fmt.Sprintf("%d flows", flows),
		string(st),
	}

	status, statusStyle := "fresh", styleComputed
	if cached {
		status, statusStyle = "cached", styleCached
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	fmt.Println(line + StyleDim.Render(" · ") + statusStyle.Render(status))
}

// diagnosticsTable renders the metrics of d as a two-column table.
func diagnosticsTable(d *report.Diagnostics) string {
	rows := [][]string{
		{"Crossing flows", strconv.Itoa(d.CrossingFlows)},
		{"Orthogonal", fmt.Sprintf("%.1f%%", d.QualityMetrics.OrthogonalFlowPercent)},
		{"Avg bends", fmt.Sprintf("%.2f", d.QualityMetrics.AvgBendCount)},
	}
	if m := d.LaneCrossingMetrics; m != nil {
		rows = append(rows,
			[]string{"Lane flows", fmt.Sprintf("%d (%d crossing)", m.TotalLaneFlows, m.CrossingLaneFlows)},
			[]string{"Lane coherence", fmt.Sprintf("%.1f", m.LaneCoherenceScore)},
		)
	}
	if n := d.SubprocessesExpanded; n > 0 {
		rows = append(rows, []string{"Expanded", strconv.Itoa(n)})
	}
	if d.ShapesAdded+d.ConnectionsAdded+d.DuplicatesRemoved > 0 {
		rows = append(rows, []string{"DI repaired",
			fmt.Sprintf("+%d shapes, +%d edges, -%d duplicates", d.ShapesAdded, d.ConnectionsAdded, d.DuplicatesRemoved)})
	}
	if len(d.PinnedSkipped) > 0 {
		rows = append(rows, []string{"Pinned", strings.Join(d.PinnedSkipped, ", ")})
	}
	if len(d.RouteFallbacks) > 0 {
		rows = append(rows, []string{"Fallbacks", strings.Join(d.RouteFallbacks, ", ")})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		Headers("Metric", "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader.Padding(0, 1)
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)
			}
			return lipgloss.NewStyle().Foreground(colorText).Padding(0, 1)
		})
	return t.Render()
}

// printDiagnostics writes the diagnostics table and the crossing pairs to w.
func printDiagnostics(w io.Writer, d *report.Diagnostics) {
	if d == nil {
		return
	}
	fmt.Fprintln(w, diagnosticsTable(d))
	for _, p := range d.CrossingFlowPairs {
		fmt.Fprintln(w, "  "+StyleDim.Render(p[0]+" × "+p[1]))
	}
}
