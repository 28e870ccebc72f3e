package cli

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/bpmnlayout/pkg/layout/strategy"
)

var (
	pickerTitle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	pickerHint  = lipgloss.NewStyle().Foreground(colorFaint)
)

var strategyBlurbs = map[strategy.Strategy]string{
	strategy.Deterministic: "direct placement of a chain or single split/merge",
	strategy.Full:          "layered algorithm over the whole diagram",
	strategy.Lanes:         "layered algorithm keeping lane members grouped",
	strategy.Collaboration: "per-pool layout with message flows between pools",
	strategy.Subset:        "only the selected elements",
}

// strategyPicker is a bubbletea model listing the strategies that apply to
// a request, with the recommended one under the cursor. Subset is offered
// only for partial layouts, and only Subset is.
type strategyPicker struct {
	options []strategy.Strategy
	rec     strategy.Recommendation
	cursor  int
	chosen  strategy.Strategy
}

func newStrategyPicker(rec strategy.Recommendation, partial bool) strategyPicker {
	p := strategyPicker{rec: rec}
	for _, st := range strategy.All {
		if (st == strategy.Subset) == partial {
			p.options = append(p.options, st)
		}
	}
	for i, st := range p.options {
		if st == rec.Strategy {
			p.cursor = i
		}
	}
	return p
}

func (p strategyPicker) Init() tea.Cmd { return nil }

func (p strategyPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	last := len(p.options) - 1
	switch key.String() {
	case "q", "esc", "ctrl+c":
		return p, tea.Quit
	case "enter":
		p.chosen = p.options[p.cursor]
		return p, tea.Quit
	case "up", "k":
		p.cursor = max(p.cursor-1, 0)
	case "down", "j":
		p.cursor = min(p.cursor+1, last)
	case "home", "g":
		p.cursor = 0
	case "end", "G":
		p.cursor = last
	}
	return p, nil
}

func (p strategyPicker) View() string {
	rows := make([][]string, len(p.options))
	for i, st := range p.options {
		pointer, conf := "  ", ""
		if i == p.cursor {
			pointer = "▸ "
		}
		if st == p.rec.Strategy {
			conf = string(p.rec.Confidence)
		}
		rows[i] = []string{pointer, string(st), conf, strategyBlurbs[st]}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		Headers("", "Strategy", "Recommended", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle()
			switch {
			case row == -1:
				return styleHeader
			case row >= len(p.options):
				return s
			case row == p.cursor:
				return s.Foreground(colorAccent).Bold(true)
			case p.options[row] == p.rec.Strategy:
				return s.Foreground(colorOK)
			case col == 3:
				return s.Foreground(colorFaint)
			}
			return s.Foreground(colorText)
		})

	var b strings.Builder
	b.WriteString(pickerTitle.Render("Select Layout Strategy") + "\n")
	b.WriteString(pickerHint.Render("↑/↓ navigate  ⏎ select  q quit") + "\n\n")
	b.WriteString(t.Render() + "\n\n")
	if p.rec.Reason != "" {
		b.WriteString(pickerHint.Render("  "+p.rec.Reason) + "\n")
	}
	b.WriteString(pickerHint.Render(fmt.Sprintf("  [%d/%d]", p.cursor+1, len(p.options))))
	return b.String()
}

// pickStrategy runs the picker on the terminal. It returns the empty
// strategy when the user quits without choosing.
func pickStrategy(rec strategy.Recommendation, partial bool, in io.Reader, out io.Writer) (strategy.Strategy, error) {
	final, err := tea.NewProgram(newStrategyPicker(rec, partial), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return "", fmt.Errorf("strategy picker: %w", err)
	}
	return final.(strategyPicker).chosen, nil
}
