package tui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rickersim/internal/analysis"
	"github.com/san-kum/rickersim/internal/dynamo"
	"github.com/san-kum/rickersim/internal/sim"
)

var frame = lipgloss.NewStyle().
	Border(lipgloss.NormalBorder()).
	Padding(0, 1)

type field struct {
	name     string
	step     float64
	min, max float64
}

var fields = []field{
	{name: "r", step: 0.05, min: 0, max: 6},
	{name: "k", step: 10, min: 1, max: 10000},
	{name: "n0", step: 1, min: 0, max: 10000},
	{name: "steps", step: 10, min: 2, max: 5000},
}

type view int

const (
	viewSeries view = iota
	viewReturnMap
)

// Explorer recomputes a trajectory, its Lyapunov exponent and its period
// whenever a parameter changes.
type Explorer struct {
	params  dynamo.ParamSet
	initial dynamo.ParamSet
	cursor  int
	view    view

	values   []float64
	exponent float64
	period   int

	width  int
	height int
}

func NewExplorer(p dynamo.ParamSet) *Explorer {
	e := &Explorer{params: p, initial: p, width: 80, height: 24}
	e.clamp()
	e.recompute()
	return e
}

func (e *Explorer) Params() dynamo.ParamSet { return e.params }
func (e *Explorer) Exponent() float64       { return e.exponent }
func (e *Explorer) Period() int             { return e.period }

func (e *Explorer) Init() tea.Cmd { return nil }

func (e *Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.width = msg.Width
		e.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return e, tea.Quit
		case "up", "k":
			if e.cursor > 0 {
				e.cursor--
			}
		case "down", "j":
			if e.cursor < len(fields)-1 {
				e.cursor++
			}
		case "right", "l":
			e.adjust(1)
		case "left", "h":
			e.adjust(-1)
		case "+", "=":
			e.adjust(10)
		case "-", "_":
			e.adjust(-10)
		case "v":
			e.view = (e.view + 1) % 2
		case "r":
			e.params = e.initial
			e.clamp()
			e.recompute()
		}
	}
	return e, nil
}

func (e *Explorer) adjust(mult float64) {
	f := fields[e.cursor]
	delta := f.step * mult
	switch f.name {
	case "r":
		e.params.R = math.Round((e.params.R+delta)*1000) / 1000
	case "k":
		e.params.K += delta
	case "n0":
		e.params.N0 += delta
	case "steps":
		e.params.Steps += int(delta)
	}
	e.clamp()
	e.recompute()
}

func (e *Explorer) clamp() {
	limit := func(v float64, f field) float64 { return math.Max(f.min, math.Min(f.max, v)) }
	e.params.R = limit(e.params.R, fields[0])
	e.params.K = limit(e.params.K, fields[1])
	e.params.N0 = limit(e.params.N0, fields[2])
	e.params.Steps = int(limit(float64(e.params.Steps), fields[3]))
}

func (e *Explorer) recompute() {
	tr, err := sim.Series(e.params)
	if err != nil {
		e.values = nil
		return
	}
	e.values = tr.Values
	e.exponent = analysis.LyapunovExponent(e.params.N0/e.params.K, e.params.R, e.params.Steps)

	tail := tr.Tail(64)
	if len(tail) < 64 {
		e.period = analysis.Aperiodic
		return
	}
	e.period = analysis.DetectPeriod(tail, 16, 1e-6*e.params.K)
}

func (e *Explorer) View() string {
	var sb strings.Builder

	for i, f := range fields {
		marker := "  "
		if i == e.cursor {
			marker = "> "
		}
		sb.WriteString(fmt.Sprintf("%s%-6s %s\n", marker, f.name, e.fieldValue(f.name)))
	}
	sb.WriteString("\n")

	regime := "stable"
	if e.exponent > 0 {
		regime = "chaotic"
	}
	period := "none"
	if e.period != analysis.Aperiodic {
		period = fmt.Sprintf("%d", e.period)
	}
	sb.WriteString(fmt.Sprintf("λ = %.4f (%s)   period = %s\n\n", e.exponent, regime, period))

	sb.WriteString(e.plot())
	sb.WriteString("\n\n↑/↓ select  ←/→ adjust  +/- coarse  v view  r reset  q quit")

	return frame.Render(sb.String())
}

func (e *Explorer) fieldValue(name string) string {
	switch name {
	case "r":
		return fmt.Sprintf("%.3f", e.params.R)
	case "k":
		return fmt.Sprintf("%.0f", e.params.K)
	case "n0":
		return fmt.Sprintf("%.0f", e.params.N0)
	default:
		return fmt.Sprintf("%d", e.params.Steps)
	}
}

func (e *Explorer) plot() string {
	if len(e.values) < 2 {
		return "(no data)"
	}
	for _, v := range e.values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "(trajectory is not finite)"
		}
	}

	width := e.width - 16
	if width < 20 {
		width = 20
	}
	height := e.height - 16
	if height < 5 {
		height = 5
	}

	if e.view == viewReturnMap {
		return analysis.ReturnMapToASCII(analysis.ReturnMap(e.values), width, height) + "n(t) vs n(t+1)"
	}

	data := e.values
	if len(data) > width {
		data = data[len(data)-width:]
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("n(t), last %d of %d steps", len(data), len(e.values))),
	)
}

// Run starts the explorer in the alternate screen.
func Run(p dynamo.ParamSet) error {
	_, err := tea.NewProgram(NewExplorer(p), tea.WithAltScreen()).Run()
	return err
}
