package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/rickersim/internal/analysis"
	"github.com/san-kum/rickersim/internal/dynamo"
)

func press(e *Explorer, msg tea.KeyMsg) tea.Cmd {
	_, cmd := e.Update(msg)
	return cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestExplorerAdjust(t *testing.T) {
	e := NewExplorer(dynamo.ParamSet{R: 1.5, K: 100, N0: 20, Steps: 300})
	if e.Period() != 1 {
		t.Errorf("r=1.5 period = %d, want 1", e.Period())
	}
	if e.Exponent() >= 0 {
		t.Errorf("r=1.5 exponent = %v, want < 0", e.Exponent())
	}

	// 1.5 + 16 * 0.05 = 2.3
	for i := 0; i < 16; i++ {
		press(e, tea.KeyMsg{Type: tea.KeyRight})
	}
	if e.Params().R != 2.3 {
		t.Fatalf("r = %v, want 2.3", e.Params().R)
	}
	if e.Period() != 2 {
		t.Errorf("r=2.3 period = %d, want 2", e.Period())
	}

	press(e, runes("r"))
	if e.Params().R != 1.5 {
		t.Errorf("reset r = %v, want 1.5", e.Params().R)
	}
}

func TestExplorerClamp(t *testing.T) {
	e := NewExplorer(dynamo.ParamSet{R: 0.05, K: 100, N0: 20, Steps: 5})
	press(e, tea.KeyMsg{Type: tea.KeyLeft})
	press(e, tea.KeyMsg{Type: tea.KeyLeft})
	if e.Params().R != 0 {
		t.Errorf("r = %v, want clamped to 0", e.Params().R)
	}

	press(e, tea.KeyMsg{Type: tea.KeyDown})
	press(e, tea.KeyMsg{Type: tea.KeyDown})
	press(e, tea.KeyMsg{Type: tea.KeyDown})
	press(e, runes("-"))
	if e.Params().Steps != 2 {
		t.Errorf("steps = %d, want clamped to 2", e.Params().Steps)
	}
	if e.Period() != analysis.Aperiodic {
		t.Errorf("short trajectory period = %d, want aperiodic", e.Period())
	}
}

func TestExplorerView(t *testing.T) {
	e := NewExplorer(dynamo.ParamSet{R: 3.0, K: 100, N0: 50, Steps: 1000})
	out := e.View()
	for _, want := range []string{"λ =", "chaotic", "period = none", "n(t)"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}

	press(e, runes("v"))
	if !strings.Contains(e.View(), "n(t) vs n(t+1)") {
		t.Error("return map view not shown")
	}

	if cmd := press(e, runes("q")); cmd == nil {
		t.Error("q should quit")
	}
}
