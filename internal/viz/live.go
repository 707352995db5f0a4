// Package viz renders a live terminal view of the evolving field using
// bubbletea. It sits entirely outside the numerical core: it owns an
// evolver and a pre-generated noise series and just steps them on a
// timer.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/fracsim/internal/diagnostics"
	"github.com/san-kum/fracsim/internal/fracdyn"
)

const (
	graphWidth    = 80
	graphHeight   = 16
	stepsPerFrame = 20
)

type TickMsg time.Time

type Model struct {
	evolver  *fracdyn.Evolver
	noise    fracdyn.NoiseSeries
	psi      fracdyn.Field
	initial  fracdyn.Field
	step     int
	t        float64
	fps      int
	paused   bool
	diverged bool
	err      error
}

func NewModel(ev *fracdyn.Evolver, noise fracdyn.NoiseSeries, psi0 fracdyn.Field, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	return Model{
		evolver: ev,
		noise:   noise,
		psi:     psi0.Clone(),
		initial: psi0.Clone(),
		fps:     fps,
	}
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "r":
			m.psi = m.initial.Clone()
			m.step = 0
			m.t = 0
			m.diverged = false
			m.err = nil
		}
		return m, nil

	case TickMsg:
		if !m.paused && !m.diverged && m.err == nil {
			m.advance()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) advance() {
	dt := m.evolver.Params().Dt
	for i := 0; i < stepsPerFrame; i++ {
		if m.step >= len(m.noise) {
			m.paused = true
			return
		}
		next, err := m.evolver.Step(m.psi, m.t, m.noise[m.step])
		if err != nil {
			m.err = err
			return
		}
		if !next.IsValid() || next.MaxAbs() > 1e6 {
			m.diverged = true
			return
		}
		m.psi = next
		m.step++
		m.t = float64(m.step) * dt
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("fracsim live — stochastic fractional field"))
	b.WriteString("\n")

	graph := asciigraph.Plot(m.psi,
		asciigraph.Height(graphHeight),
		asciigraph.Width(graphWidth),
		asciigraph.Caption(fmt.Sprintf("psi(x) at t=%.5f", m.t)),
	)
	b.WriteString(graphStyle.Render(graph))
	b.WriteString("\n")

	dx := m.evolver.Grid().Dx()
	rows := []struct {
		label string
		value string
	}{
		{"step", fmt.Sprintf("%d / %d", m.step, len(m.noise))},
		{"max amplitude", fmt.Sprintf("%.6f", m.psi.MaxAbs())},
		{"l2 norm", fmt.Sprintf("%.6f", m.psi.L2(dx))},
		{"energy", fmt.Sprintf("%.6f", diagnostics.Energy(m.psi, dx))},
		{"entropy", fmt.Sprintf("%.4f", diagnostics.ShannonEntropy(m.psi))},
	}
	for _, row := range rows {
		b.WriteString(labelStyle.Render(row.label))
		b.WriteString(valueStyle.Render(row.value))
		b.WriteString("\n")
	}

	if m.diverged {
		b.WriteString(alertStyle.Render("DIVERGED — field exceeded blow-up threshold"))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(alertStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}
	if m.paused {
		b.WriteString(alertStyle.Render("paused"))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("space: pause  r: reset  q: quit"))
	b.WriteString("\n")
	return b.String()
}
