// Package viz renders a live terminal view of a running surface-hopping
// trajectory: adiabatic populations and total energy as scrolling graphs.
package viz

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/qdynlab/hopsim/internal/config"
	"github.com/qdynlab/hopsim/internal/traj"
)

const (
	graphWidth      = 70
	graphHeight     = 8
	historyCapacity = 600
	drainPerTick    = 8
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// TickMsg drives the redraw loop.
type TickMsg time.Time

type chanObserver struct {
	ch  chan<- traj.Record
	ctx context.Context
}

func (o *chanObserver) OnStep(step int, rec traj.Record) {
	select {
	case o.ch <- rec:
	case <-o.ctx.Done():
	}
}

// Model is the bubbletea state for the live view.
type Model struct {
	title  string
	ch     <-chan traj.Record
	cancel context.CancelFunc

	latest  traj.Record
	popAdi0 []float64
	popAdi1 []float64
	etot    []float64
	steps   int
	done    bool
	paused  bool
}

func newModel(title string, ch <-chan traj.Record, cancel context.CancelFunc) Model {
	return Model{
		title:   title,
		ch:      ch,
		cancel:  cancel,
		popAdi0: make([]float64, 0, historyCapacity),
		popAdi1: make([]float64, 0, historyCapacity),
		etot:    make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func trim(s []float64) []float64 {
	if len(s) > historyCapacity {
		return s[len(s)-historyCapacity:]
	}
	return s
}

// Update handles key events and drains newly produced records.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		}
	case TickMsg:
		if !m.paused {
			for i := 0; i < drainPerTick; i++ {
				select {
				case rec, ok := <-m.ch:
					if !ok {
						m.done = true
						return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
					}
					m.latest = rec
					m.steps++
					m.popAdi0 = trim(append(m.popAdi0, rec.PopAdi0))
					m.popAdi1 = trim(append(m.popAdi1, rec.PopAdi1))
					m.etot = trim(append(m.etot, rec.Etot))
				default:
				}
			}
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func statLine(label string, format string, args ...any) string {
	return labelStyle.Render(label) + valueStyle.Render(fmt.Sprintf(format, args...))
}

// View renders the stats block and the scrolling graphs.
func (m Model) View() string {
	s := headerStyle.Render(m.title) + "\n"
	s += statLine("time", "%10.2f", m.latest.Time) + "\n"
	s += statLine("coord", "%10.5f", m.latest.Q) + "\n"
	s += statLine("momentum", "%10.5f", m.latest.P) + "\n"
	s += statLine("E total", "%10.5f", m.latest.Etot) + "\n"
	s += statLine("surface", "%10d", m.latest.State) + "\n"
	s += statLine("steps", "%10d", m.steps) + "\n"

	if len(m.popAdi0) > 1 {
		s += graphStyle.Render(asciigraph.Plot(m.popAdi0,
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Caption("adiabatic population 0"),
		)) + "\n"
		s += graphStyle.Render(asciigraph.Plot(m.etot,
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Caption("total energy"),
		)) + "\n"
	}

	help := "space pause, q quit"
	if m.done {
		help = "run finished, q quit"
	}
	s += helpStyle.Render(help) + "\n"
	return s
}

// RunLive propagates the configured run in the background and displays it
// until it finishes or the user quits.
func RunLive(cfg *config.Config) error {
	runner, err := traj.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := make(chan traj.Record)
	runner.AddObserver(&chanObserver{ch: ch, ctx: ctx})

	go func() {
		defer close(ch)
		// the UI paces the run through the unbuffered channel
		_, _ = runner.Run(ctx)
	}()

	title := fmt.Sprintf("hopsim live: model %d (%s)", cfg.Model, cfg.TSHParams().Rep)
	p := tea.NewProgram(newModel(title, ch, cancel))
	_, err = p.Run()
	return err
}
