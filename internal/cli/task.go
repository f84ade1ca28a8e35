package cli

import (
	"context"
	"fmt"
	"os"

	"charm.land/bubbles/v2/progress"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

// stepMsg reports that a task moved on to its next step.
type stepMsg string

// taskDoneMsg carries the task's result.
type taskDoneMsg struct{ err error }

// taskModel is the bubbletea model shown while a blocking call runs: a
// spinner, plus a progress bar when the task reports a known number of steps.
type taskModel struct {
	label    string
	steps    int
	step     int
	current  string
	spinner  spinner.Model
	progress progress.Model
	theme    Theme
	run      tea.Cmd
	cancel   context.CancelFunc

	done      bool
	cancelled bool
	err       error
}

func newTaskModel(label string, steps int, cancel context.CancelFunc) taskModel {
	return taskModel{
		label:   label,
		steps:   steps,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		progress: progress.New(
			progress.WithDefaultBlend(),
			progress.WithWidth(30),
		),
		theme:  defaultTheme,
		cancel: cancel,
	}
}

func (m taskModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.progress.Init(), m.run)
}

func (m taskModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			m.cancelled = true
			m.cancel()
			return m, tea.Quit
		}

	case stepMsg:
		m.step++
		m.current = string(msg)
		return m, nil

	case taskDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m taskModel) View() tea.View {
	if m.done || m.cancelled {
		return tea.NewView("")
	}
	line := fmt.Sprintf("%s %s", m.theme.statusStyle().Render(m.spinner.View()), m.label)
	if m.steps > 0 {
		pct := float64(m.step) / float64(m.steps)
		line += "\n" + m.progress.ViewAs(pct)
		if m.current != "" {
			line += " " + m.theme.hintStyle().Render(m.current)
		}
	}
	return tea.NewView(line + "\n")
}

// interactive reports whether stdout is a terminal.
func interactive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// runTask runs fn while showing a spinner. steps > 0 adds a progress bar
// advanced by each call to report. Without a terminal, fn runs directly and
// steps are printed as plain lines.
func runTask(ctx context.Context, label string, steps int, fn func(ctx context.Context, report func(string)) error) error {
	if !interactive() {
		return fn(ctx, func(step string) {
			if steps > 0 {
				fmt.Println(step)
			}
		})
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := newTaskModel(label, steps, cancel)
	var p *tea.Program
	model.run = func() tea.Msg {
		return taskDoneMsg{err: fn(ctx, func(step string) { p.Send(stepMsg(step)) })}
	}
	p = tea.NewProgram(model)

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("terminal UI error: %w", err)
	}
	if m, ok := final.(taskModel); ok {
		if m.cancelled {
			return context.Canceled
		}
		return m.err
	}
	return nil
}
