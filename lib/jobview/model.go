// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jobview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/machinery/lib/job"
	"github.com/bureau-foundation/machinery/lib/render"
)

// DefaultInterval is how often the job is re-read.
const DefaultInterval = 500 * time.Millisecond

// Loader reads the current state of the job being viewed.
type Loader func(ctx context.Context) (*job.Job, error)

// loadedMsg carries the result of one Loader call.
type loadedMsg struct {
	job *job.Job
	err error
}

// pollMsg asks for the next load.
type pollMsg struct{}

// headerHeight and footerHeight are the rows outside the viewport.
const (
	headerHeight = 2
	footerHeight = 1
)

// Model is the bubbletea model for a single job.
type Model struct {
	load     Loader
	interval time.Duration
	theme    render.Theme
	keys     KeyMap

	viewport viewport.Model
	spinner  spinner.Model

	job *job.Job
	err error

	width  int
	height int
	ready  bool

	// follow keeps the viewport pinned to the newest output. Scrolling
	// up clears it; Bottom sets it again.
	follow bool

	// ExitOnFinish quits the program once the job is terminal.
	ExitOnFinish bool
}

// NewModel returns a model that polls load every interval. A
// non-positive interval selects DefaultInterval.
func NewModel(load Loader, interval time.Duration) Model {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return Model{
		load:     load,
		interval: interval,
		theme:    render.DefaultTheme,
		keys:     DefaultKeyMap,
		viewport: viewport.New(0, 0),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		follow:   true,
	}
}

// Job returns the most recently loaded job, or nil.
func (model Model) Job() *job.Job {
	return model.job
}

// Err returns the error that stopped polling, if any.
func (model Model) Err() error {
	return model.err
}

// Init starts the spinner and the first load.
func (model Model) Init() tea.Cmd {
	return tea.Batch(model.spinner.Tick, model.loadCmd())
}

func (model Model) loadCmd() tea.Cmd {
	load := model.load
	return func() tea.Msg {
		loaded, err := load(context.Background())
		return loadedMsg{job: loaded, err: err}
	}
}

func (model Model) pollCmd() tea.Cmd {
	return tea.Tick(model.interval, func(time.Time) tea.Msg {
		return pollMsg{}
	})
}

// Update handles a message.
func (model Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch message := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(message, model.keys.Quit):
			return model, tea.Quit
		case key.Matches(message, model.keys.Top):
			model.viewport.GotoTop()
			model.follow = false
			return model, nil
		case key.Matches(message, model.keys.Bottom):
			model.viewport.GotoBottom()
			model.follow = true
			return model, nil
		}
		var cmd tea.Cmd
		model.viewport, cmd = model.viewport.Update(msg)
		model.follow = model.viewport.AtBottom()
		return model, cmd

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.viewport.Width = message.Width
		model.viewport.Height = max(message.Height-headerHeight-footerHeight, 1)
		model.setContent()
		return model, nil

	case loadedMsg:
		if message.err != nil {
			model.err = message.err
			return model, tea.Quit
		}
		model.job = message.job
		model.setContent()
		if model.job.Terminal() {
			if model.ExitOnFinish {
				return model, tea.Quit
			}
			return model, nil
		}
		return model, model.pollCmd()

	case pollMsg:
		return model, model.loadCmd()

	case spinner.TickMsg:
		if model.job != nil && model.job.Terminal() {
			return model, nil
		}
		var cmd tea.Cmd
		model.spinner, cmd = model.spinner.Update(msg)
		return model, cmd
	}
	return model, nil
}

func (model *Model) setContent() {
	if model.job == nil {
		return
	}
	output := strings.TrimSuffix(model.job.Output, "\n")
	if model.width > 0 {
		output = lipgloss.NewStyle().Width(model.width).Render(output)
	}
	model.viewport.SetContent(output)
	if model.follow {
		model.viewport.GotoBottom()
	}
}

// View renders the header, the output and a one-line footer.
func (model Model) View() string {
	if model.err != nil {
		return fmt.Sprintf("error: %v\n", model.err)
	}
	if model.job == nil || !model.ready {
		return model.spinner.View() + " loading job…\n"
	}

	var out strings.Builder
	out.WriteString(model.header())
	out.WriteString("\n")
	out.WriteString(lipgloss.NewStyle().
		Foreground(model.theme.BorderColor).
		Render(strings.Repeat("─", max(model.width, 1))))
	out.WriteString("\n")
	out.WriteString(model.viewport.View())
	out.WriteString("\n")
	out.WriteString(model.footer())
	return out.String()
}

func (model Model) header() string {
	status := model.job.Status()
	statusStyle := lipgloss.NewStyle().Foreground(model.theme.StatusColor(status)).Bold(true)
	line := fmt.Sprintf("job %d  %s  %s",
		model.job.ID,
		lipgloss.NewStyle().Foreground(model.theme.HeaderForeground).Bold(true).Render(model.job.Params.Name),
		statusStyle.Render(string(status)),
	)
	switch {
	case model.job.Terminal():
		line += fmt.Sprintf("  exit %d", *model.job.ExitCode)
	case model.job.Started:
		line += "  " + model.spinner.View()
	}
	return line
}

func (model Model) footer() string {
	help := fmt.Sprintf("%s %s  %s %s  %s %s",
		model.keys.Quit.Help().Key, model.keys.Quit.Help().Desc,
		model.keys.Top.Help().Key, model.keys.Top.Help().Desc,
		model.keys.Bottom.Help().Key, model.keys.Bottom.Help().Desc,
	)
	position := fmt.Sprintf("%3.f%%", model.viewport.ScrollPercent()*100)
	if model.follow {
		position = "follow"
	}
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	return faint.Render(help + "  " + position)
}
