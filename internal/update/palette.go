package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/pmboard/internal/commands"
	"github.com/sandeepkv93/pmboard/internal/gantt"
	"github.com/sandeepkv93/pmboard/internal/model"
	"github.com/sandeepkv93/pmboard/internal/views"
)

func (m Model) openPalette() Model {
	m.Palette.Active = true
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Focus()
	m.setStatus("command palette active", false)
	return m
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.setStatus("command palette closed", false)
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
		return m, cmd
	}
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	m.Status = StatusBar{}

	var next tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Project: func(a commands.ProjectArgs) (commands.Result, error) {
			m, next = m.loadProject(a.ID)
			return commands.Result{Message: fmt.Sprintf("loading project %s", a.ID)}, nil
		},
		Toggle: func(a commands.TaskArgs) (commands.Result, error) {
			if err := m.requireTask(a.TaskID); err != nil {
				return commands.Result{}, err
			}
			m, next = m.toggleTask(a.TaskID)
			return commands.Result{Message: fmt.Sprintf("toggling %s", a.TaskID)}, nil
		},
		Start: func(a commands.TaskArgs) (commands.Result, error) {
			if err := m.requireTask(a.TaskID); err != nil {
				return commands.Result{}, err
			}
			idx, _ := model.FindTask(m.Current.Tasks, a.TaskID)
			m, next = m.startTimer(a.TaskID, m.Current.Tasks[idx].Name)
			return commands.Result{Message: m.Status.Text}, nil
		},
		Stop: func() (commands.Result, error) {
			if m.Timer == nil {
				return commands.Result{Message: "no active timer"}, nil
			}
			m, next = m.stopTimer()
			return commands.Result{Message: m.Status.Text}, nil
		},
		Theme: func(a commands.ThemeArgs) (commands.Result, error) {
			if _, ok := views.LookupTheme(a.Name); !ok {
				return commands.Result{}, &commands.CommandError{
					Code:    commands.ErrCodeInvalidArgument,
					Message: fmt.Sprintf("unknown theme %q (want one of %s)", a.Name, strings.Join(views.ThemeNames(), ", ")),
				}
			}
			m, next = m.changeTheme(a.Name)
			return commands.Result{Message: m.Status.Text}, nil
		},
		Refresh: func() (commands.Result, error) {
			m, next = m.loadProjects()
			return commands.Result{Message: "loading projects"}, nil
		},
		All: func() (commands.Result, error) {
			m.loadSeq++
			m.showAllProjects()
			return commands.Result{Message: "all projects"}, nil
		},
		View: func(a commands.ViewArgs) (commands.Result, error) {
			mode, ok := parseViewMode(a.Mode)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown view mode %q", a.Mode)}
			}
			m.chartMode = mode
			if m.chart != nil {
				if err := m.chart.SetViewMode(mode); err != nil {
					return commands.Result{}, err
				}
				m.refreshChartViewport()
			}
			return commands.Result{Message: fmt.Sprintf("view mode: %s", mode)}, nil
		},
	})
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	if !m.Status.IsError {
		m.setStatus(res.Message, false)
	}
	return m, next
}

func (m Model) requireTask(taskID string) error {
	if m.Current == nil {
		return &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no project loaded"}
	}
	if _, ok := model.FindTask(m.Current.Tasks, taskID); !ok {
		return &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown task %q", taskID)}
	}
	return nil
}

func parseViewMode(raw string) (gantt.ViewMode, bool) {
	for _, mode := range gantt.AllViewModes {
		if strings.EqualFold(string(mode), strings.TrimSpace(raw)) {
			return mode, true
		}
	}
	return "", false
}
