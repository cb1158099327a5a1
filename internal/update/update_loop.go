package update

import (
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/pmboard/internal/views"
)

// RefreshMsg asks the controller to reload the project roster.
type RefreshMsg struct{}

func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return RefreshMsg{} }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case tea.WindowSizeMsg:
		m.resize(typed.Height)
		return m, nil
	case spinner.TickMsg:
		if !m.spinnerWanted() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.loadSpinner, cmd = m.loadSpinner.Update(typed)
		return m, cmd
	case RefreshMsg:
		return m.loadProjects()
	case ProjectsLoadedMsg:
		return m.onProjectsLoaded(typed)
	case ProjectLoadedMsg:
		return m.onProjectLoaded(typed)
	case TaskToggledMsg:
		return m.onTaskToggled(typed)
	case TimeLoggedMsg:
		return m.onTimeLogged(typed)
	case TimerTickMsg:
		return m.onTimerTick(typed)
	case ThemeRerenderMsg:
		return m.onThemeRerender(typed)
	case SetStatusMsg:
		m.setStatus(typed.Text, typed.IsError)
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.log.Error("app error", slog.String("error", typed.Err.Error()))
			m.setStatus(typed.Err.Error(), true)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	keyStr := msg.String()
	if keyStr == "ctrl+c" {
		m.Quitting = true
		return m, tea.Quit
	}
	// The alert is modal: only dismissal keys reach it.
	if m.Alert != "" {
		if keyStr == "enter" || keyStr == "esc" {
			m.Alert = ""
		}
		return m, nil
	}
	if m.Palette.Active {
		return m.handlePaletteKey(msg)
	}

	switch keyStr {
	case "/":
		return m.openPalette(), nil
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case m.Keys.Refresh:
		return m.loadProjects()
	case m.Keys.PrevProject:
		return m.moveSelector(-1)
	case m.Keys.NextProject:
		return m.moveSelector(1)
	case m.Keys.Stop:
		return m.stopTimer()
	case m.Keys.Theme:
		return m.changeTheme(views.NextTheme(m.Theme.Name).Name)
	}

	switch m.Screen {
	case ScreenOverview:
		return m.handleOverviewKey(msg)
	case ScreenProject:
		return m.handleProjectKey(msg)
	}
	return m, nil
}

func (m *Model) setStatus(text string, isErr bool) {
	m.Status = StatusBar{Text: text, IsError: isErr}
	m.log.Debug("status", slog.String("level", levelFromError(isErr)), slog.String("text", text))
}

func (m *Model) resize(height int) {
	h := height - 14
	if h < 6 {
		h = 6
	}
	m.chartViewport.Height = h
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	title := "pmboard"
	mainPane := ""
	switch m.Screen {
	case ScreenInitial:
		if m.inFlight > 0 {
			mainPane = m.loadSpinner.View() + " loading projects"
		}
	case ScreenEmpty:
		title = "All Projects Overview"
		mainPane = views.RenderEmptyState()
	case ScreenOverview:
		title = "All Projects Overview"
		mainPane = views.RenderProjectCards(m.projectCards(), m.Theme)
	case ScreenProject:
		mainPane = m.renderProjectPane()
		if m.Current != nil {
			title = m.Current.Name
		}
	}

	sidePane := views.RenderTaskList(m.taskListData(), m.Theme)
	if palette := views.RenderCommandPalette(m.Palette.Active, m.commandInput.View()); palette != "" {
		sidePane += "\n\n" + palette
	}

	timerPanel := ""
	if m.Timer != nil {
		timerPanel = views.RenderTimerPanel(views.TimerPanelData{
			TaskName: m.Timer.TaskName,
			Elapsed:  FormatTime(m.elapsedMinutes()),
			Spinner:  m.loadSpinner.View(),
		})
	}

	selector := ""
	if m.ProjectsLoaded {
		selector = views.RenderSelector(m.selectorOptions(), m.SelectorIndex)
	}

	return views.RenderApp(views.AppData{
		Theme:         m.Theme,
		Header:        fmt.Sprintf("pmboard | %s | theme: %s", title, m.Theme.Name),
		Selector:      selector,
		MainPane:      mainPane,
		SidePane:      sidePane,
		TimerPanel:    timerPanel,
		StatusLine:    status,
		StatusIsError: m.Status.IsError,
		Overlay:       m.renderHelpIfVisible(),
		Alert:         m.Alert,
		Footer: fmt.Sprintf("keys: %s refresh | %s/%s project | %s stop | %s theme | / cmd | %s help | %s quit",
			m.Keys.Refresh, m.Keys.PrevProject, m.Keys.NextProject, m.Keys.Stop, m.Keys.Theme, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) renderProjectPane() string {
	if m.Current == nil {
		return ""
	}
	total := len(m.Current.Tasks)
	done := m.Current.CompletedCount()
	pct := 0.0
	if total > 0 {
		pct = float64(done) / float64(total)
	}
	header := views.RenderProjectHeader(views.ProjectHeaderData{
		Name:         m.Current.Name,
		Status:       string(m.Current.Status),
		Completed:    done,
		Total:        total,
		ProgressView: m.progressBar.ViewAs(pct),
		ViewMode:     string(m.chartMode),
	})
	return header + "\n\n" + m.chartViewport.View()
}
