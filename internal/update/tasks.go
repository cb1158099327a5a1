package update

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/pmboard/internal/gantt"
	"github.com/sandeepkv93/pmboard/internal/model"
	"github.com/sandeepkv93/pmboard/internal/views"
)

func toggleTaskCmd(client ProjectAPI, timeout time.Duration, projectID, taskID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := client.ToggleTask(ctx, projectID, taskID)
		return TaskToggledMsg{ProjectID: projectID, TaskID: taskID, Err: err}
	}
}

// toggleTask posts a completion toggle. Without a current project it does nothing.
func (m Model) toggleTask(taskID string) (Model, tea.Cmd) {
	if m.Current == nil || m.api == nil {
		return m, nil
	}
	if _, ok := model.FindTask(m.Current.Tasks, taskID); !ok {
		m.setStatus(fmt.Sprintf("unknown task: %s", taskID), true)
		return m, nil
	}
	return m.beginRequest(toggleTaskCmd(m.api, m.requestTimeout, m.Current.ID, taskID))
}

func (m Model) onTaskToggled(msg TaskToggledMsg) (Model, tea.Cmd) {
	m.endRequest()
	if msg.Err != nil {
		m.log.Error("toggle task failed", slog.String("project", msg.ProjectID), slog.String("task", msg.TaskID), slog.String("error", msg.Err.Error()))
		m.LastError = msg.Err
		m.setStatus(fmt.Sprintf("toggle %s failed: %v", msg.TaskID, msg.Err), true)
		return m, nil
	}
	if m.Current == nil || m.Current.ID != msg.ProjectID {
		m.log.Debug("ignoring toggle for project no longer shown", slog.String("project", msg.ProjectID))
		return m, nil
	}
	idx, ok := model.FindTask(m.Current.Tasks, msg.TaskID)
	if !ok {
		return m, nil
	}
	m.Current = cloneProject(m.Current)
	task := &m.Current.Tasks[idx]
	task.Completed = !task.Completed
	m.renderGanttChart()
	if task.Completed {
		m.setStatus(fmt.Sprintf("completed %s", task.Name), false)
	} else {
		m.setStatus(fmt.Sprintf("reopened %s", task.Name), false)
	}
	return m, nil
}

func (m Model) handleProjectKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.Current == nil {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.loadSeq++
		m.showAllProjects()
		return m, nil
	case "j", "down":
		m.moveTaskCursor(1)
	case "k", "up":
		m.moveTaskCursor(-1)
	case m.Keys.Toggle, "x":
		if task, ok := m.selectedTask(); ok {
			return m.toggleTask(task.ID)
		}
	case m.Keys.Start:
		if task, ok := m.selectedTask(); ok {
			return m.startTimer(task.ID, task.Name)
		}
	case m.Keys.ViewMode:
		if m.chart != nil {
			m.chartMode = m.chart.NextViewMode()
			m.refreshChartViewport()
			m.setStatus(fmt.Sprintf("view mode: %s", m.chartMode), false)
		}
	case "enter":
		if m.chart != nil {
			m.chart.Click()
		}
	case "<", ">":
		if m.chart != nil {
			delta := 1
			if msg.String() == "<" {
				delta = -1
			}
			if err := m.chart.Shift(delta); err != nil {
				m.setStatus(err.Error(), true)
				return m, nil
			}
			m.refreshChartViewport()
		}
	case "pgdown", "pgup":
		var cmd tea.Cmd
		m.chartViewport, cmd = m.chartViewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) moveTaskCursor(delta int) {
	if m.Current == nil || len(m.Current.Tasks) == 0 {
		return
	}
	m.TaskCursor = clamp(m.TaskCursor+delta, 0, len(m.Current.Tasks)-1)
	if m.chart != nil {
		m.chart.Select(m.TaskCursor)
		m.refreshChartViewport()
	}
}

func (m Model) selectedTask() (model.Task, bool) {
	if m.Current == nil || m.TaskCursor < 0 || m.TaskCursor >= len(m.Current.Tasks) {
		return model.Task{}, false
	}
	return m.Current.Tasks[m.TaskCursor], true
}

// renderGanttChart re-instantiates the chart from the current project's tasks.
func (m *Model) renderGanttChart() {
	if m.Current == nil || len(m.Current.Tasks) == 0 {
		m.chart = nil
		m.refreshChartViewport()
		return
	}
	tasks := make([]gantt.Task, 0, len(m.Current.Tasks))
	for _, t := range m.Current.Tasks {
		tasks = append(tasks, gantt.Task{
			ID:           t.ID,
			Name:         t.Name,
			Start:        t.Start,
			End:          t.End,
			Progress:     t.Progress(),
			Dependencies: append([]string(nil), t.Dependencies...),
		})
	}

	log := m.log
	opts := gantt.DefaultOptions()
	opts.ViewMode = m.chartMode
	opts.OnClick = func(task gantt.Task) {
		log.Info("task selected", slog.String("task", task.ID))
	}
	opts.OnDateChange = func(task gantt.Task, start, end time.Time) {
		log.Info("task dates changed", slog.String("task", task.ID),
			slog.String("start", start.Format(model.DateLayout)),
			slog.String("end", end.Format(model.DateLayout)))
	}

	m.chart = gantt.New(tasks, opts)
	m.TaskCursor = clamp(m.TaskCursor, 0, len(tasks)-1)
	m.chart.Select(m.TaskCursor)
	m.chartRenders++
	m.refreshChartViewport()
}

func (m *Model) refreshChartViewport() {
	if m.chart == nil {
		m.chartViewport.SetContent(views.NoProjectTasks)
		return
	}
	m.chartViewport.SetContent(m.chart.View(m.Theme.ChartStyle()))
}

func (m Model) taskListData() views.TaskListData {
	switch m.Screen {
	case ScreenOverview:
		return views.TaskListData{Message: views.SelectAProject}
	case ScreenProject:
		if m.Current == nil || len(m.Current.Tasks) == 0 {
			return views.TaskListData{Message: views.NoProjectTasks}
		}
	default:
		return views.TaskListData{Message: views.NoTasksAvailable}
	}

	items := make([]views.TaskItemData, 0, len(m.Current.Tasks))
	for i, t := range m.Current.Tasks {
		items = append(items, views.TaskItemData{
			Name:      t.Name,
			Completed: t.Completed,
			TimeSpent: FormatTime(t.TimeSpent),
			Selected:  i == m.TaskCursor,
			Timing:    m.Timer != nil && m.Timer.ProjectID == m.Current.ID && m.Timer.TaskID == t.ID,
		})
	}
	return views.TaskListData{Items: items}
}
