package update

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/pmboard/internal/model"
)

func timerTickCmd(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(at time.Time) tea.Msg { return TimerTickMsg{Gen: gen, At: at} })
}

func logTimeCmd(client ProjectAPI, timeout time.Duration, projectID, taskID string, entry model.TimeEntry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := client.LogTime(ctx, projectID, taskID, entry)
		return TimeLoggedMsg{ProjectID: projectID, TaskID: taskID, Minutes: entry.Duration, Err: err}
	}
}

// startTimer begins tracking a task. Only one timer may run at a time.
func (m Model) startTimer(taskID, taskName string) (Model, tea.Cmd) {
	if m.Timer != nil {
		m.Alert = AlertTimerRunning
		return m, nil
	}
	if m.Current == nil {
		return m, nil
	}
	m.Timer = &Timer{
		TaskID:    taskID,
		TaskName:  taskName,
		ProjectID: m.Current.ID,
		StartedAt: m.now(),
	}
	m.Elapsed = 0
	m.timerGen++
	m.log.Info("timer started", slog.String("project", m.Timer.ProjectID), slog.String("task", taskID))
	m.setStatus(fmt.Sprintf("timer started: %s", taskName), false)
	spin := m.startSpinner()
	return m, tea.Batch(timerTickCmd(m.timerGen), spin)
}

// stopTimer logs the elapsed time and clears the timer whatever the outcome
// of the post. Idle timers are left alone.
func (m Model) stopTimer() (Model, tea.Cmd) {
	if m.Timer == nil {
		return m, nil
	}
	timer := *m.Timer
	entry := model.NewTimeEntry(timer.StartedAt, m.now())

	if m.Current != nil && m.Current.ID == timer.ProjectID {
		if idx, ok := model.FindTask(m.Current.Tasks, timer.TaskID); ok {
			m.Current = cloneProject(m.Current)
			m.Current.Tasks[idx].TimeSpent += float64(entry.Duration)
		}
	}

	m.Timer = nil
	m.Elapsed = 0
	m.timerGen++
	m.log.Info("timer stopped", slog.String("project", timer.ProjectID), slog.String("task", timer.TaskID), slog.Int("minutes", entry.Duration))
	m.setStatus(fmt.Sprintf("timer stopped: %s (%s)", timer.TaskName, FormatTime(float64(entry.Duration))), false)
	if m.api == nil {
		return m, nil
	}
	return m.beginRequest(logTimeCmd(m.api, m.requestTimeout, timer.ProjectID, timer.TaskID, entry))
}

func (m Model) onTimerTick(msg TimerTickMsg) (Model, tea.Cmd) {
	if m.Timer == nil || msg.Gen != m.timerGen {
		return m, nil
	}
	m.Elapsed = m.now().Sub(m.Timer.StartedAt)
	if m.Elapsed < 0 {
		m.Elapsed = 0
	}
	return m, timerTickCmd(m.timerGen)
}

// onTimeLogged rolls the optimistic increment back when the post failed.
func (m Model) onTimeLogged(msg TimeLoggedMsg) (Model, tea.Cmd) {
	m.endRequest()
	if msg.Err == nil {
		m.log.Debug("time logged", slog.String("project", msg.ProjectID), slog.String("task", msg.TaskID), slog.Int("minutes", msg.Minutes))
		return m, nil
	}
	m.log.Error("log time failed", slog.String("project", msg.ProjectID), slog.String("task", msg.TaskID), slog.String("error", msg.Err.Error()))
	m.LastError = msg.Err
	if m.Current != nil && m.Current.ID == msg.ProjectID {
		if idx, ok := model.FindTask(m.Current.Tasks, msg.TaskID); ok {
			m.Current = cloneProject(m.Current)
			spent := m.Current.Tasks[idx].TimeSpent - float64(msg.Minutes)
			if spent < 0 {
				spent = 0
			}
			m.Current.Tasks[idx].TimeSpent = spent
		}
	}
	m.setStatus(fmt.Sprintf("log time failed: %v", msg.Err), true)
	return m, nil
}

func (m Model) elapsedMinutes() float64 {
	return m.Elapsed.Minutes()
}
