package update

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/pmboard/internal/api"
	"github.com/sandeepkv93/pmboard/internal/model"
	"github.com/sandeepkv93/pmboard/internal/views"
)

func loadProjectsCmd(client ProjectAPI, timeout time.Duration, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		projects, err := client.ListProjects(ctx)
		return ProjectsLoadedMsg{Seq: seq, Projects: projects, Err: err}
	}
}

func loadProjectCmd(client ProjectAPI, timeout time.Duration, seq int, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		project, err := client.GetProject(ctx, id)
		return ProjectLoadedMsg{Seq: seq, ID: id, Project: project, Err: err}
	}
}

// loadProjects refreshes the roster and returns to the overview.
func (m Model) loadProjects() (Model, tea.Cmd) {
	if m.api == nil {
		m.setStatus("no backend configured", true)
		return m, nil
	}
	m.rosterSeq++
	m.loadSeq++
	m.setStatus("loading projects", false)
	return m.beginRequest(loadProjectsCmd(m.api, m.requestTimeout, m.rosterSeq))
}

// loadProject fetches one project. Only the latest request is applied.
func (m Model) loadProject(id string) (Model, tea.Cmd) {
	if m.api == nil {
		m.setStatus("no backend configured", true)
		return m, nil
	}
	m.loadSeq++
	m.setStatus(fmt.Sprintf("loading project %s", id), false)
	return m.beginRequest(loadProjectCmd(m.api, m.requestTimeout, m.loadSeq, id))
}

func (m Model) onProjectsLoaded(msg ProjectsLoadedMsg) (Model, tea.Cmd) {
	m.endRequest()
	if msg.Seq != m.rosterSeq {
		m.log.Debug("dropping stale roster response", slog.Int("seq", msg.Seq), slog.Int("latest", m.rosterSeq))
		return m, nil
	}
	if msg.Err != nil {
		m.log.Error("load projects failed", slog.String("error", msg.Err.Error()))
		m.LastError = msg.Err
		m.setStatus(fmt.Sprintf("load projects failed: %v", msg.Err), true)
		return m, nil
	}
	m.Projects = msg.Projects
	m.ProjectsLoaded = true
	m.log.Info("projects loaded", slog.Int("count", len(m.Projects)))
	m.setStatus(fmt.Sprintf("%d project(s)", len(m.Projects)), false)
	m.showAllProjects()
	return m, nil
}

func (m Model) onProjectLoaded(msg ProjectLoadedMsg) (Model, tea.Cmd) {
	m.endRequest()
	if msg.Seq != m.loadSeq {
		m.log.Debug("dropping stale project response", slog.String("project", msg.ID), slog.Int("seq", msg.Seq), slog.Int("latest", m.loadSeq))
		return m, nil
	}
	if msg.Err != nil {
		if errors.Is(msg.Err, api.ErrProjectNotFound) {
			m.log.Warn("project not found", slog.String("project", msg.ID))
			m.Alert = AlertProjectNotFound
			m.syncSelector()
			return m, nil
		}
		m.log.Error("load project failed", slog.String("project", msg.ID), slog.String("error", msg.Err.Error()))
		m.LastError = msg.Err
		m.setStatus(fmt.Sprintf("load project failed: %v", msg.Err), true)
		m.syncSelector()
		return m, nil
	}

	project := msg.Project
	if project.Tasks == nil {
		project.Tasks = []model.Task{}
	}
	m.Current = cloneProject(&project)
	m.Screen = ScreenProject
	m.TaskCursor = 0
	m.syncSelector()
	m.renderGanttChart()
	m.setStatus(fmt.Sprintf("project %s loaded", project.Name), false)
	return m, nil
}

// showAllProjects switches to the roster overview, discarding the current project.
func (m *Model) showAllProjects() {
	m.Current = nil
	m.chart = nil
	m.SelectorIndex = 0
	if len(m.Projects) == 0 {
		m.Screen = ScreenEmpty
		m.CardCursor = 0
		return
	}
	m.Screen = ScreenOverview
	m.CardCursor = clamp(m.CardCursor, 0, len(m.Projects)-1)
}

// selectorOptions is the project selector: "All Projects" then one per project.
func (m Model) selectorOptions() []string {
	out := make([]string, 0, len(m.Projects)+1)
	out = append(out, AllProjectsOption)
	for _, p := range m.Projects {
		out = append(out, p.Name)
	}
	return out
}

// syncSelector points the selector at the current project.
func (m *Model) syncSelector() {
	m.SelectorIndex = 0
	if m.Current == nil {
		return
	}
	for i, p := range m.Projects {
		if p.ID == m.Current.ID {
			m.SelectorIndex = i + 1
			m.CardCursor = i
			return
		}
	}
}

func (m Model) moveSelector(delta int) (Model, tea.Cmd) {
	if !m.ProjectsLoaded {
		return m, nil
	}
	options := len(m.Projects) + 1
	m.SelectorIndex = ((m.SelectorIndex+delta)%options + options) % options
	if m.SelectorIndex == 0 {
		m.loadSeq++
		m.showAllProjects()
		return m, nil
	}
	return m.loadProject(m.Projects[m.SelectorIndex-1].ID)
}

func (m Model) handleOverviewKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if len(m.Projects) == 0 {
		return m, nil
	}
	switch msg.String() {
	case "j", "down", "l", "right":
		m.CardCursor = clamp(m.CardCursor+1, 0, len(m.Projects)-1)
	case "k", "up", "h", "left":
		m.CardCursor = clamp(m.CardCursor-1, 0, len(m.Projects)-1)
	case "enter":
		return m.loadProject(m.Projects[m.CardCursor].ID)
	}
	return m, nil
}

func (m Model) projectCards() []views.ProjectCardData {
	cards := make([]views.ProjectCardData, 0, len(m.Projects))
	for i, p := range m.Projects {
		cards = append(cards, views.ProjectCardData{
			Name:     p.Name,
			Status:   string(p.Status),
			Created:  createdDate(p),
			Selected: i == m.CardCursor,
		})
	}
	return cards
}

// beginRequest tracks an in-flight call and starts the spinner when idle.
func (m Model) beginRequest(cmd tea.Cmd) (Model, tea.Cmd) {
	m.inFlight++
	spin := m.startSpinner()
	return m, tea.Batch(cmd, spin)
}

func (m *Model) endRequest() {
	if m.inFlight > 0 {
		m.inFlight--
	}
}

func (m *Model) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return m.loadSpinner.Tick
}

func (m Model) spinnerWanted() bool {
	return m.inFlight > 0 || m.Timer != nil
}
