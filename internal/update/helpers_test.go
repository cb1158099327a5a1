package update

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/pmboard/internal/api"
	"github.com/sandeepkv93/pmboard/internal/model"
)

type loggedEntry struct {
	ProjectID string
	TaskID    string
	Entry     model.TimeEntry
}

type fakeAPI struct {
	mu        sync.Mutex
	projects  []model.ProjectSummary
	details   map[string]model.Project
	listErr   error
	toggleErr error
	logErr    error
	lists     int
	toggles   []string
	logged    []loggedEntry
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		projects: []model.ProjectSummary{
			{ID: "web", Name: "Website", Status: model.ProjectStatusActive, Created: "2026-01-05T10:30:00"},
			{ID: "mobile", Name: "Mobile", Status: model.ProjectStatusOnHold, Created: "2025-12-01T08:00:00"},
		},
		details: map[string]model.Project{
			"web": {
				ID: "web", Name: "Website", Status: model.ProjectStatusActive, Created: "2026-01-05T10:30:00",
				Tasks: []model.Task{
					{ID: "a", Name: "Design", Start: "2026-01-06", End: "2026-01-07", TimeSpent: 5},
					{ID: "b", Name: "Build", Start: "2026-01-08", End: "2026-01-10", Completed: true, Dependencies: []string{"a"}},
				},
			},
			"mobile": {
				ID: "mobile", Name: "Mobile", Status: model.ProjectStatusOnHold, Created: "2025-12-01T08:00:00",
				Tasks: []model.Task{
					{ID: "m1", Name: "Prototype", Start: "2026-02-01", End: "2026-02-03"},
				},
			},
			"empty": {ID: "empty", Name: "Empty", Tasks: []model.Task{}},
		},
	}
}

func (f *fakeAPI) ListProjects(context.Context) ([]model.ProjectSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.ProjectSummary(nil), f.projects...), nil
}

func (f *fakeAPI) GetProject(_ context.Context, id string) (model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.details[id]
	if !ok {
		return model.Project{}, fmt.Errorf("%w: %s", api.ErrProjectNotFound, id)
	}
	out := p
	out.Tasks = append([]model.Task(nil), p.Tasks...)
	return out, nil
}

func (f *fakeAPI) ToggleTask(_ context.Context, projectID, taskID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toggles = append(f.toggles, projectID+"/"+taskID)
	return f.toggleErr
}

func (f *fakeAPI) LogTime(_ context.Context, projectID, taskID string, entry model.TimeEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logged = append(f.logged, loggedEntry{ProjectID: projectID, TaskID: taskID, Entry: entry})
	return f.logErr
}

func (f *fakeAPI) loggedEntries() []loggedEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]loggedEntry(nil), f.logged...)
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestModel(t *testing.T, client ProjectAPI, clock *fakeClock) Model {
	t.Helper()
	return NewModel(Options{
		API:                client,
		Now:                clock.Now,
		StatePath:          filepath.Join(t.TempDir(), "state.json"),
		ThemeRerenderDelay: time.Millisecond,
	})
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC)}
}

// run executes cmd and feeds every resulting message back into the model.
// Tick-driven messages (spinner, timer) are not followed.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range collect(cmd) {
		updated, next := m.Update(msg)
		m = updated.(Model)
		m = run(t, m, next)
	}
	return m
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		switch typed := msg.(type) {
		case tea.BatchMsg:
			var out []tea.Msg
			for _, c := range typed {
				out = append(out, collect(c)...)
			}
			return out
		case spinner.TickMsg, TimerTickMsg:
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

// press sends one key and runs the command it produced.
func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	updated, cmd := m.Update(keyMsg(k))
	return run(t, updated.(Model), cmd)
}

// started returns a model with the roster loaded.
func started(t *testing.T, client *fakeAPI, clock *fakeClock) Model {
	t.Helper()
	m := newTestModel(t, client, clock)
	return run(t, m, m.Init())
}

// opened returns a model showing the given project.
func opened(t *testing.T, client *fakeAPI, clock *fakeClock, id string) Model {
	t.Helper()
	m := started(t, client, clock)
	next, cmd := m.loadProject(id)
	m = run(t, next, cmd)
	if m.Current == nil || m.Current.ID != id {
		t.Fatalf("expected project %s to be loaded, got %+v", id, m.Current)
	}
	return m
}
