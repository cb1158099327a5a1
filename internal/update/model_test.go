package update

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/pmboard/internal/views"
)

func TestFormatTime(t *testing.T) {
	cases := []struct {
		minutes float64
		want    string
	}{
		{0, "0s"},
		{1.5, "1m 30s"},
		{61, "1h 1m"},
		{125.25, "2h 5m"},
		{0.5, "30s"},
		{59.75, "59m 45s"},
		{60, "1h 0m"},
		{-3, "0s"},
	}
	for _, tc := range cases {
		if got := FormatTime(tc.minutes); got != tc.want {
			t.Fatalf("FormatTime(%v) = %q, want %q", tc.minutes, got, tc.want)
		}
	}
}

func TestNewModelDefaults(t *testing.T) {
	m := newTestModel(t, newFakeAPI(), newClock())
	if m.Screen != ScreenInitial {
		t.Fatalf("expected initial screen, got %q", m.Screen)
	}
	if m.Theme.Name != "blue" {
		t.Fatalf("expected default theme blue, got %q", m.Theme.Name)
	}
	if m.Keys.Quit != "q" || m.Keys.Stop != "S" {
		t.Fatalf("unexpected keys: %+v", m.Keys)
	}
	if m.rerenderDelay != time.Millisecond {
		t.Fatalf("expected configured rerender delay, got %s", m.rerenderDelay)
	}
	if NewModel(Options{}).rerenderDelay != DefaultThemeRerenderDelay {
		t.Fatal("expected default rerender delay")
	}
}

func TestInitShowsProjectCards(t *testing.T) {
	client := newFakeAPI()
	m := started(t, client, newClock())
	if m.Screen != ScreenOverview || !m.ProjectsLoaded {
		t.Fatalf("expected overview, got %q", m.Screen)
	}
	view := m.View()
	for _, want := range []string{"Website", "active", "Created: 2026-01-05", "Mobile", "on-hold", "Created: 2025-12-01", views.SelectAProject, "All Projects"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
	if m.InFlight() != 0 {
		t.Fatalf("expected no requests in flight, got %d", m.InFlight())
	}
}

func TestEmptyRosterShowsEmptyState(t *testing.T) {
	client := newFakeAPI()
	client.projects = nil
	m := started(t, client, newClock())
	if m.Screen != ScreenEmpty {
		t.Fatalf("expected empty screen, got %q", m.Screen)
	}
	if !strings.Contains(m.View(), views.NoTasksAvailable) {
		t.Fatalf("expected %q in view:\n%s", views.NoTasksAvailable, m.View())
	}
}

func TestLoadProjectsFailureLeavesUIEmpty(t *testing.T) {
	client := newFakeAPI()
	client.listErr = errors.New("connection refused")
	m := started(t, client, newClock())
	if m.Screen != ScreenInitial || m.ProjectsLoaded {
		t.Fatalf("expected untouched initial screen, got %q", m.Screen)
	}
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "connection refused") {
		t.Fatalf("expected error status, got %+v", m.Status)
	}
	if m.Alert != "" {
		t.Fatalf("network failures must not alert, got %q", m.Alert)
	}
}

func TestLoadProjectFromCard(t *testing.T) {
	m := started(t, newFakeAPI(), newClock())
	m = press(t, m, "j")
	m = press(t, m, "enter")
	if m.Screen != ScreenProject || m.Current == nil || m.Current.ID != "mobile" {
		t.Fatalf("expected mobile project, got %+v", m.Current)
	}
	if m.SelectorIndex != 2 {
		t.Fatalf("expected selector synced to mobile, got %d", m.SelectorIndex)
	}
	if !strings.Contains(m.View(), "Prototype") {
		t.Fatalf("expected task in view:\n%s", m.View())
	}
}

func TestLoadProjectWithoutTasks(t *testing.T) {
	m := opened(t, newFakeAPI(), newClock(), "empty")
	if m.ChartTasks() != nil {
		t.Fatal("expected no chart for a project without tasks")
	}
	if !strings.Contains(m.View(), views.NoProjectTasks) {
		t.Fatalf("expected %q in view:\n%s", views.NoProjectTasks, m.View())
	}
}

func TestLoadProjectNotFoundKeepsCurrentAndAlerts(t *testing.T) {
	m := opened(t, newFakeAPI(), newClock(), "web")
	next, cmd := m.loadProject("ghost")
	m = run(t, next, cmd)
	if m.Current == nil || m.Current.ID != "web" {
		t.Fatalf("expected web to stay current, got %+v", m.Current)
	}
	if m.Alert != AlertProjectNotFound {
		t.Fatalf("expected not found alert, got %q", m.Alert)
	}
	if !strings.Contains(m.View(), AlertProjectNotFound) {
		t.Fatal("expected alert in view")
	}
	if m.SelectorIndex != 1 {
		t.Fatalf("expected selector to point at web, got %d", m.SelectorIndex)
	}
}

func TestAlertIsModal(t *testing.T) {
	m := opened(t, newFakeAPI(), newClock(), "web")
	m.Alert = AlertTimerRunning

	updated, cmd := m.Update(keyMsg("q"))
	m = updated.(Model)
	if cmd != nil || m.Quitting {
		t.Fatal("quit key must be swallowed while an alert is shown")
	}
	m = press(t, m, " ")
	if m.Current.Tasks[0].Completed {
		t.Fatal("toggle must be swallowed while an alert is shown")
	}
	m = press(t, m, "enter")
	if m.Alert != "" {
		t.Fatalf("expected alert dismissed, got %q", m.Alert)
	}

	m.Alert = AlertTimerRunning
	updated, cmd = m.Update(keyMsg("ctrl+c"))
	if cmd == nil || !updated.(Model).Quitting {
		t.Fatal("ctrl+c must still quit")
	}
}

func TestStaleProjectResponseIsDropped(t *testing.T) {
	m := started(t, newFakeAPI(), newClock())
	m1, cmdWeb := m.loadProject("web")
	m2, cmdMobile := m1.loadProject("mobile")

	m = run(t, m2, cmdMobile)
	m = run(t, m, cmdWeb)
	if m.Current == nil || m.Current.ID != "mobile" {
		t.Fatalf("expected latest request to win, got %+v", m.Current)
	}
	if m.InFlight() != 0 {
		t.Fatalf("expected in-flight counter to drain, got %d", m.InFlight())
	}
}

func TestSelectorSwitchesProjects(t *testing.T) {
	m := started(t, newFakeAPI(), newClock())
	m = press(t, m, "]")
	if m.Current == nil || m.Current.ID != "web" {
		t.Fatalf("expected web after ], got %+v", m.Current)
	}
	m = press(t, m, "[")
	if m.Current != nil || m.Screen != ScreenOverview || m.SelectorIndex != 0 {
		t.Fatalf("expected all projects overview, got screen=%q idx=%d", m.Screen, m.SelectorIndex)
	}
	m = press(t, m, "[")
	if m.Current == nil || m.Current.ID != "mobile" {
		t.Fatalf("expected selector to wrap to mobile, got %+v", m.Current)
	}
}

func TestToggleTaskFlipsFlagAndChart(t *testing.T) {
	client := newFakeAPI()
	m := opened(t, client, newClock(), "web")
	renders := m.ChartRenders()

	m = press(t, m, " ")
	if !m.Current.Tasks[0].Completed {
		t.Fatal("expected task a to be completed")
	}
	if got := m.ChartTasks()[0].Progress; got != 100 {
		t.Fatalf("expected chart progress 100, got %d", got)
	}
	if m.ChartRenders() != renders+1 {
		t.Fatalf("expected chart re-render, got %d -> %d", renders, m.ChartRenders())
	}

	m = press(t, m, "x")
	if m.Current.Tasks[0].Completed || m.ChartTasks()[0].Progress != 0 {
		t.Fatal("expected second toggle to reopen the task")
	}
	if len(client.toggles) != 2 || client.toggles[0] != "web/a" {
		t.Fatalf("unexpected toggle calls: %v", client.toggles)
	}
}

func TestToggleFailureLeavesStateUnchanged(t *testing.T) {
	client := newFakeAPI()
	client.toggleErr = errors.New("server error")
	m := opened(t, client, newClock(), "web")
	m = press(t, m, " ")
	if m.Current.Tasks[0].Completed {
		t.Fatal("failed toggle must not flip local state")
	}
	if !m.Status.IsError {
		t.Fatalf("expected error status, got %+v", m.Status)
	}
}

func TestToggleWithoutProjectIsNoop(t *testing.T) {
	client := newFakeAPI()
	m := started(t, client, newClock())
	next, cmd := m.toggleTask("a")
	if cmd != nil || next.InFlight() != 0 {
		t.Fatal("expected toggle without project to do nothing")
	}
	if len(client.toggles) != 0 {
		t.Fatalf("unexpected toggle calls: %v", client.toggles)
	}
}

func TestToggleResponseForOtherProjectIsIgnored(t *testing.T) {
	m := opened(t, newFakeAPI(), newClock(), "mobile")
	updated, _ := m.Update(TaskToggledMsg{ProjectID: "web", TaskID: "m1"})
	m = updated.(Model)
	if m.Current.Tasks[0].Completed {
		t.Fatal("toggle for another project must be ignored")
	}
}

func TestStartTimerRejectedWhileActive(t *testing.T) {
	m := opened(t, newFakeAPI(), newClock(), "web")
	m = press(t, m, "s")
	if m.Timer == nil || m.Timer.TaskID != "a" || m.Timer.ProjectID != "web" {
		t.Fatalf("expected timer on web/a, got %+v", m.Timer)
	}
	if !strings.Contains(m.View(), "timing: Design") {
		t.Fatalf("expected timer panel:\n%s", m.View())
	}

	for _, k := range []string{"s", "j", "s"} {
		m = press(t, m, k)
		if k == "s" {
			if m.Alert != AlertTimerRunning {
				t.Fatalf("expected running timer alert, got %q", m.Alert)
			}
			m = press(t, m, "esc")
		}
	}
	if m.Timer.TaskID != "a" {
		t.Fatalf("timer must stay on the first task, got %q", m.Timer.TaskID)
	}
}

func TestStopTimerWhenIdleIsNoop(t *testing.T) {
	client := newFakeAPI()
	m := opened(t, client, newClock(), "web")
	before := m.View()
	updated, cmd := m.Update(keyMsg("S"))
	next := updated.(Model)
	if cmd != nil {
		t.Fatal("expected no command for idle stop")
	}
	if next.View() != before {
		t.Fatal("expected idle stop to leave the view unchanged")
	}
	if len(client.loggedEntries()) != 0 {
		t.Fatal("expected no time log call")
	}
}

func TestStopTimerPostsRoundedDurationAndAccumulates(t *testing.T) {
	client := newFakeAPI()
	clock := newClock()
	m := opened(t, client, clock, "web")

	elapsed := []time.Duration{90 * time.Second, 29 * time.Second, 10*time.Minute + 31*time.Second}
	want := []int{2, 0, 11}
	for _, d := range elapsed {
		m = press(t, m, "s")
		clock.Advance(d)
		m = press(t, m, "S")
		if m.Timer != nil {
			t.Fatal("expected timer cleared after stop")
		}
	}

	logged := client.loggedEntries()
	if len(logged) != len(want) {
		t.Fatalf("expected %d time logs, got %d", len(want), len(logged))
	}
	sum := 0
	for i, entry := range logged {
		if entry.ProjectID != "web" || entry.TaskID != "a" {
			t.Fatalf("unexpected log target: %+v", entry)
		}
		if entry.Entry.Duration != want[i] {
			t.Fatalf("cycle %d: expected %d minutes, got %d", i, want[i], entry.Entry.Duration)
		}
		sum += want[i]
	}
	if got := m.Current.Tasks[0].TimeSpent; got != float64(5+sum) {
		t.Fatalf("expected accumulated %d minutes, got %v", 5+sum, got)
	}
	if !strings.Contains(m.View(), FormatTime(float64(5+sum))) {
		t.Fatalf("expected formatted time spent in view:\n%s", m.View())
	}
}

func TestStopTimerFailureRollsBack(t *testing.T) {
	client := newFakeAPI()
	client.logErr = errors.New("timeout")
	clock := newClock()
	m := opened(t, client, clock, "web")
	m = press(t, m, "s")
	clock.Advance(3 * time.Minute)
	m = press(t, m, "S")
	if m.Timer != nil {
		t.Fatal("timer must be cleared even when the post fails")
	}
	if got := m.Current.Tasks[0].TimeSpent; got != 5 {
		t.Fatalf("expected rollback to 5 minutes, got %v", got)
	}
	if !m.Status.IsError {
		t.Fatalf("expected error status, got %+v", m.Status)
	}
}

func TestTimerTickRecomputesFromWallClock(t *testing.T) {
	clock := newClock()
	m := opened(t, newFakeAPI(), clock, "web")
	m = press(t, m, "s")
	gen := m.timerGen

	clock.Advance(75 * time.Second)
	updated, cmd := m.Update(TimerTickMsg{Gen: gen})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected the tick to re-arm")
	}
	if m.Elapsed != 75*time.Second {
		t.Fatalf("expected 75s elapsed, got %s", m.Elapsed)
	}
	if !strings.Contains(m.View(), "1m 15s") {
		t.Fatalf("expected elapsed time in view:\n%s", m.View())
	}

	updated, cmd = m.Update(TimerTickMsg{Gen: gen - 1})
	if cmd != nil {
		t.Fatal("stale tick must not re-arm")
	}
	_ = updated
}

func TestTimerLogsAgainstProjectItStartedIn(t *testing.T) {
	client := newFakeAPI()
	clock := newClock()
	m := opened(t, client, clock, "web")
	m = press(t, m, "s")

	next, cmd := m.loadProject("mobile")
	m = run(t, next, cmd)
	clock.Advance(5 * time.Minute)
	m = press(t, m, "S")

	logged := client.loggedEntries()
	if len(logged) != 1 || logged[0].ProjectID != "web" || logged[0].TaskID != "a" {
		t.Fatalf("expected log against web/a, got %+v", logged)
	}
	if m.Current.Tasks[0].TimeSpent != 0 {
		t.Fatalf("mobile task must not be charged, got %v", m.Current.Tasks[0].TimeSpent)
	}
}

func TestChangeThemePersistsAndRerendersChart(t *testing.T) {
	client := newFakeAPI()
	clock := newClock()
	statePath := filepath.Join(t.TempDir(), "ui", "state.json")
	m := NewModel(Options{API: client, Now: clock.Now, StatePath: statePath, ThemeRerenderDelay: time.Millisecond})
	m = run(t, m, m.Init())
	next, cmd := m.loadProject("web")
	m = run(t, next, cmd)
	renders := m.ChartRenders()

	m = press(t, m, "t")
	if m.Theme.Name != "green" {
		t.Fatalf("expected green theme, got %q", m.Theme.Name)
	}
	if m.ChartRenders() != renders+1 {
		t.Fatalf("expected delayed chart re-render, got %d -> %d", renders, m.ChartRenders())
	}
	raw, err := os.ReadFile(statePath)
	if err != nil {
		t.Fatalf("read state: %v", err)
	}
	if !strings.Contains(string(raw), `"pm-theme": "green"`) {
		t.Fatalf("unexpected state file: %s", raw)
	}

	reopened := NewModel(Options{API: client, StatePath: statePath})
	if reopened.Theme.Name != "green" {
		t.Fatalf("expected persisted theme on start, got %q", reopened.Theme.Name)
	}
}

func TestChangeThemeWithoutChartSkipsRerender(t *testing.T) {
	m := started(t, newFakeAPI(), newClock())
	next, cmd := m.changeTheme("purple")
	if cmd != nil {
		t.Fatal("expected no re-render without a chart")
	}
	if next.Theme.Name != "purple" {
		t.Fatalf("expected purple, got %q", next.Theme.Name)
	}
	next, _ = next.changeTheme("neon")
	if next.Theme.Name != "purple" || !next.Status.IsError {
		t.Fatalf("unknown theme must be rejected, got %q %+v", next.Theme.Name, next.Status)
	}
}

func TestUnknownPersistedThemeFallsBack(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(statePath, []byte(`{"pm-theme":"neon"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	m := NewModel(Options{StatePath: statePath, DefaultTheme: "orange"})
	if m.Theme.Name != "orange" {
		t.Fatalf("expected configured default, got %q", m.Theme.Name)
	}
}

func TestChartViewModeAndClick(t *testing.T) {
	m := opened(t, newFakeAPI(), newClock(), "web")
	m = press(t, m, "v")
	if m.ChartViewMode() != "Week" {
		t.Fatalf("expected Week view mode, got %q", m.ChartViewMode())
	}
	m = press(t, m, " ")
	if m.ChartViewMode() != "Week" {
		t.Fatal("view mode must survive chart re-instantiation")
	}
	m = press(t, m, ">")
	if got := m.ChartTasks()[0].Start; got != "2026-01-13" {
		t.Fatalf("expected bar shifted a week, got %s", got)
	}
	if m.Current.Tasks[0].Start != "2026-01-06" {
		t.Fatal("date change must not touch the project")
	}
	m = press(t, m, "enter")
	if m.Current == nil {
		t.Fatal("click must keep the project")
	}
}

func TestPaletteCommands(t *testing.T) {
	client := newFakeAPI()
	m := started(t, client, newClock())

	m = press(t, m, "/")
	if !m.Palette.Active {
		t.Fatal("expected palette active")
	}
	m = press(t, m, "project mobile")
	m = press(t, m, "enter")
	if m.Palette.Active || m.Current == nil || m.Current.ID != "mobile" {
		t.Fatalf("expected mobile loaded from palette, got %+v", m.Current)
	}

	m = press(t, m, "/")
	m = press(t, m, "toggle m1")
	m = press(t, m, "enter")
	if !m.Current.Tasks[0].Completed {
		t.Fatal("expected m1 toggled from palette")
	}

	m = press(t, m, "/")
	m = press(t, m, "theme neon")
	m = press(t, m, "enter")
	if !m.Status.IsError || m.Theme.Name != "blue" {
		t.Fatalf("expected unknown theme error, got %+v", m.Status)
	}

	m = press(t, m, "/")
	m = press(t, m, "view month")
	m = press(t, m, "enter")
	if m.ChartViewMode() != "Month" {
		t.Fatalf("expected Month, got %q", m.ChartViewMode())
	}

	m = press(t, m, "/")
	m = press(t, m, "all")
	m = press(t, m, "enter")
	if m.Current != nil || m.Screen != ScreenOverview {
		t.Fatalf("expected overview, got %q", m.Screen)
	}

	m = press(t, m, "/")
	m = press(t, m, "bogus")
	m = press(t, m, "enter")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "unknown_command") {
		t.Fatalf("expected unknown command error, got %+v", m.Status)
	}
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(t, newFakeAPI(), newClock())
	updated, cmd := m.Update(keyMsg("q"))
	if !updated.(Model).Quitting {
		t.Fatal("expected quitting")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestStatusAndErrorMessages(t *testing.T) {
	m := newTestModel(t, newFakeAPI(), newClock())
	updated, _ := m.Update(SetStatusMsg{Text: "ready"})
	next := updated.(Model)
	if next.Status.Text != "ready" || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}
	updated, _ = next.Update(AppErrorMsg{Err: errors.New("boom")})
	next = updated.(Model)
	if next.LastError == nil || !next.Status.IsError || next.Status.Text != "boom" {
		t.Fatalf("unexpected error status: %+v", next.Status)
	}
	updated, _ = next.Update(ClearStatusMsg{})
	if updated.(Model).Status.Text != "" {
		t.Fatal("expected cleared status")
	}
}
