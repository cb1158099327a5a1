package update

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/pmboard/internal/gantt"
	"github.com/sandeepkv93/pmboard/internal/model"
	"github.com/sandeepkv93/pmboard/internal/views"
)

const (
	AlertProjectNotFound = "Project not found"
	AlertTimerRunning    = "Stop the current timer first"
	AllProjectsOption    = "All Projects"

	DefaultThemeRerenderDelay = 100 * time.Millisecond
	defaultRequestTimeout     = 10 * time.Second
)

// ProjectAPI is the REST backend the controller talks to.
type ProjectAPI interface {
	ListProjects(ctx context.Context) ([]model.ProjectSummary, error)
	GetProject(ctx context.Context, id string) (model.Project, error)
	ToggleTask(ctx context.Context, projectID, taskID string) error
	LogTime(ctx context.Context, projectID, taskID string, entry model.TimeEntry) error
}

type Screen string

const (
	ScreenInitial  Screen = "initial"
	ScreenEmpty    Screen = "empty"
	ScreenOverview Screen = "overview"
	ScreenProject  Screen = "project"
)

type StatusBar struct {
	Text    string
	IsError bool
}

// Timer is the single in-flight time tracking session.
type Timer struct {
	TaskID    string
	TaskName  string
	ProjectID string
	StartedAt time.Time
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type KeyMap struct {
	Refresh     string
	PrevProject string
	NextProject string
	Toggle      string
	Start       string
	Stop        string
	Theme       string
	ViewMode    string
	Help        string
	Quit        string
}

type Options struct {
	API                ProjectAPI
	Logger             *slog.Logger
	StatePath          string
	DefaultTheme       string
	ThemeRerenderDelay time.Duration
	RequestTimeout     time.Duration
	Now                func() time.Time
}

type Model struct {
	Screen         Screen
	Projects       []model.ProjectSummary
	ProjectsLoaded bool
	Current        *model.Project
	SelectorIndex  int
	CardCursor     int
	TaskCursor     int
	Timer          *Timer
	Elapsed        time.Duration
	Theme          views.Theme
	Alert          string
	Status         StatusBar
	Palette        CommandPaletteState
	HelpVisible    bool
	Keys           KeyMap
	Quitting       bool
	LastError      error

	api            ProjectAPI
	log            *slog.Logger
	now            func() time.Time
	requestTimeout time.Duration
	statePath      string
	rerenderDelay  time.Duration

	rosterSeq    int
	loadSeq      int
	themeSeq     int
	timerGen     int
	inFlight     int
	spinning     bool
	chart        *gantt.Chart
	chartMode    gantt.ViewMode
	chartRenders int

	commandInput  textinput.Model
	loadSpinner   spinner.Model
	helpModel     help.Model
	chartViewport viewport.Model
	progressBar   progress.Model
}

type ProjectsLoadedMsg struct {
	Seq      int
	Projects []model.ProjectSummary
	Err      error
}

type ProjectLoadedMsg struct {
	Seq     int
	ID      string
	Project model.Project
	Err     error
}

type TaskToggledMsg struct {
	ProjectID string
	TaskID    string
	Err       error
}

type TimeLoggedMsg struct {
	ProjectID string
	TaskID    string
	Minutes   int
	Err       error
}

type TimerTickMsg struct {
	Gen int
	At  time.Time
}

type ThemeRerenderMsg struct {
	Seq int
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

func NewModel(opts Options) Model {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	delay := opts.ThemeRerenderDelay
	if delay <= 0 {
		delay = DefaultThemeRerenderDelay
	}

	m := Model{
		Screen: ScreenInitial,
		Keys: KeyMap{
			Refresh:     "r",
			PrevProject: "[",
			NextProject: "]",
			Toggle:      " ",
			Start:       "s",
			Stop:        "S",
			Theme:       "t",
			ViewMode:    "v",
			Help:        "?",
			Quit:        "q",
		},
		api:            opts.API,
		log:            log,
		now:            now,
		requestTimeout: timeout,
		statePath:      strings.TrimSpace(opts.StatePath),
		rerenderDelay:  delay,
		chartMode:      gantt.Day,
	}
	m.Theme = m.initialTheme(opts.DefaultTheme)
	m.initBubbleComponents()
	return m
}

func (m *Model) initBubbleComponents() {
	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.loadSpinner = spinner.New()
	m.loadSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
	m.chartViewport = viewport.New(62, 16)
	m.progressBar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(24))
}

// initialTheme applies the persisted theme, falling back to the default.
func (m *Model) initialTheme(fallback string) views.Theme {
	if strings.TrimSpace(fallback) == "" {
		fallback = views.DefaultTheme
	}
	name := fallback
	state, err := loadUIState(m.statePath)
	if err != nil {
		m.log.Warn("read ui state failed", slog.String("path", m.statePath), slog.String("error", err.Error()))
	} else if state.Theme != "" {
		name = state.Theme
	}
	if theme, ok := views.LookupTheme(name); ok {
		return theme
	}
	m.log.Warn("unknown theme, using default", slog.String("theme", name))
	if theme, ok := views.LookupTheme(fallback); ok {
		return theme
	}
	theme, _ := views.LookupTheme(views.DefaultTheme)
	return theme
}

// ChartTasks returns the tasks of the rendered chart, nil when none is shown.
func (m Model) ChartTasks() []gantt.Task {
	if m.chart == nil {
		return nil
	}
	return m.chart.Tasks()
}

// ChartRenders counts how many times the chart has been instantiated.
func (m Model) ChartRenders() int {
	return m.chartRenders
}

func (m Model) ChartViewMode() gantt.ViewMode {
	return m.chartMode
}

func (m Model) InFlight() int {
	return m.inFlight
}

