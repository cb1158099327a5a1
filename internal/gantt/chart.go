package gantt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	ErrUnknownViewMode = errors.New("gantt: unknown view mode")
	ErrNoSelection     = errors.New("gantt: no task selected")
	ErrInvalidDates    = errors.New("gantt: invalid task dates")
)

type ViewMode string

const (
	QuarterDay ViewMode = "Quarter Day"
	HalfDay    ViewMode = "Half Day"
	Day        ViewMode = "Day"
	Week       ViewMode = "Week"
	Month      ViewMode = "Month"
)

// AllViewModes lists every supported mode from finest to coarsest.
var AllViewModes = []ViewMode{QuarterDay, HalfDay, Day, Week, Month}

const (
	maxColumns    = 180
	maxLabelWidth = 24
)

// Task is one bar of the chart. Progress is a percentage.
type Task struct {
	ID           string
	Name         string
	Start        string
	End          string
	Progress     int
	Dependencies []string
}

// Options is the chart configuration block. Step is the length of a Day
// column in hours; the other modes derive from it.
type Options struct {
	HeaderHeight int
	ColumnWidth  int
	Step         int
	ViewModes    []ViewMode
	BarHeight    int
	Padding      int
	DateFormat   string
	ViewMode     ViewMode

	OnClick      func(Task)
	OnDateChange func(task Task, start, end time.Time)
}

func DefaultOptions() Options {
	return Options{
		HeaderHeight: 2,
		ColumnWidth:  3,
		Step:         24,
		ViewModes:    append([]ViewMode(nil), AllViewModes...),
		BarHeight:    1,
		Padding:      1,
		DateFormat:   "2006-01-02",
		ViewMode:     Day,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.HeaderHeight <= 0 {
		o.HeaderHeight = d.HeaderHeight
	}
	if o.ColumnWidth <= 0 {
		o.ColumnWidth = d.ColumnWidth
	}
	if o.Step <= 0 {
		o.Step = d.Step
	}
	if len(o.ViewModes) == 0 {
		o.ViewModes = d.ViewModes
	}
	if o.BarHeight <= 0 {
		o.BarHeight = d.BarHeight
	}
	if o.Padding < 0 {
		o.Padding = d.Padding
	}
	if o.DateFormat == "" {
		o.DateFormat = d.DateFormat
	}
	if !hasMode(o.ViewModes, o.ViewMode) {
		o.ViewMode = o.ViewModes[0]
		if hasMode(o.ViewModes, Day) {
			o.ViewMode = Day
		}
	}
	return o
}

// Style holds the lipgloss styles the chart renders with.
type Style struct {
	Header   lipgloss.Style
	Label    lipgloss.Style
	Bar      lipgloss.Style
	BarDone  lipgloss.Style
	Selected lipgloss.Style
	Muted    lipgloss.Style
}

func PlainStyle() Style {
	plain := lipgloss.NewStyle()
	return Style{Header: plain, Label: plain, Bar: plain, BarDone: plain, Selected: plain, Muted: plain}
}

type Chart struct {
	tasks    []Task
	opts     Options
	selected int
}

func New(tasks []Task, opts Options) *Chart {
	c := &Chart{
		tasks:    append([]Task(nil), tasks...),
		opts:     opts.withDefaults(),
		selected: -1,
	}
	if len(c.tasks) > 0 {
		c.selected = 0
	}
	return c
}

func (c *Chart) Tasks() []Task {
	return append([]Task(nil), c.tasks...)
}

func (c *Chart) Options() Options {
	return c.opts
}

func (c *Chart) ViewMode() ViewMode {
	return c.opts.ViewMode
}

func (c *Chart) SetViewMode(mode ViewMode) error {
	if !hasMode(c.opts.ViewModes, mode) {
		return fmt.Errorf("%w: %q", ErrUnknownViewMode, mode)
	}
	c.opts.ViewMode = mode
	return nil
}

// NextViewMode advances to the next configured mode, wrapping around.
func (c *Chart) NextViewMode() ViewMode {
	idx := 0
	for i, mode := range c.opts.ViewModes {
		if mode == c.opts.ViewMode {
			idx = i
			break
		}
	}
	c.opts.ViewMode = c.opts.ViewModes[(idx+1)%len(c.opts.ViewModes)]
	return c.opts.ViewMode
}

func (c *Chart) Select(idx int) bool {
	if idx < 0 || idx >= len(c.tasks) {
		return false
	}
	c.selected = idx
	return true
}

func (c *Chart) SelectID(id string) bool {
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			c.selected = i
			return true
		}
	}
	return false
}

// MoveSelection moves the selected row by delta, clamped to the task list.
func (c *Chart) MoveSelection(delta int) {
	if len(c.tasks) == 0 {
		return
	}
	c.selected = clamp(c.selected+delta, 0, len(c.tasks)-1)
}

func (c *Chart) Selected() (Task, bool) {
	if c.selected < 0 || c.selected >= len(c.tasks) {
		return Task{}, false
	}
	return c.tasks[c.selected], true
}

// Click fires OnClick for the selected bar.
func (c *Chart) Click() (Task, bool) {
	task, ok := c.Selected()
	if ok && c.opts.OnClick != nil {
		c.opts.OnClick(task)
	}
	return task, ok
}

// Shift moves the selected bar by the given number of columns and fires
// OnDateChange. Sub-day columns move by whole days.
func (c *Chart) Shift(columns int) error {
	task, ok := c.Selected()
	if !ok {
		return ErrNoSelection
	}
	start, end, ok := c.span(task)
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidDates, task.ID)
	}
	days := int(c.columnDuration() / (24 * time.Hour))
	if days < 1 {
		days = 1
	}
	start = start.AddDate(0, 0, days*columns)
	end = end.AddDate(0, 0, days*columns)
	c.tasks[c.selected].Start = start.Format(c.opts.DateFormat)
	c.tasks[c.selected].End = end.Format(c.opts.DateFormat)
	if c.opts.OnDateChange != nil {
		c.opts.OnDateChange(c.tasks[c.selected], start, end)
	}
	return nil
}

// ColumnDuration reports the time covered by one column in the given mode.
func ColumnDuration(mode ViewMode, step int) time.Duration {
	unit := time.Duration(step) * time.Hour
	switch mode {
	case QuarterDay:
		return unit / 4
	case HalfDay:
		return unit / 2
	case Week:
		return unit * 7
	case Month:
		return unit * 30
	default:
		return unit
	}
}

func (c *Chart) columnDuration() time.Duration {
	return ColumnDuration(c.opts.ViewMode, c.opts.Step)
}

func (c *Chart) span(t Task) (time.Time, time.Time, bool) {
	start, err := c.parseDate(t.Start)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := c.parseDate(t.End)
	if err != nil || end.Before(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func (c *Chart) parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if ts, err := time.Parse(c.opts.DateFormat, raw); err == nil {
		return ts, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
}

type bounds struct {
	start time.Time
	end   time.Time
	ok    bool
}

// View renders the header and one row per task.
func (c *Chart) View(style Style) string {
	if len(c.tasks) == 0 {
		return style.Muted.Render("No tasks to chart")
	}

	spans := make([]bounds, len(c.tasks))
	var origin, last time.Time
	for i, t := range c.tasks {
		start, end, ok := c.span(t)
		if !ok {
			continue
		}
		// Task end dates are inclusive.
		end = end.Add(24 * time.Hour)
		spans[i] = bounds{start: start, end: end, ok: true}
		if origin.IsZero() || start.Before(origin) {
			origin = start
		}
		if end.After(last) {
			last = end
		}
	}

	colDur := c.columnDuration()
	cols := 0
	if !origin.IsZero() {
		cols = int((last.Sub(origin) + colDur - 1) / colDur)
		cols = clamp(cols, 1, maxColumns)
	}

	labelWidth := c.labelWidth()
	indent := strings.Repeat(" ", 2+labelWidth+c.opts.Padding)
	gap := strings.Repeat(" ", c.opts.Padding)

	lines := make([]string, 0, c.opts.HeaderHeight+len(c.tasks)*c.opts.BarHeight)
	if cols > 0 {
		lines = append(lines, c.header(origin, cols, indent, style)...)
	}

	for i, t := range c.tasks {
		marker := "  "
		labelStyle := style.Label
		if i == c.selected {
			marker = "> "
			labelStyle = style.Selected
		}
		label := labelStyle.Render(marker + pad(truncate(t.Name, labelWidth), labelWidth))

		var bar string
		if spans[i].ok {
			from := int(spans[i].start.Sub(origin) / colDur)
			to := int((spans[i].end.Sub(origin) - 1) / colDur)
			bar = c.renderBar(t.Progress, clamp(from, 0, cols-1), clamp(to, 0, cols-1), cols, style)
		} else {
			bar = style.Muted.Render("(invalid dates)")
		}
		deps := ""
		if len(t.Dependencies) > 0 {
			deps = style.Muted.Render(" <- " + strings.Join(t.Dependencies, ", "))
		}

		lines = append(lines, label+gap+bar+deps)
		blankLabel := strings.Repeat(" ", 2+labelWidth)
		for extra := 1; extra < c.opts.BarHeight; extra++ {
			if spans[i].ok {
				lines = append(lines, blankLabel+gap+bar)
			} else {
				lines = append(lines, "")
			}
		}
	}
	return strings.Join(lines, "\n")
}

func (c *Chart) header(origin time.Time, cols int, indent string, style Style) []string {
	width := c.opts.ColumnWidth
	colDur := c.columnDuration()
	upper := []rune(strings.Repeat(" ", cols*width))
	var lower strings.Builder
	nextFree := 0
	prevUpper := ""
	for col := 0; col < cols; col++ {
		ts := origin.Add(time.Duration(col) * colDur)
		upperLabel, lowerLabel := c.columnLabels(ts)
		if upperLabel != prevUpper && col*width >= nextFree {
			for i, r := range []rune(upperLabel) {
				if col*width+i < len(upper) {
					upper[col*width+i] = r
				}
			}
			nextFree = col*width + len([]rune(upperLabel)) + 1
			prevUpper = upperLabel
		}
		lower.WriteString(pad(truncate(lowerLabel, width-1), width))
	}

	rows := []string{style.Header.Render(indent + strings.TrimRight(lower.String(), " "))}
	if c.opts.HeaderHeight >= 2 {
		rows = append([]string{style.Header.Render(indent + strings.TrimRight(string(upper), " "))}, rows...)
		for extra := 2; extra < c.opts.HeaderHeight; extra++ {
			rows = append(rows, "")
		}
	}
	return rows
}

func (c *Chart) columnLabels(ts time.Time) (string, string) {
	switch c.opts.ViewMode {
	case QuarterDay, HalfDay:
		return ts.Format("Jan 02"), fmt.Sprintf("%02d", ts.Hour())
	case Week:
		return ts.Format("Jan 2006"), fmt.Sprintf("%02d", ts.Day())
	case Month:
		return ts.Format("2006"), fmt.Sprintf("%02d", int(ts.Month()))
	default:
		return ts.Format("Jan 2006"), fmt.Sprintf("%02d", ts.Day())
	}
}

func (c *Chart) renderBar(progress, from, to, cols int, style Style) string {
	width := c.opts.ColumnWidth
	cells := (to - from + 1) * width
	done := cells * clamp(progress, 0, 100) / 100

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", from*width))
	if done > 0 {
		b.WriteString(style.BarDone.Render(strings.Repeat("█", done)))
	}
	if cells-done > 0 {
		b.WriteString(style.Bar.Render(strings.Repeat("░", cells-done)))
	}
	b.WriteString(strings.Repeat(" ", (cols-1-to)*width))
	return b.String()
}

func (c *Chart) labelWidth() int {
	width := 4
	for _, t := range c.tasks {
		if n := len([]rune(t.Name)); n > width {
			width = n
		}
	}
	if width > maxLabelWidth {
		width = maxLabelWidth
	}
	return width
}

func hasMode(modes []ViewMode, mode ViewMode) bool {
	for _, m := range modes {
		if m == mode {
			return true
		}
	}
	return false
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}

func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
