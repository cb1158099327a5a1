package gantt

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func sampleTasks() []Task {
	return []Task{
		{ID: "design", Name: "Design", Start: "2026-01-06", End: "2026-01-07", Progress: 100},
		{ID: "build", Name: "Build", Start: "2026-01-08", End: "2026-01-08", Dependencies: []string{"design"}},
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.HeaderHeight != 2 || opts.ColumnWidth != 3 || opts.Step != 24 {
		t.Fatalf("unexpected geometry: %+v", opts)
	}
	if opts.BarHeight != 1 || opts.Padding != 1 || opts.DateFormat != "2006-01-02" {
		t.Fatalf("unexpected bar config: %+v", opts)
	}
	if opts.ViewMode != Day || len(opts.ViewModes) != 5 {
		t.Fatalf("unexpected view modes: %+v", opts)
	}
}

func TestColumnDuration(t *testing.T) {
	cases := map[ViewMode]time.Duration{
		QuarterDay: 6 * time.Hour,
		HalfDay:    12 * time.Hour,
		Day:        24 * time.Hour,
		Week:       7 * 24 * time.Hour,
		Month:      30 * 24 * time.Hour,
	}
	for mode, want := range cases {
		if got := ColumnDuration(mode, 24); got != want {
			t.Fatalf("%s: expected %s, got %s", mode, want, got)
		}
	}
}

func TestViewRendersBarsByProgress(t *testing.T) {
	chart := New(sampleTasks(), DefaultOptions())
	out := chart.View(PlainStyle())
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 2 header rows and 2 task rows, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "Jan 2026") {
		t.Fatalf("expected month header, got %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "06 07 08") {
		t.Fatalf("expected day columns, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "> Design") || !strings.Contains(lines[2], "██████") {
		t.Fatalf("expected selected completed bar, got %q", lines[2])
	}
	if strings.Contains(lines[2], "░") {
		t.Fatalf("completed bar should be filled, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "      ░░░") {
		t.Fatalf("expected hollow bar in third column, got %q", lines[3])
	}
	if !strings.Contains(lines[3], "<- design") {
		t.Fatalf("expected dependency marker, got %q", lines[3])
	}
}

func TestViewInvalidDates(t *testing.T) {
	tasks := append(sampleTasks(), Task{ID: "bad", Name: "Broken", Start: "soon", End: "later"})
	out := New(tasks, DefaultOptions()).View(PlainStyle())
	if !strings.Contains(out, "Broken") || !strings.Contains(out, "(invalid dates)") {
		t.Fatalf("expected invalid dates row, got:\n%s", out)
	}

	out = New([]Task{{ID: "bad", Name: "Broken", Start: "2026-02-10", End: "2026-02-01"}}, DefaultOptions()).View(PlainStyle())
	if !strings.Contains(out, "(invalid dates)") {
		t.Fatalf("expected reversed dates to be invalid, got:\n%s", out)
	}
}

func TestViewEmpty(t *testing.T) {
	if out := New(nil, DefaultOptions()).View(PlainStyle()); out != "No tasks to chart" {
		t.Fatalf("unexpected empty chart: %q", out)
	}
}

func TestViewModeCycling(t *testing.T) {
	chart := New(sampleTasks(), DefaultOptions())
	want := []ViewMode{Week, Month, QuarterDay, HalfDay, Day}
	for _, mode := range want {
		if got := chart.NextViewMode(); got != mode {
			t.Fatalf("expected %s, got %s", mode, got)
		}
	}
	if err := chart.SetViewMode(ViewMode("Year")); !errors.Is(err, ErrUnknownViewMode) {
		t.Fatalf("expected ErrUnknownViewMode, got %v", err)
	}
	if err := chart.SetViewMode(HalfDay); err != nil {
		t.Fatalf("set half day: %v", err)
	}
	out := chart.View(PlainStyle())
	if !strings.Contains(out, "00 12") {
		t.Fatalf("expected hour columns in half day mode, got:\n%s", out)
	}
}

func TestClickFiresCallbackForSelectedTask(t *testing.T) {
	var clicked string
	opts := DefaultOptions()
	opts.OnClick = func(task Task) { clicked = task.ID }
	chart := New(sampleTasks(), opts)
	chart.MoveSelection(1)
	if _, ok := chart.Click(); !ok {
		t.Fatal("expected a selected task")
	}
	if clicked != "build" {
		t.Fatalf("expected build to be clicked, got %q", clicked)
	}
	chart.MoveSelection(5)
	if task, _ := chart.Selected(); task.ID != "build" {
		t.Fatalf("selection should clamp, got %q", task.ID)
	}
}

func TestShiftMovesSelectedBar(t *testing.T) {
	var gotStart, gotEnd time.Time
	calls := 0
	opts := DefaultOptions()
	opts.OnDateChange = func(task Task, start, end time.Time) {
		calls++
		gotStart, gotEnd = start, end
	}
	chart := New(sampleTasks(), opts)
	if err := chart.Shift(2); err != nil {
		t.Fatalf("shift: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one date change callback, got %d", calls)
	}
	if gotStart.Format("2006-01-02") != "2026-01-08" || gotEnd.Format("2006-01-02") != "2026-01-09" {
		t.Fatalf("unexpected shifted span %s..%s", gotStart, gotEnd)
	}
	task, _ := chart.Selected()
	if task.Start != "2026-01-08" || task.End != "2026-01-09" {
		t.Fatalf("task dates not updated: %+v", task)
	}

	if err := chart.SetViewMode(Week); err != nil {
		t.Fatal(err)
	}
	if err := chart.Shift(-1); err != nil {
		t.Fatalf("shift week: %v", err)
	}
	task, _ = chart.Selected()
	if task.Start != "2026-01-01" {
		t.Fatalf("expected week shift back to 2026-01-01, got %s", task.Start)
	}
}

func TestShiftWithoutSelection(t *testing.T) {
	if err := New(nil, DefaultOptions()).Shift(1); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
}
