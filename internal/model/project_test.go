package model

import (
	"errors"
	"testing"
)

func sampleProject() Project {
	return Project{
		ID:      "website",
		Name:    "Website relaunch",
		Status:  ProjectStatusActive,
		Created: "2026-01-05T10:30:00",
		Tasks: []Task{
			{ID: "design", Name: "Design", Start: "2026-01-06", End: "2026-01-09", Completed: true},
			{ID: "build", Name: "Build", Start: "2026-01-10", End: "2026-01-20", Dependencies: []string{"design"}},
		},
	}
}

func TestProjectValidate(t *testing.T) {
	p := sampleProject()
	if err := p.Validate(); err != nil {
		t.Fatalf("expected valid project, got: %v", err)
	}

	p.Status = ProjectStatus("archived")
	if err := p.Validate(); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got: %v", err)
	}

	p = sampleProject()
	p.Tasks[1].Dependencies = []string{"missing"}
	if err := p.Validate(); err == nil {
		t.Fatal("expected unknown dependency error")
	}

	p = sampleProject()
	p.Tasks[1].ID = "design"
	p.Tasks[1].Dependencies = nil
	if err := p.Validate(); err == nil {
		t.Fatal("expected duplicate task id error")
	}
}

func TestProjectSummaryCreatedAt(t *testing.T) {
	p := sampleProject()
	ts, ok := p.Summary().CreatedAt()
	if !ok {
		t.Fatal("expected zoneless timestamp to parse")
	}
	if ts.Format(DateLayout) != "2026-01-05" {
		t.Fatalf("unexpected created date: %s", ts)
	}

	if _, ok := (ProjectSummary{Created: "yesterday"}).CreatedAt(); ok {
		t.Fatal("expected unparsable timestamp to fail")
	}
}

func TestProjectCompletedCount(t *testing.T) {
	if got := sampleProject().CompletedCount(); got != 1 {
		t.Fatalf("expected 1 completed task, got %d", got)
	}
}

func TestTimeLogMinutesByTask(t *testing.T) {
	log := TimeLog{Sessions: []TimeSession{
		{TaskID: "a", Duration: 10},
		{TaskID: "b", Duration: 5},
		{TaskID: "a", Duration: 7},
	}}
	got := log.MinutesByTask()
	if got["a"] != 17 || got["b"] != 5 {
		t.Fatalf("unexpected totals: %#v", got)
	}
}
