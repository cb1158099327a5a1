package update

import (
	"fmt"
	"math"

	"github.com/sandeepkv93/pmboard/internal/model"
)

// FormatTime renders a minute count using its two coarsest units:
// "2h 5m", "1m 30s" or "45s". Units are floored.
func FormatTime(minutes float64) string {
	if minutes <= 0 || math.IsNaN(minutes) {
		return "0s"
	}
	hours := math.Floor(minutes / 60)
	mins := math.Floor(math.Mod(minutes, 60))
	secs := math.Floor(math.Mod(minutes, 1) * 60)
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", int(hours), int(mins))
	case mins > 0:
		return fmt.Sprintf("%dm %ds", int(mins), int(secs))
	default:
		return fmt.Sprintf("%ds", int(secs))
	}
}

func levelFromError(isErr bool) string {
	if isErr {
		return "error"
	}
	return "info"
}

func createdDate(p model.ProjectSummary) string {
	if ts, ok := p.CreatedAt(); ok {
		return ts.Format(model.DateLayout)
	}
	return p.Created
}

func cloneProject(p *model.Project) *model.Project {
	if p == nil {
		return nil
	}
	out := *p
	out.Tasks = make([]model.Task, len(p.Tasks))
	for i, t := range p.Tasks {
		t.Dependencies = append([]string(nil), t.Dependencies...)
		out.Tasks[i] = t
	}
	return &out
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
