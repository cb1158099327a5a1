package views

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sandeepkv93/pmboard/internal/gantt"
)

const DefaultTheme = "blue"

// Theme is a named colour palette.
type Theme struct {
	Name   string
	Accent lipgloss.Color
	Soft   lipgloss.Color
	Text   lipgloss.Color
	Muted  lipgloss.Color
	Done   lipgloss.Color
	Error  lipgloss.Color
	Border lipgloss.Color
}

var themes = []Theme{
	{
		Name:   "blue",
		Accent: lipgloss.Color("#3b82f6"),
		Soft:   lipgloss.Color("#93c5fd"),
		Text:   lipgloss.Color("#e2e8f0"),
		Muted:  lipgloss.Color("#94a3b8"),
		Done:   lipgloss.Color("#22c55e"),
		Error:  lipgloss.Color("#ef4444"),
		Border: lipgloss.Color("#1d4ed8"),
	},
	{
		Name:   "green",
		Accent: lipgloss.Color("#10b981"),
		Soft:   lipgloss.Color("#6ee7b7"),
		Text:   lipgloss.Color("#ecfdf5"),
		Muted:  lipgloss.Color("#9ca3af"),
		Done:   lipgloss.Color("#34d399"),
		Error:  lipgloss.Color("#f87171"),
		Border: lipgloss.Color("#047857"),
	},
	{
		Name:   "purple",
		Accent: lipgloss.Color("#8b5cf6"),
		Soft:   lipgloss.Color("#c4b5fd"),
		Text:   lipgloss.Color("#f5f3ff"),
		Muted:  lipgloss.Color("#a1a1aa"),
		Done:   lipgloss.Color("#a3e635"),
		Error:  lipgloss.Color("#fb7185"),
		Border: lipgloss.Color("#6d28d9"),
	},
	{
		Name:   "orange",
		Accent: lipgloss.Color("#f97316"),
		Soft:   lipgloss.Color("#fdba74"),
		Text:   lipgloss.Color("#fff7ed"),
		Muted:  lipgloss.Color("#a8a29e"),
		Done:   lipgloss.Color("#84cc16"),
		Error:  lipgloss.Color("#dc2626"),
		Border: lipgloss.Color("#c2410c"),
	},
	{
		Name:   "dark",
		Accent: lipgloss.Color("#cdd6f4"),
		Soft:   lipgloss.Color("#a6adc8"),
		Text:   lipgloss.Color("#cdd6f4"),
		Muted:  lipgloss.Color("#6c7086"),
		Done:   lipgloss.Color("#a6e3a1"),
		Error:  lipgloss.Color("#f38ba8"),
		Border: lipgloss.Color("#45475a"),
	},
}

// ThemeNames returns the selectable theme names in cycle order.
func ThemeNames() []string {
	out := make([]string, 0, len(themes))
	for _, t := range themes {
		out = append(out, t.Name)
	}
	return out
}

func LookupTheme(name string) (Theme, bool) {
	for _, t := range themes {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// NextTheme returns the theme after name, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range themes {
		if t.Name == name {
			return themes[(i+1)%len(themes)]
		}
	}
	return themes[0]
}

func (t Theme) ChartStyle() gantt.Style {
	return gantt.Style{
		Header:   lipgloss.NewStyle().Foreground(t.Muted),
		Label:    lipgloss.NewStyle().Foreground(t.Text),
		Bar:      lipgloss.NewStyle().Foreground(t.Soft),
		BarDone:  lipgloss.NewStyle().Foreground(t.Done),
		Selected: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(t.Muted),
	}
}

func (t Theme) header() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
}

func (t Theme) panel() lipgloss.Style {
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1)
}

func (t Theme) muted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Muted)
}

func (t Theme) status() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Done)
}

func (t Theme) errorText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error)
}

func (t Theme) statusBadge(status string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch status {
	case "active":
		return base.Foreground(t.Accent)
	case "completed":
		return base.Foreground(t.Done)
	case "on-hold":
		return base.Foreground(t.Error)
	default:
		return base.Foreground(t.Muted)
	}
}
