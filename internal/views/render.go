package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type AppData struct {
	Theme         Theme
	Header        string
	Selector      string
	MainPane      string
	SidePane      string
	TimerPanel    string
	StatusLine    string
	StatusIsError bool
	Overlay       string
	Alert         string
	Footer        string
}

const (
	mainPaneWidth = 64
	sidePaneWidth = 50
)

func RenderApp(data AppData) string {
	theme := data.Theme
	if theme.Name == "" {
		theme, _ = LookupTheme(DefaultTheme)
	}
	panel := theme.panel()

	main := panel.Width(mainPaneWidth).Render(data.MainPane)
	side := panel.Width(sidePaneWidth).Render(data.SidePane)
	row := lipgloss.JoinHorizontal(lipgloss.Top, main, side)

	lines := []string{theme.header().Render(data.Header)}
	if data.Selector != "" {
		lines = append(lines, data.Selector)
	}
	lines = append(lines, row)
	if data.TimerPanel != "" {
		lines = append(lines, panel.BorderForeground(theme.Accent).Render(data.TimerPanel))
	}
	if data.StatusLine != "" {
		if data.StatusIsError {
			lines = append(lines, theme.errorText().Render(data.StatusLine))
		} else {
			lines = append(lines, theme.status().Render(data.StatusLine))
		}
	}
	if data.Overlay != "" {
		lines = append(lines, panel.Render(data.Overlay))
	}
	if data.Alert != "" {
		lines = append(lines, RenderAlert(data.Alert, theme))
	}
	if data.Footer != "" {
		lines = append(lines, theme.muted().Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

// RenderAlert draws a blocking message box.
func RenderAlert(text string, theme Theme) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Error).
		Padding(0, 2).
		Bold(true)
	return box.Render(text + "\n\n" + theme.muted().Render("[enter] OK"))
}

func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
