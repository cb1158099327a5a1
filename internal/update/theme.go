package update

import (
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/pmboard/internal/views"
)

func themeRerenderCmd(delay time.Duration, seq int) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg { return ThemeRerenderMsg{Seq: seq} })
}

// changeTheme applies and persists a theme. A rendered chart is redrawn
// after the re-render delay.
func (m Model) changeTheme(name string) (Model, tea.Cmd) {
	theme, ok := views.LookupTheme(name)
	if !ok {
		m.setStatus(fmt.Sprintf("unknown theme: %s", name), true)
		return m, nil
	}
	m.Theme = theme
	if err := saveUIState(m.statePath, uiState{Theme: theme.Name}); err != nil {
		m.log.Error("persist theme failed", slog.String("path", m.statePath), slog.String("error", err.Error()))
		m.setStatus(fmt.Sprintf("theme %s applied, save failed: %v", theme.Name, err), true)
	} else {
		m.setStatus(fmt.Sprintf("theme: %s", theme.Name), false)
	}
	if m.chart == nil || m.Current == nil {
		return m, nil
	}
	m.themeSeq++
	return m, themeRerenderCmd(m.rerenderDelay, m.themeSeq)
}

func (m Model) onThemeRerender(msg ThemeRerenderMsg) (Model, tea.Cmd) {
	if msg.Seq != m.themeSeq || m.Current == nil {
		return m, nil
	}
	m.renderGanttChart()
	return m, nil
}
