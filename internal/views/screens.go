package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	NoTasksAvailable = "No tasks available"
	SelectAProject   = "Select a project to see tasks and start timers"
	NoProjectTasks   = "No tasks in this project"
	cardsPerRow      = 2
	cardWidth        = 26
)

const emptyStateMarkdown = `## No Projects Yet

Import an existing data directory to create your first project:

    pmboard import ./data

Then press **r** to refresh.`

type ProjectCardData struct {
	Name     string
	Status   string
	Created  string
	Selected bool
}

type TaskItemData struct {
	Name      string
	Completed bool
	TimeSpent string
	Selected  bool
	Timing    bool
}

type TaskListData struct {
	Items   []TaskItemData
	Message string
}

type ProjectHeaderData struct {
	Name         string
	Status       string
	Completed    int
	Total        int
	ProgressView string
	ViewMode     string
}

type TimerPanelData struct {
	TaskName string
	Elapsed  string
	Spinner  string
}

type HelpPanelData struct {
	Bindings []string
	HelpView string
}

// RenderEmptyState renders the onboarding text shown for an empty roster.
func RenderEmptyState() string {
	return RenderMarkdown(emptyStateMarkdown)
}

// RenderProjectCards lays the roster out as a grid of cards.
func RenderProjectCards(cards []ProjectCardData, theme Theme) string {
	if len(cards) == 0 {
		return RenderEmptyState()
	}
	rows := make([]string, 0, (len(cards)+cardsPerRow-1)/cardsPerRow)
	for start := 0; start < len(cards); start += cardsPerRow {
		end := start + cardsPerRow
		if end > len(cards) {
			end = len(cards)
		}
		rendered := make([]string, 0, end-start)
		for _, card := range cards[start:end] {
			rendered = append(rendered, renderCard(card, theme))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	}
	return "All Projects Overview\n" + strings.Join(rows, "\n")
}

func renderCard(card ProjectCardData, theme Theme) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cardWidth).
		Padding(0, 1)
	if card.Selected {
		style = style.BorderForeground(theme.Accent)
	}
	body := strings.Join([]string{
		lipgloss.NewStyle().Bold(true).Render(card.Name),
		theme.statusBadge(card.Status).Render(card.Status),
		theme.muted().Render("Created: " + card.Created),
	}, "\n")
	return style.Render(body)
}

func RenderProjectHeader(data ProjectHeaderData) string {
	var b strings.Builder
	b.WriteString(data.Name)
	if data.Status != "" {
		b.WriteString(fmt.Sprintf(" [%s]", data.Status))
	}
	b.WriteString(fmt.Sprintf("\n%s %d/%d done", data.ProgressView, data.Completed, data.Total))
	if data.ViewMode != "" {
		b.WriteString(fmt.Sprintf(" | view: %s", data.ViewMode))
	}
	return b.String()
}

// RenderTaskList renders the checklist, or the message when it has no items.
func RenderTaskList(data TaskListData, theme Theme) string {
	if len(data.Items) == 0 {
		return theme.muted().Render(data.Message)
	}
	var b strings.Builder
	b.WriteString("tasks:\n")
	for _, item := range data.Items {
		cursor := " "
		if item.Selected {
			cursor = ">"
		}
		box := "[ ]"
		if item.Completed {
			box = "[x]"
		}
		name := item.Name
		if item.Completed {
			name = theme.muted().Strikethrough(true).Render(name)
		}
		timer := "[s] start"
		if item.Timing {
			timer = "timing"
		}
		b.WriteString(fmt.Sprintf("%s %s %s  %s %s\n", cursor, box, name, theme.muted().Render(timer), item.TimeSpent))
	}
	b.WriteString("actions: [j/k]move [space]toggle [s]start [S]stop")
	return b.String()
}

func RenderTimerPanel(data TimerPanelData) string {
	return fmt.Sprintf("%s timing: %s | %s | [S] stop", data.Spinner, data.TaskName, data.Elapsed)
}

func RenderSelector(options []string, selected int) string {
	if len(options) == 0 {
		return ""
	}
	if selected < 0 || selected >= len(options) {
		selected = 0
	}
	return fmt.Sprintf("project: [ %s ] (%d/%d)  [/] switch", options[selected], selected+1, len(options))
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return "command palette:\n" + inputView + "\nhint: project <id> | toggle <id> | start <id> | stop | theme <name> | refresh | all"
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s\n%s", strings.Join(data.Bindings, "\n"), data.HelpView)
}
