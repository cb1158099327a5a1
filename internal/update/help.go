package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/pmboard/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	var plain []string
	for _, kb := range m.screenBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	global := m.toKeyBindings(m.globalBindings())
	return views.RenderHelpPanel(views.HelpPanelData{
		Bindings: plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: global,
			full:  [][]key.Binding{global},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Refresh, Action: "refresh"},
		{Key: m.Keys.PrevProject + "/" + m.Keys.NextProject, Action: "project"},
		{Key: m.Keys.Stop, Action: "stop timer"},
		{Key: m.Keys.Theme, Action: "theme"},
		{Key: "/", Action: "command"},
		{Key: m.Keys.Help, Action: "help"},
		{Key: m.Keys.Quit, Action: "quit"},
	}
}

func (m Model) screenBindings() []KeyBinding {
	switch m.Screen {
	case ScreenOverview:
		return []KeyBinding{
			{Key: "j/k", Action: "move card cursor"},
			{Key: "enter", Action: "open project"},
		}
	case ScreenProject:
		return []KeyBinding{
			{Key: "j/k", Action: "move task cursor"},
			{Key: "space/x", Action: "toggle task"},
			{Key: m.Keys.Start, Action: "start timer on task"},
			{Key: m.Keys.ViewMode, Action: "cycle chart view mode"},
			{Key: "enter", Action: "select bar"},
			{Key: "</>", Action: "shift bar"},
			{Key: "pgup/pgdown", Action: "scroll chart"},
			{Key: "esc", Action: "back to all projects"},
		}
	default:
		return []KeyBinding{{Key: m.Keys.Refresh, Action: "reload projects"}}
	}
}

func (m Model) toKeyBindings(in []KeyBinding) []key.Binding {
	out := make([]key.Binding, 0, len(in))
	for _, kb := range in {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
