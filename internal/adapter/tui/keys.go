package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Toggle      key.Binding
	Add         key.Binding
	Edit        key.Binding
	Delete      key.Binding
	Suggest     key.Binding
	Refresh     key.Binding
	Logout      key.Binding
	Quit        key.Binding
	ForceQuit   key.Binding
	Submit      key.Binding
	Cancel      key.Binding
	NextField   key.Binding
	PrevField   key.Binding
	Confirm     key.Binding
	ToggleCheck key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:      key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "done")),
		Add:         key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:        key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Suggest:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "suggest")),
		Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Logout:      key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
		Quit:        key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:   key.NewBinding(key.WithKeys("ctrl+c")),
		Submit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		NextField:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		PrevField:   key.NewBinding(key.WithKeys("shift+tab", "up")),
		Confirm:     key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "confirm")),
		ToggleCheck: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Edit, k.Delete, k.Suggest, k.Refresh, k.Logout, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle},
		{k.Add, k.Edit, k.Delete},
		{k.Suggest, k.Refresh, k.Logout, k.Quit},
	}
}
