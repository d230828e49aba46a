package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit     key.Binding
	NextPane key.Binding
	PrevPane key.Binding
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Enter    key.Binding
	Back     key.Binding
	Toggle   key.Binding

	New    key.Binding
	Save   key.Binding
	Delete key.Binding
	Search key.Binding
	Sort   key.Binding
	Parse  key.Binding
	Reload key.Binding

	AddList key.Binding
	AddTag  key.Binding
	Add     key.Binding
	Remove  key.Binding

	Confirm key.Binding
	Cancel  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		NextPane: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next pane")),
		PrevPane: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev pane")),
		Up:       key.NewBinding(key.WithKeys("up", "k")),
		Down:     key.NewBinding(key.WithKeys("down", "j")),
		Left:     key.NewBinding(key.WithKeys("left", "h")),
		Right:    key.NewBinding(key.WithKeys("right", "l")),
		Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Toggle:   key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle")),

		New:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		Save:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Sort:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Parse:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "quick add")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),

		AddList: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add list")),
		AddTag:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "add tag")),
		Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add subtask")),
		Remove:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),

		Confirm: key.NewBinding(key.WithKeys("y", "enter")),
		Cancel:  key.NewBinding(key.WithKeys("n", "esc")),
	}
}
