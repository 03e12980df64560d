package tui

import "github.com/charmbracelet/bubbles/key"

// threadKeyMap holds the bindings active while a thread is open
type threadKeyMap struct {
	Interrupt key.Binding
	Submit    key.Binding
	Backspace key.Binding
}

var threadKeys = threadKeyMap{
	Interrupt: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	Submit:    key.NewBinding(key.WithKeys("enter", "ctrl+u"), key.WithHelp("enter", "send")),
	Backspace: key.NewBinding(key.WithKeys("backspace"), key.WithHelp("backspace", "delete")),
}

// pickerKeyMap holds the bindings of the inbox picker
type pickerKeyMap struct {
	Choose    key.Binding
	Quit      key.Binding
	Interrupt key.Binding
}

var pickerKeys = pickerKeyMap{
	Choose:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Quit:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "quit")),
	Interrupt: key.NewBinding(key.WithKeys("ctrl+c")),
}

func (k pickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Choose, k.Quit}
}

func (k pickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
