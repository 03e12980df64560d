package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/dm-session/internal"
)

// PickerAction is what the user chose in the inbox picker
type PickerAction int

const (
	PickNone PickerAction = iota
	PickThread
	PickFetchOlder
	PickFetchAll
	PickRefresh
	PickQuit
	PickInterrupt
)

// Selection is the result of a picker run
type Selection struct {
	Action   PickerAction
	ThreadID string
}

const (
	labelFetchOlder = "Fetch older items"
	labelFetchAll   = "Fetch all items"
	labelRefresh    = "Refresh inbox"
)

type threadItem struct {
	choice internal.ThreadChoice
}

func (i threadItem) Title() string       { return i.choice.Label }
func (i threadItem) Description() string { return "" }
func (i threadItem) FilterValue() string { return i.choice.Label }

type menuItem struct {
	label  string
	action PickerAction
}

func (i menuItem) Title() string       { return i.label }
func (i menuItem) Description() string { return "" }
func (i menuItem) FilterValue() string { return i.label }

var pickerStatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

// PickerModel lists threads plus the inbox paging actions
type PickerModel struct {
	list      list.Model
	status    string
	selection Selection
}

// NewPicker builds the picker. Paging entries only appear when the inbox has
// more pages; status is shown above the list when non-empty.
func NewPicker(choices []internal.ThreadChoice, hasMore bool, status string) *PickerModel {
	items := make([]list.Item, 0, len(choices)+3)
	for _, c := range choices {
		items = append(items, threadItem{choice: c})
	}
	if hasMore {
		items = append(items,
			menuItem{label: labelFetchOlder, action: PickFetchOlder},
			menuItem{label: labelFetchAll, action: PickFetchAll},
		)
	}
	items = append(items, menuItem{label: labelRefresh, action: PickRefresh})

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New(items, delegate, 80, 20)
	l.Title = "Select a thread"
	l.SetShowStatusBar(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	l.AdditionalShortHelpKeys = pickerKeys.ShortHelp

	return &PickerModel{list: l, status: status}
}

// Selection returns the user's choice; PickNone until one is made
func (m *PickerModel) Selection() Selection { return m.selection }

func (m *PickerModel) Init() tea.Cmd { return nil }

func (m *PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-1)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, pickerKeys.Interrupt) {
			m.selection = Selection{Action: PickInterrupt}
			return m, tea.Quit
		}
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, pickerKeys.Quit) && m.list.FilterState() == list.Unfiltered:
			m.selection = Selection{Action: PickQuit}
			return m, tea.Quit
		case key.Matches(msg, pickerKeys.Choose):
			switch item := m.list.SelectedItem().(type) {
			case threadItem:
				m.selection = Selection{Action: PickThread, ThreadID: item.choice.ThreadID}
			case menuItem:
				m.selection = Selection{Action: item.action}
			default:
				return m, nil
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *PickerModel) View() string {
	if m.selection.Action != PickNone {
		return ""
	}
	if m.status == "" {
		return m.list.View()
	}
	return pickerStatusStyle.Render(m.status) + "\n" + m.list.View()
}
