package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// RootModel owns the dashboard and global key handling.
type RootModel struct {
	Dashboard DashboardModel
	Quitting  bool
}

func NewRootModel(client *Client) RootModel {
	return RootModel{Dashboard: NewDashboardModel(client)}
}

func (m RootModel) Init() tea.Cmd {
	return m.Dashboard.Init()
}

func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if key.Type == tea.KeyCtrlC || (!m.Dashboard.adding && key.String() == "q") {
			m.Quitting = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.Dashboard, cmd = m.Dashboard.Update(msg)
	return m, cmd
}

func (m RootModel) View() string {
	if m.Quitting {
		return ""
	}
	return m.Dashboard.View()
}
