package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"focusguard/internal/preset"
	"focusguard/internal/session"
)

const refreshEvery = 2 * time.Second

// stateMsg carries the latest daemon state (or the fetch error).
type stateMsg struct {
	res session.Result
	err error
}

type refreshMsg struct{}

type DashboardModel struct {
	client  *Client
	res     session.Result
	err     error
	input   textinput.Model
	adding  bool
	presets []string
}

func NewDashboardModel(client *Client) DashboardModel {
	ti := textinput.New()
	ti.Placeholder = "example.com"
	ti.CharLimit = 253
	ti.Width = 40
	return DashboardModel{
		client:  client,
		input:   ti,
		presets: preset.IDs(),
	}
}

func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.fetch, scheduleRefresh())
}

func (m DashboardModel) fetch() tea.Msg {
	res, err := m.client.State()
	return stateMsg{res: res, err: err}
}

func scheduleRefresh() tea.Cmd {
	return tea.Tick(refreshEvery, func(time.Time) tea.Msg { return refreshMsg{} })
}

func (m DashboardModel) command(payload map[string]any) tea.Cmd {
	return func() tea.Msg {
		res, err := m.client.Command(payload)
		return stateMsg{res: res, err: err}
	}
}

func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.err = msg.err
		if msg.err == nil {
			m.res = msg.res
		}
		return m, nil

	case refreshMsg:
		return m, tea.Batch(m.fetch, scheduleRefresh())

	case tea.KeyMsg:
		if m.adding {
			switch msg.Type {
			case tea.KeyEnter:
				site := strings.TrimSpace(m.input.Value())
				m.adding = false
				m.input.Blur()
				m.input.SetValue("")
				if site == "" {
					return m, nil
				}
				return m, m.command(map[string]any{"type": "addSite", "site": site})
			case tea.KeyEsc:
				m.adding = false
				m.input.Blur()
				m.input.SetValue("")
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "f":
			return m, m.command(map[string]any{"type": "toggleFocus"})
		case "a":
			m.adding = true
			return m, m.input.Focus()
		case "r":
			return m, m.command(map[string]any{"type": "resetStats"})
		case "s":
			return m, m.command(map[string]any{"type": "syncNow"})
		case "1", "2", "3", "4", "5":
			idx := int(msg.String()[0] - '1')
			if idx < len(m.presets) {
				return m, m.command(map[string]any{"type": "togglePreset", "preset": m.presets[idx]})
			}
		}
	}
	return m, nil
}

func (m DashboardModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("FocusGuard"))
	b.WriteString("\n\n")

	if m.res.State == nil {
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("daemon unreachable: %v", m.err)))
		} else {
			b.WriteString(inactiveStyle.Render("loading..."))
		}
		return docStyle.Render(b.String())
	}
	doc := m.res.State

	if doc.FocusMode {
		b.WriteString(activeStyle.Render("● focus mode ON"))
	} else {
		b.WriteString(inactiveStyle.Render("○ focus mode off"))
	}
	if m.res.IsPro {
		b.WriteString("  " + labelStyle.Render("[pro]"))
	}
	b.WriteString("\n\n")

	st := doc.Stats
	b.WriteString(labelStyle.Render("Blocks") + fmt.Sprintf(
		"  today %d · week %d · month %d · total %d\n",
		st.BlocksToday, st.BlocksThisWeek, st.BlocksThisMonth, st.BlocksTotal))
	b.WriteString(labelStyle.Render("Focus ") + fmt.Sprintf(
		"  today %dm · total %dm · streak %dd (best %dd)\n\n",
		st.FocusMinutesToday, st.TotalFocusMinutes, st.StreakDays, st.LongestStreak))

	b.WriteString(labelStyle.Render("Blocked sites") + fmt.Sprintf(" (%d)\n", len(doc.BlockedSites)))
	for _, s := range doc.BlockedSites {
		b.WriteString("  · " + s + "\n")
	}
	b.WriteString("\n" + labelStyle.Render("Presets") + "\n")
	for i, id := range m.presets {
		p, _ := preset.Get(id)
		mark := "○"
		for _, e := range doc.EnabledPresets {
			if e == id {
				mark = "●"
				break
			}
		}
		b.WriteString(fmt.Sprintf("  %d %s %s %s\n", i+1, mark, p.Icon, p.Name))
	}

	if m.adding {
		b.WriteString("\nAdd site: " + m.input.View() + "\n")
	}
	if m.res.Error != "" {
		b.WriteString("\n" + errorStyle.Render("error: "+string(m.res.Error)) + "\n")
	} else if m.res.Warning != "" {
		b.WriteString("\n" + errorStyle.Render("warning: "+string(m.res.Warning)) + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("f toggle focus · a add site · 1-5 presets · r reset stats · s sync · q quit"))
	return docStyle.Render(b.String())
}
