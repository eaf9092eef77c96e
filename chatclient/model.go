package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/philippseith/signalr"

	"github.com/philippseith/signalrx"
)

var (
	statusStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	senderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	clockStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("118"))
)

// Messages arriving through the events channel. The handler of each of them
// has to re-arm waitForEvent.
type (
	chatLineMsg string
	stateMsg    signalr.ClientState
	tickMsg     string
)

// Messages returned by commands.
type (
	historyMsg []string
	faultMsg   struct{ err error }
)

type model struct {
	client   *signalrx.ObservableClient
	events   <-chan tea.Msg
	userName string

	viewport viewport.Model
	input    textinput.Model
	lines    []string
	state    signalr.ClientState
	clock    string
	ready    bool
}

func initialModel(client *signalrx.ObservableClient, events <-chan tea.Msg, userName string) model {
	input := textinput.New()
	input.Placeholder = "message"
	input.Focus()
	return model{
		client:   client,
		events:   events,
		userName: userName,
		viewport: viewport.New(80, 20),
		input:    input,
	}
}

func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForEvent(m.events))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			text := m.input.Value()
			if text == "" {
				return m, nil
			}
			m.input.SetValue("")
			return m, sendMessage(m.client, text)
		}
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 3
		m.input.Width = msg.Width - 4
		m.ready = true
		m.refreshContent()
		return m, nil
	case stateMsg:
		previous := m.state
		m.state = signalr.ClientState(msg)
		if m.state == signalr.ClientConnected && previous != signalr.ClientConnected {
			// every (re)connect announces the name and reloads the history
			return m, tea.Batch(
				announceName(m.client, m.userName),
				loadHistory(m.client),
				waitForEvent(m.events))
		}
		return m, waitForEvent(m.events)
	case chatLineMsg:
		m.appendLine(string(msg))
		return m, waitForEvent(m.events)
	case tickMsg:
		m.clock = string(msg)
		return m, waitForEvent(m.events)
	case historyMsg:
		m.lines = append([]string(nil), msg...)
		m.refreshContent()
		return m, nil
	case faultMsg:
		m.appendLine(errorStyle.Render("error: " + msg.err.Error()))
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	status := statusStyle.Render(stateName(m.state))
	if m.clock != "" {
		status += "  " + clockStyle.Render(m.clock)
	}
	return status + "\n" + m.viewport.View() + "\n" + m.input.View()
}

func (m *model) appendLine(line string) {
	m.lines = append(m.lines, line)
	m.refreshContent()
}

func (m *model) refreshContent() {
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func formatChatLine(sender, text string) string {
	return senderStyle.Render(sender) + ": " + text
}

var stateNames = map[signalr.ClientState]string{
	signalr.ClientCreated:    "created",
	signalr.ClientConnecting: "connecting",
	signalr.ClientConnected:  "connected",
	signalr.ClientClosed:     "closed",
}

func stateName(state signalr.ClientState) string {
	if name, ok := stateNames[state]; ok {
		return name
	}
	return fmt.Sprintf("state %d", state)
}

// sendMessage runs the Send observable to completion. It emits nothing on
// success, so the command yields a message only for faults.
func sendMessage(client *signalrx.ObservableClient, text string) tea.Cmd {
	return func() tea.Msg {
		for item := range client.Send("SendMessage", text).Observe() {
			if item.E != nil {
				return faultMsg{err: item.E}
			}
		}
		return nil
	}
}

func announceName(client *signalrx.ObservableClient, name string) tea.Cmd {
	return func() tea.Msg {
		for item := range client.Send("SetName", name).Observe() {
			if item.E != nil {
				return faultMsg{err: item.E}
			}
		}
		return nil
	}
}

// loadHistory invokes History and renders the replayed messages.
func loadHistory(client *signalrx.ObservableClient) tea.Cmd {
	return func() tea.Msg {
		var lines []string
		for item := range client.Invoke("History").Observe() {
			if item.E != nil {
				return faultMsg{err: item.E}
			}
			entries, ok := item.V.([]interface{})
			if !ok {
				continue
			}
			for _, entry := range entries {
				fields, ok := entry.(map[string]interface{})
				if !ok {
					continue
				}
				sender, _ := fields["sender"].(string)
				text, _ := fields["text"].(string)
				lines = append(lines, formatChatLine(sender, text))
			}
		}
		return historyMsg(lines)
	}
}
