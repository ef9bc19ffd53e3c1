// Package tui is a console client: one cultist talking to the orb from a
// terminal, through the same engine the server uses.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tatianab/orb-cult/internal/engine"
)

type sessionState int

const (
	stateName sessionState = iota
	statePlaying
	stateError
)

// ServerID is the gathering a console player belongs to.
const ServerID = "console"

type model struct {
	state     sessionState
	engine    *engine.Engine
	session   session
	profile   *engine.ProfileView
	textInput textinput.Model
	viewport  viewport.Model
	err       error
	log       string
	width     int
	height    int
	busy      bool
}

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#4B2E5F")).
			Bold(true).
			PaddingLeft(1)

	orbStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D7C4F0"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	madStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F")).
			Bold(true)

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9F7AEA")).
			Bold(true).
			Underline(true)
)

// NewModel returns the console model. A non-empty name skips the prompt.
func NewModel(eng *engine.Engine, name string) model {
	ti := textinput.New()
	ti.Placeholder = "What name will the orb know you by?"
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 60

	m := model{
		state:     stateName,
		engine:    eng,
		session:   session{server: ServerID},
		textInput: ti,
	}
	if name = strings.TrimSpace(name); name != "" {
		m.session.actor = name
		m.state = statePlaying
		m.textInput.Placeholder = "Speak to the orb, or /help"
	}
	return m
}

func (m model) Init() tea.Cmd {
	if m.state == statePlaying {
		return tea.Batch(textinput.Blink, m.send(engine.Action{Kind: engine.KindProfile, ActorID: m.session.actor}))
	}
	return textinput.Blink
}

type resultMsg struct {
	res engine.Result
	err error
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			input := strings.TrimSpace(m.textInput.Value())
			m.textInput.Reset()

			if m.state == stateName {
				if input == "" {
					return m, nil
				}
				m.session.actor = input
				m.state = statePlaying
				m.textInput.Placeholder = "Speak to the orb, or /help"
				m.ensureViewport()
				return m, m.send(engine.Action{Kind: engine.KindProfile, ActorID: input})
			}
			if m.state != statePlaying || input == "" {
				return m, nil
			}
			switch input {
			case "/quit":
				return m, tea.Quit
			case "/help":
				m.appendLog(noticeStyle.Render(helpText))
				return m, nil
			}

			m.appendLog(userStyle.Width(m.logWidth()).Render("> " + input))
			a, err := m.session.parse(input)
			switch {
			case errors.Is(err, errChatter):
				m.appendLog(noticeStyle.Render("The orb ignores idle talk."))
				return m, nil
			case err != nil:
				m.appendLog(noticeStyle.Render(err.Error()))
				return m, nil
			}
			if m.busy {
				m.appendLog(noticeStyle.Render("The orb is still answering."))
				return m, nil
			}
			m.busy = true
			return m, m.send(a)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.logWidth()
		m.viewport.Height = msg.Height - 6
		m.viewport.SetContent(m.log)

	case resultMsg:
		m.busy = false
		if errors.Is(msg.err, engine.ErrInvalidAction) {
			m.appendLog(noticeStyle.Render(msg.err.Error()))
			return m, nil
		}
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.apply(msg.res)
		return m, nil
	}

	if m.state == stateName || m.state == statePlaying {
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// apply folds a result into the model.
func (m *model) apply(res engine.Result) {
	if res.Profile.ID == m.session.actor {
		p := res.Profile
		m.profile = &p
	}
	switch res.Status {
	case engine.StatusOK, engine.StatusContinue, engine.StatusSessionActive:
		if res.Kind == engine.KindAdventureStart || res.Kind == engine.KindAdventureChoose {
			m.session.choices = res.Choices
		}
	case engine.StatusCompleted, engine.StatusUnknownNode, engine.StatusNoActiveSession:
		m.session.choices = nil
	}
	if res.Kind == engine.KindAdventureAbandon || (res.Kind == engine.KindSacrifice && res.Winner != m.session.actor) {
		m.session.choices = nil
	}
	m.appendLog(orbStyle.Width(m.logWidth()).Render(describe(res)))
}

func (m *model) appendLog(s string) {
	m.ensureViewport()
	m.log += s + "\n\n"
	m.viewport.SetContent(m.log)
	m.viewport.GotoBottom()
}

func (m *model) ensureViewport() {
	if m.viewport.Width == 0 {
		m.viewport = viewport.New(m.logWidth(), max(m.height-6, 10))
	}
}

func (m model) logWidth() int {
	if m.width == 0 {
		return 60
	}
	return int(float64(m.width) * 0.70)
}

func (m model) View() string {
	var s string

	switch m.state {
	case stateName:
		s = fmt.Sprintf(
			"The orb stirs.\n\n%s\n\n%s",
			"Who approaches?",
			m.textInput.View(),
		)

	case statePlaying:
		mainView := lipgloss.JoinHorizontal(lipgloss.Top,
			m.viewport.View(),
			m.renderProfile(),
		)
		help := noticeStyle.Render("/help for commands, /quit to leave.")
		s = lipgloss.JoinVertical(lipgloss.Left,
			mainView,
			"\n"+m.textInput.View(),
			"\n"+help,
		)

	case stateError:
		s = fmt.Sprintf("\n  Error: %v\n\nPress Esc to quit.", m.err)
	}

	return "\n" + s + "\n"
}

func (m model) renderProfile() string {
	if m.profile == nil {
		return ""
	}
	width := int(float64(m.width) * 0.27)
	return stateStyle.Width(width).Height(m.viewport.Height).Render(profilePanel(*m.profile))
}

func (m model) send(a engine.Action) tea.Cmd {
	return func() tea.Msg {
		res, err := m.engine.Handle(context.Background(), a)
		return resultMsg{res, err}
	}
}

// Run starts the console for name. An empty name prompts for one.
func Run(eng *engine.Engine, name string) error {
	p := tea.NewProgram(NewModel(eng, name), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
