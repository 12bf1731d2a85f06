package terminal

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"voice-assistant/internal/application"
	"voice-assistant/internal/domain"
)

const errorDisplay = 5 * time.Second

// Controller receives the user's gestures from the terminal.
type Controller interface {
	PanelVisible() bool
	TogglePanel() bool
	SetAPIKey(key string) error
	ClearConversation()
	ToggleListening()
	StopSpeaking()
	Cancel()
	Submit(text string)
	NextVoice() (domain.Voice, bool)
	SetRate(rate float64)
	SetPitch(pitch float64)
	Settings() (application.Options, domain.Voice)
}

type inputMode int

const (
	modeKeys inputMode = iota
	modeText
	modeAPIKey
)

type clearErrorMsg int

type keySavedMsg struct{ err error }

type settingsMsg struct {
	opts  application.Options
	voice domain.Voice
}

// Model is the terminal rendition of the widget: a status line and a panel with the
// transcript, the reply and the voice settings.
type Model struct {
	controller Controller
	theme      theme
	input      textinput.Model
	mode       inputMode
	width      int

	state      domain.State
	panel      bool
	status     string
	transcript string
	reply      string
	errText    string
	errSeq     int

	opts  application.Options
	voice domain.Voice
}

func NewModel(controller Controller) Model {
	input := textinput.New()
	input.CharLimit = 500

	opts, voice := controller.Settings()
	return Model{
		controller: controller,
		theme:      newTheme(),
		input:      input,
		width:      60,
		state:      domain.StateIdle,
		panel:      controller.PanelVisible(),
		status:     application.StatusReady,
		opts:       opts,
		voice:      voice,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// call runs a controller gesture off the update loop. Gestures publish presenter
// messages back into the program, which would block if sent from Update.
func call(f func()) tea.Cmd {
	return func() tea.Msg {
		f()
		return nil
	}
}

func (m Model) refreshSettings(f func()) tea.Cmd {
	return func() tea.Msg {
		f()
		opts, voice := m.controller.Settings()
		return settingsMsg{opts: opts, voice: voice}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case stateMsg:
		m.state = domain.State(msg)
		return m, nil
	case transcriptMsg:
		m.transcript = string(msg)
		return m, nil
	case replyMsg:
		m.reply = string(msg)
		return m, nil
	case statusMsg:
		m.status = string(msg)
		return m, nil
	case errorMsg:
		m.errText = string(msg)
		m.errSeq++
		seq := m.errSeq
		return m, tea.Tick(errorDisplay, func(time.Time) tea.Msg { return clearErrorMsg(seq) })
	case clearErrorMsg:
		if int(msg) == m.errSeq {
			m.errText = ""
		}
		return m, nil
	case panelMsg:
		m.panel = bool(msg)
		return m, nil
	case clearedMsg:
		m.transcript = ""
		m.reply = ""
		return m, nil
	case settingsMsg:
		m.opts = msg.opts
		m.voice = msg.voice
		return m, nil
	case keySavedMsg:
		if msg.err != nil {
			m.errText = "Failed to save API key"
		}
		return m, nil
	case tea.KeyMsg:
		if m.mode != modeKeys {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.controller
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ", "l":
		return m, call(c.ToggleListening)
	case "s":
		return m, call(c.StopSpeaking)
	case "esc":
		return m, call(c.Cancel)
	case "tab":
		return m, call(func() { c.TogglePanel() })
	case "c":
		return m, call(c.ClearConversation)
	case "v":
		return m, m.refreshSettings(func() { c.NextVoice() })
	case "+", "=":
		return m, m.refreshSettings(func() { c.SetRate(m.opts.Rate + 0.1) })
	case "-":
		return m, m.refreshSettings(func() { c.SetRate(m.opts.Rate - 0.1) })
	case "]":
		return m, m.refreshSettings(func() { c.SetPitch(m.opts.Pitch + 0.1) })
	case "[":
		return m, m.refreshSettings(func() { c.SetPitch(m.opts.Pitch - 0.1) })
	case "t", "/":
		return m.beginInput(modeText, "Ask: ", textinput.EchoNormal)
	case "k":
		return m.beginInput(modeAPIKey, "API key: ", textinput.EchoPassword)
	}
	return m, nil
}

func (m Model) beginInput(mode inputMode, prompt string, echo textinput.EchoMode) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.Reset()
	m.input.Prompt = prompt
	m.input.EchoMode = echo
	return m, m.input.Focus()
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.mode = modeKeys
		m.input.Blur()
		return m, nil
	case "enter":
		value := m.input.Value()
		mode := m.mode
		m.mode = modeKeys
		m.input.Blur()
		m.input.Reset()

		c := m.controller
		if mode == modeAPIKey {
			return m, func() tea.Msg { return keySavedMsg{err: c.SetAPIKey(value)} }
		}
		return m, call(func() { c.Submit(value) })
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	t := m.theme
	width := max(m.width-4, 20)

	indicator := t.indicators[m.state].Render("● " + m.state.String())
	header := lipgloss.JoinHorizontal(lipgloss.Center, t.header.Render("Zeki Assistant"), " ", indicator)

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")

	if m.panel {
		var body strings.Builder
		body.WriteString(t.status.Render(m.status))
		body.WriteString("\n\n")
		body.WriteString(t.label.Render("You said:"))
		body.WriteString("\n")
		body.WriteString(t.text.Render(wordwrap.String(orDots(m.transcript), width-2)))
		body.WriteString("\n\n")
		body.WriteString(t.label.Render("AI Response:"))
		body.WriteString("\n")
		body.WriteString(t.text.Render(wordwrap.String(orDots(m.reply), width-2)))
		body.WriteString("\n\n")
		body.WriteString(t.help.Render(m.settingsLine()))
		b.WriteString(t.panel.Width(width).Render(body.String()))
		b.WriteString("\n")
	}

	if m.errText != "" {
		b.WriteString(t.errorText.Render(wordwrap.String(m.errText, width)))
		b.WriteString("\n")
	}

	if m.mode != modeKeys {
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(t.help.Render("enter submit • esc cancel"))
	} else {
		b.WriteString(t.help.Render("space listen • s stop • t type • v voice • +/- speed • [/] pitch • k key • c clear • tab panel • esc cancel • q quit"))
	}
	return b.String()
}

func (m Model) settingsLine() string {
	voice := m.voice.Name
	if voice == "" {
		voice = "default"
	}
	return fmt.Sprintf("Voice: %s   Speed: %.1fx   Pitch: %.1fx", voice, m.opts.Rate, m.opts.Pitch)
}

func orDots(s string) string {
	if s == "" {
		return "..."
	}
	return s
}
