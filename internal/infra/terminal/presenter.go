package terminal

import (
	tea "github.com/charmbracelet/bubbletea"

	"voice-assistant/internal/domain"
)

type (
	stateMsg      domain.State
	transcriptMsg string
	replyMsg      string
	statusMsg     string
	errorMsg      string
	panelMsg      bool
	clearedMsg    struct{}
)

// Presenter forwards widget notifications into the bubbletea program. send is usually
// (*tea.Program).Send.
type Presenter struct {
	send func(tea.Msg)
}

func NewPresenter(send func(tea.Msg)) *Presenter {
	return &Presenter{send: send}
}

func (p *Presenter) StateChanged(s domain.State)   { p.send(stateMsg(s)) }
func (p *Presenter) TranscriptUpdated(text string) { p.send(transcriptMsg(text)) }
func (p *Presenter) ReplyReady(text string)        { p.send(replyMsg(text)) }
func (p *Presenter) StatusChanged(msg string)      { p.send(statusMsg(msg)) }
func (p *Presenter) ErrorRaised(msg string)        { p.send(errorMsg(msg)) }
func (p *Presenter) PanelToggled(visible bool)     { p.send(panelMsg(visible)) }
func (p *Presenter) ConversationCleared()          { p.send(clearedMsg{}) }
