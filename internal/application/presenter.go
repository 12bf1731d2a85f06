package application

import "voice-assistant/internal/domain"

// Presenter renders what the widget publishes. Implementations must not call back into
// the widget synchronously.
type Presenter interface {
	StateChanged(state domain.State)
	TranscriptUpdated(text string)
	ReplyReady(text string)
	StatusChanged(message string)
	ErrorRaised(message string)
	PanelToggled(visible bool)
	ConversationCleared()
}

type NoopPresenter struct{}

func (NoopPresenter) StateChanged(domain.State) {}
func (NoopPresenter) TranscriptUpdated(string)  {}
func (NoopPresenter) ReplyReady(string)         {}
func (NoopPresenter) StatusChanged(string)      {}
func (NoopPresenter) ErrorRaised(string)        {}
func (NoopPresenter) PanelToggled(bool)         {}
func (NoopPresenter) ConversationCleared()      {}

type presenters []Presenter

func (ps presenters) state(s domain.State) {
	for _, p := range ps {
		p.StateChanged(s)
	}
}

func (ps presenters) transcript(text string) {
	for _, p := range ps {
		p.TranscriptUpdated(text)
	}
}

func (ps presenters) reply(text string) {
	for _, p := range ps {
		p.ReplyReady(text)
	}
}

func (ps presenters) status(msg string) {
	for _, p := range ps {
		p.StatusChanged(msg)
	}
}

func (ps presenters) failure(msg string) {
	for _, p := range ps {
		p.ErrorRaised(msg)
	}
}

func (ps presenters) panel(visible bool) {
	for _, p := range ps {
		p.PanelToggled(visible)
	}
}

func (ps presenters) cleared() {
	for _, p := range ps {
		p.ConversationCleared()
	}
}
