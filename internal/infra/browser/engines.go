package browser

import (
	"fmt"

	"voice-assistant/internal/application"
	"voice-assistant/internal/domain"
)

// Recognizer is the bridge's RecognitionEngine view.
type Recognizer Bridge

func (b *Bridge) Recognizer() *Recognizer {
	return (*Recognizer)(b)
}

// Start asks the page to begin a recognition session. Events tagged with an older
// session number are dropped.
func (r *Recognizer) Start(opts domain.RecognitionOptions, events application.RecognitionEvents) error {
	b := (*Bridge)(r)

	b.recMu.Lock()
	b.recSession++
	session := b.recSession
	b.recEvents = events
	b.recMu.Unlock()

	err := b.send(Message{
		Type:            TypeRecognitionStart,
		Session:         session,
		Lang:            opts.Language,
		Continuous:      opts.Continuous,
		InterimResults:  opts.InterimResults,
		MaxAlternatives: opts.MaxAlternatives,
	})
	if err != nil {
		b.recMu.Lock()
		if b.recSession == session {
			b.recEvents = nil
		}
		b.recMu.Unlock()
		return fmt.Errorf("starting recognition: %w", err)
	}
	return nil
}

func (r *Recognizer) Stop() error {
	b := (*Bridge)(r)
	b.recMu.Lock()
	session := b.recSession
	b.recMu.Unlock()

	if err := b.send(Message{Type: TypeRecognitionStop, Session: session}); err != nil {
		return fmt.Errorf("stopping recognition: %w", err)
	}
	return nil
}

func (r *Recognizer) Abort() error {
	b := (*Bridge)(r)
	b.recMu.Lock()
	session := b.recSession
	b.recEvents = nil
	b.recMu.Unlock()

	if err := b.send(Message{Type: TypeRecognitionAbort, Session: session}); err != nil {
		return fmt.Errorf("aborting recognition: %w", err)
	}
	return nil
}

// Synthesizer is the bridge's SynthesisEngine view.
type Synthesizer Bridge

func (b *Bridge) Synthesizer() *Synthesizer {
	return (*Synthesizer)(b)
}

func (s *Synthesizer) Speak(u domain.Utterance, events application.SynthesisEvents) error {
	b := (*Bridge)(s)

	b.synthMu.Lock()
	b.utterances[u.ID] = events
	b.synthMu.Unlock()

	err := b.send(Message{
		Type:   TypeSynthesisSpeak,
		ID:     u.ID,
		Text:   u.Text,
		Voice:  u.Voice.Name,
		Lang:   u.Lang,
		Rate:   floatPtr(u.Rate),
		Pitch:  floatPtr(u.Pitch),
		Volume: floatPtr(u.Volume),
	})
	if err != nil {
		b.synthMu.Lock()
		delete(b.utterances, u.ID)
		b.synthMu.Unlock()
		return fmt.Errorf("speaking: %w", err)
	}
	return nil
}

// Cancel stops the page's speech queue. The page reports each cancelled utterance
// as an error.
func (s *Synthesizer) Cancel() {
	b := (*Bridge)(s)
	b.notify(Message{Type: TypeSynthesisCancel})
}

func (s *Synthesizer) Voices() []domain.Voice {
	b := (*Bridge)(s)
	b.synthMu.Lock()
	defer b.synthMu.Unlock()
	return append([]domain.Voice(nil), b.voices...)
}

// Presenter renders session changes on the page.
type Presenter Bridge

func (b *Bridge) Presenter() *Presenter {
	return (*Presenter)(b)
}

func (p *Presenter) StateChanged(s domain.State) {
	(*Bridge)(p).notify(Message{Type: TypeState, State: s.String()})
}

func (p *Presenter) TranscriptUpdated(text string) {
	(*Bridge)(p).notify(Message{Type: TypeTranscript, Text: text})
}

func (p *Presenter) ReplyReady(text string) {
	(*Bridge)(p).notify(Message{Type: TypeReply, Text: text})
}

func (p *Presenter) StatusChanged(msg string) {
	(*Bridge)(p).notify(Message{Type: TypeStatus, Text: msg})
}

func (p *Presenter) ErrorRaised(msg string) {
	(*Bridge)(p).notify(Message{Type: TypeError, Text: msg})
}

func (p *Presenter) PanelToggled(visible bool) {
	(*Bridge)(p).notify(Message{Type: TypePanel, Visible: boolPtr(visible)})
}

func (p *Presenter) ConversationCleared() {
	(*Bridge)(p).notify(Message{Type: TypeCleared})
}
