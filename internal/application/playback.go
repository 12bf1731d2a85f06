package application

import (
	"log/slog"
	"sync"

	"voice-assistant/internal/domain"
)

type PlaybackAdapter struct {
	engine   SynthesisEngine
	settings *Settings
	logger   *slog.Logger
}

func NewPlaybackAdapter(engine SynthesisEngine, settings *Settings, logger *slog.Logger) *PlaybackAdapter {
	return &PlaybackAdapter{
		engine:   engine,
		settings: settings,
		logger:   logger,
	}
}

// Speak cancels anything in flight and speaks text with the current settings. The
// returned channel closes when the utterance ends or fails.
func (p *PlaybackAdapter) Speak(id, text string, listener PlaybackListener) <-chan struct{} {
	p.engine.Cancel()

	opts := p.settings.Snapshot()
	u := domain.Utterance{
		ID:     id,
		Text:   text,
		Voice:  p.settings.Voice(),
		Lang:   opts.Language,
		Rate:   opts.Rate,
		Pitch:  opts.Pitch,
		Volume: opts.Volume,
	}

	events := &utteranceEvents{
		id:       id,
		listener: listener,
		logger:   p.logger,
		done:     make(chan struct{}),
	}
	if err := p.engine.Speak(u, events); err != nil {
		events.OnError(err.Error())
	}
	return events.done
}

// Cancel stops the current utterance and drops any queued ones.
func (p *PlaybackAdapter) Cancel() {
	p.engine.Cancel()
}

func (p *PlaybackAdapter) Voices() []domain.Voice {
	return p.engine.Voices()
}

type utteranceEvents struct {
	id       string
	listener PlaybackListener
	logger   *slog.Logger
	once     sync.Once
	done     chan struct{}
}

func (e *utteranceEvents) OnStart() {
	e.listener.SpeechStarted(e.id)
}

func (e *utteranceEvents) OnEnd() {
	e.once.Do(func() {
		close(e.done)
		e.listener.SpeechEnded(e.id)
	})
}

func (e *utteranceEvents) OnError(reason string) {
	e.once.Do(func() {
		e.logger.Error("speech synthesis error", "utterance", e.id, "reason", reason)
		close(e.done)
		e.listener.SpeechFailed(e.id, reason)
	})
}
