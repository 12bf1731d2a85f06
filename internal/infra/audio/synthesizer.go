package audio

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"voice-assistant/internal/application"
	"voice-assistant/internal/domain"
)

// SpeechSource renders an utterance to 16-bit mono PCM.
type SpeechSource interface {
	Synthesize(ctx context.Context, u domain.Utterance) (io.ReadCloser, error)
}

// Sink plays PCM until the reader is drained or ctx is cancelled.
type Sink interface {
	Play(ctx context.Context, pcm io.Reader, volume float64) error
}

// Synthesizer is a SynthesisEngine backed by a speech source and an audio sink. Pitch
// is not supported by the source and is ignored.
type Synthesizer struct {
	source SpeechSource
	sink   Sink
	voices []domain.Voice
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewSynthesizer(source SpeechSource, sink Sink, voices []domain.Voice, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{
		source: source,
		sink:   sink,
		voices: voices,
		logger: logger,
	}
}

func (s *Synthesizer) Speak(u domain.Utterance, events application.SynthesisEvents) error {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.mu.Unlock()

	go s.play(ctx, u, events)
	return nil
}

func (s *Synthesizer) play(ctx context.Context, u domain.Utterance, events application.SynthesisEvents) {
	stream, err := s.source.Synthesize(ctx, u)
	if err != nil {
		if ctx.Err() != nil {
			events.OnError("interrupted")
			return
		}
		s.logger.Error("synthesizing speech", "utterance", u.ID, "error", err)
		events.OnError("synthesis-failed")
		return
	}
	defer stream.Close()

	events.OnStart()
	if err := s.sink.Play(ctx, stream, u.Volume); err != nil {
		if ctx.Err() != nil {
			events.OnError("interrupted")
			return
		}
		s.logger.Error("playing speech", "utterance", u.ID, "error", err)
		events.OnError("audio-output")
		return
	}
	events.OnEnd()
}

func (s *Synthesizer) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Synthesizer) Voices() []domain.Voice {
	return append([]domain.Voice(nil), s.voices...)
}
