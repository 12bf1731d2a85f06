package audio

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"voice-assistant/internal/application"
	"voice-assistant/internal/domain"
)

// Transcriber turns a WAV recording into text.
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte, language string) (string, error)
}

// Recognizer is a RecognitionEngine that records one utterance and transcribes it.
// It reports a single final result per session, like a non-continuous browser recognizer.
type Recognizer struct {
	recorder    Recorder
	transcriber Transcriber
	logger      *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	stop   chan struct{}
	once   *sync.Once
}

func NewRecognizer(recorder Recorder, transcriber Transcriber, logger *slog.Logger) *Recognizer {
	return &Recognizer{
		recorder:    recorder,
		transcriber: transcriber,
		logger:      logger,
	}
}

// Start supersedes any running session.
func (r *Recognizer) Start(opts domain.RecognitionOptions, events application.RecognitionEvents) error {
	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan struct{})

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.cancel = cancel
	r.stop = stop
	r.once = &sync.Once{}
	r.mu.Unlock()

	go r.run(ctx, stop, opts, events)
	return nil
}

// Stop ends the recording and transcribes what was captured.
func (r *Recognizer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.once != nil {
		stop := r.stop
		r.once.Do(func() { close(stop) })
	}
	return nil
}

// Abort discards the current session.
func (r *Recognizer) Abort() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	return nil
}

func (r *Recognizer) run(ctx context.Context, stop <-chan struct{}, opts domain.RecognitionOptions, events application.RecognitionEvents) {
	defer events.OnEnd()
	events.OnStart()

	wav, err := r.recorder.Record(ctx, stop, Limits{
		MaxLength:      opts.MaxSpeechLength,
		SilenceTimeout: opts.SilenceTimeout,
	})
	switch {
	case ctx.Err() != nil:
		events.OnError(domain.RecognitionCodeAborted)
		return
	case errors.Is(err, ErrNoAudio):
		events.OnError(domain.RecognitionCodeNoSpeech)
		return
	case err != nil:
		r.logger.Error("recording audio", "error", err)
		events.OnError(domain.RecognitionCodeAudioCapture)
		return
	}

	text, err := r.transcriber.Transcribe(ctx, wav, opts.Language)
	switch {
	case ctx.Err() != nil:
		events.OnError(domain.RecognitionCodeAborted)
		return
	case err != nil:
		r.logger.Error("transcribing audio", "error", err)
		events.OnError(domain.RecognitionCodeNetwork)
		return
	}

	text = strings.TrimSpace(text)
	if text == "" {
		events.OnError(domain.RecognitionCodeNoSpeech)
		return
	}

	r.logger.Info("transcription complete", "text", text)
	events.OnResult(domain.RecognitionEvent{
		Results: []domain.RecognitionResult{{Transcript: text, Final: true}},
	})
}
