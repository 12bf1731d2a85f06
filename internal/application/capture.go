package application

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"voice-assistant/internal/domain"
)

// CaptureAdapter wraps a RecognitionEngine and turns its raw result events into
// interim and final transcripts.
type CaptureAdapter struct {
	engine   RecognitionEngine
	settings *Settings
	logger   *slog.Logger

	mu      sync.Mutex
	session uint64
	active  uint64
}

func NewCaptureAdapter(engine RecognitionEngine, settings *Settings, logger *slog.Logger) *CaptureAdapter {
	return &CaptureAdapter{
		engine:   engine,
		settings: settings,
		logger:   logger,
	}
}

// Start begins a fresh recognition session reporting to listener.
func (a *CaptureAdapter) Start(listener CaptureListener) error {
	a.mu.Lock()
	a.session++
	id := a.session
	a.active = id
	a.mu.Unlock()

	opts := a.settings.recognitionOptions()
	if err := a.engine.Start(opts, &captureSession{adapter: a, id: id, listener: listener}); err != nil {
		a.deactivate(id)
		return fmt.Errorf("starting recognition: %w", err)
	}
	return nil
}

// Stop asks the engine to finish and deliver what it heard.
func (a *CaptureAdapter) Stop() error {
	return a.engine.Stop()
}

// Abort discards the current session; its late events are dropped.
func (a *CaptureAdapter) Abort() error {
	a.mu.Lock()
	a.active = 0
	a.mu.Unlock()
	return a.engine.Abort()
}

func (a *CaptureAdapter) isActive(id uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active == id
}

func (a *CaptureAdapter) deactivate(id uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active == id {
		a.active = 0
	}
}

// SplitResults walks the segments from the event's result index and returns the
// newly finalized text and the still-provisional text.
func SplitResults(ev domain.RecognitionEvent) (final, interim string) {
	var f, i strings.Builder
	start := ev.ResultIndex
	if start < 0 {
		start = 0
	}
	for idx := start; idx < len(ev.Results); idx++ {
		res := ev.Results[idx]
		if res.Final {
			f.WriteString(res.Transcript)
		} else {
			i.WriteString(res.Transcript)
		}
	}
	return f.String(), i.String()
}

type captureSession struct {
	adapter  *CaptureAdapter
	id       uint64
	listener CaptureListener
}

func (s *captureSession) OnStart() {
	if !s.adapter.isActive(s.id) {
		return
	}
	s.listener.ListeningStarted()
}

func (s *captureSession) OnResult(ev domain.RecognitionEvent) {
	if !s.adapter.isActive(s.id) {
		return
	}
	final, interim := SplitResults(ev)
	s.listener.InterimTranscript(final + interim)
	if final != "" {
		s.listener.FinalTranscript(final)
	}
}

func (s *captureSession) OnError(code string) {
	if !s.adapter.isActive(s.id) {
		return
	}
	captureErr := domain.ClassifyRecognitionError(code)
	s.adapter.logger.Warn("speech recognition error", "code", code, "kind", captureErr.Kind)
	s.listener.CaptureFailed(captureErr)
}

func (s *captureSession) OnEnd() {
	if !s.adapter.isActive(s.id) {
		return
	}
	s.adapter.deactivate(s.id)
	s.listener.ListeningEnded()
}
