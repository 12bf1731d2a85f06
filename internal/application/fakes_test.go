package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"voice-assistant/internal/application"
	"voice-assistant/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockRecognizer struct {
	mu       sync.Mutex
	starts   int
	stops    int
	aborts   int
	opts     domain.RecognitionOptions
	events   application.RecognitionEvents
	startErr error
}

func (m *mockRecognizer) Start(opts domain.RecognitionOptions, events application.RecognitionEvents) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.startErr != nil {
		return m.startErr
	}
	m.starts++
	m.opts = opts
	m.events = events
	return nil
}

func (m *mockRecognizer) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	return nil
}

func (m *mockRecognizer) Abort() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aborts++
	return nil
}

func (m *mockRecognizer) current() application.RecognitionEvents {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events
}

func (m *mockRecognizer) startCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts
}

func (m *mockRecognizer) abortCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.aborts
}

func (m *mockRecognizer) say(results ...domain.RecognitionResult) {
	m.current().OnResult(domain.RecognitionEvent{Results: results})
}

type mockSynthesizer struct {
	mu         sync.Mutex
	utterances []domain.Utterance
	events     []application.SynthesisEvents
	cancels    int
	voices     []domain.Voice
	speakErr   error
	spoken     chan domain.Utterance
}

func newMockSynthesizer() *mockSynthesizer {
	return &mockSynthesizer{spoken: make(chan domain.Utterance, 16)}
}

func (m *mockSynthesizer) Speak(u domain.Utterance, events application.SynthesisEvents) error {
	m.mu.Lock()
	if m.speakErr != nil {
		m.mu.Unlock()
		return m.speakErr
	}
	m.utterances = append(m.utterances, u)
	m.events = append(m.events, events)
	m.mu.Unlock()

	events.OnStart()
	m.spoken <- u
	return nil
}

func (m *mockSynthesizer) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancels++
}

func (m *mockSynthesizer) Voices() []domain.Voice {
	return m.voices
}

func (m *mockSynthesizer) spokenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.utterances)
}

func (m *mockSynthesizer) cancelCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancels
}

// finish ends the i-th utterance the way the engine would.
func (m *mockSynthesizer) finish(i int) {
	m.mu.Lock()
	events := m.events[i]
	m.mu.Unlock()
	events.OnEnd()
}

func (m *mockSynthesizer) fail(i int, reason string) {
	m.mu.Lock()
	events := m.events[i]
	m.mu.Unlock()
	events.OnError(reason)
}

func waitSpoken(t *testing.T, m *mockSynthesizer) domain.Utterance {
	t.Helper()
	select {
	case u := <-m.spoken:
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for utterance")
		return domain.Utterance{}
	}
}

var errEndpoint = errors.New("chat API error 500")

type mockChat struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []domain.ChatRequest
	keys     []string
	started  chan struct{}
	release  chan struct{}
}

func (m *mockChat) Complete(ctx context.Context, apiKey string, req domain.ChatRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.keys = append(m.keys, apiKey)
	started, release := m.started, m.release
	reply, err := m.reply, m.err
	m.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return reply, err
}

func (m *mockChat) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

type recordingPresenter struct {
	mu          sync.Mutex
	states      []domain.State
	transcripts []string
	replies     []string
	statuses    []string
	errors      []string
	panels      []bool
	cleared     int
}

func (p *recordingPresenter) StateChanged(s domain.State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states = append(p.states, s)
}

func (p *recordingPresenter) TranscriptUpdated(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transcripts = append(p.transcripts, text)
}

func (p *recordingPresenter) ReplyReady(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replies = append(p.replies, text)
}

func (p *recordingPresenter) StatusChanged(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses = append(p.statuses, msg)
}

func (p *recordingPresenter) ErrorRaised(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errors = append(p.errors, msg)
}

func (p *recordingPresenter) PanelToggled(visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.panels = append(p.panels, visible)
}

func (p *recordingPresenter) ConversationCleared() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cleared++
}

func (p *recordingPresenter) stateLog() []domain.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.State(nil), p.states...)
}

func (p *recordingPresenter) errorLog() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.errors...)
}

func (p *recordingPresenter) statusLog() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.statuses...)
}

type harness struct {
	recognizer  *mockRecognizer
	synth       *mockSynthesizer
	chat        *mockChat
	store       *application.MemoryCredentialStore
	presenter   *recordingPresenter
	settings    *application.Settings
	history     *application.History
	resolver    *application.Resolver
	coordinator *application.Coordinator
	widget      *application.Widget
}

func newHarness(t *testing.T, opts application.Options, apiKey string) *harness {
	t.Helper()
	logger := discardLogger()

	h := &harness{
		recognizer: &mockRecognizer{},
		synth:      newMockSynthesizer(),
		chat:       &mockChat{reply: "Hello"},
		store:      &application.MemoryCredentialStore{},
		presenter:  &recordingPresenter{},
		settings:   application.NewSettings(opts),
		history:    application.NewHistory(application.HistoryLimit),
	}

	credentials, err := application.LoadCredentials(h.store, apiKey)
	if err != nil {
		t.Fatalf("loading credentials: %v", err)
	}

	h.resolver = application.NewResolver(h.chat, credentials, h.settings, h.history, logger)
	capture := application.NewCaptureAdapter(h.recognizer, h.settings, logger)
	playback := application.NewPlaybackAdapter(h.synth, h.settings, logger)
	h.coordinator = application.NewCoordinator(capture, playback, h.resolver, h.settings, logger)
	h.widget = application.NewWidget(h.coordinator, credentials, h.settings, h.history, logger)
	h.widget.Subscribe(h.presenter)
	t.Cleanup(h.coordinator.Close)
	return h
}

func waitState(t *testing.T, c *application.Coordinator, want domain.State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("state: got %s, want %s", c.State(), want)
}
