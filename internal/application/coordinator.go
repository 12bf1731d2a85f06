package application

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"voice-assistant/internal/domain"
)

const (
	StatusReady        = "Ready to help"
	StatusIdle         = "Click to start listening"
	StatusListening    = "Listening... Speak now"
	StatusProcessing   = "Processing your request..."
	StatusSpeaking     = "Speaking..."
	StatusSpeechHalted = "Speech stopped"
	StatusCancelled    = "Request cancelled"

	startListeningFailed = "Failed to start listening. Please try again."
)

// Coordinator owns the idle → listening → processing → speaking cycle. It is the only
// writer of the session state, and at most one of the capture adapter, the resolver
// and the playback adapter is active at a time.
type Coordinator struct {
	capture  *CaptureAdapter
	playback *PlaybackAdapter
	resolver *Resolver
	settings *Settings
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	state      domain.State
	turn       string
	utterance  string
	presenters presenters
}

// NewCoordinator wires the adapters. capture may be nil when no recognizer is available.
func NewCoordinator(
	capture *CaptureAdapter,
	playback *PlaybackAdapter,
	resolver *Resolver,
	settings *Settings,
	logger *slog.Logger,
) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		capture:  capture,
		playback: playback,
		resolver: resolver,
		settings: settings,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		state:    domain.StateIdle,
	}
}

func (c *Coordinator) Subscribe(p Presenter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.presenters = append(c.presenters, p)
}

func (c *Coordinator) State() domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) listeners() presenters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.presenters
}

// Close cancels in-flight resolver calls and returns to idle.
func (c *Coordinator) Close() {
	c.cancel()
	c.Cancel()
}

// StartListening moves idle → listening. It is a no-op in any other state or when no
// capture adapter is configured.
func (c *Coordinator) StartListening() {
	if c.capture == nil {
		c.logger.Debug("start listening ignored, no recognizer")
		return
	}

	c.mu.Lock()
	if c.state != domain.StateIdle {
		state := c.state
		c.mu.Unlock()
		c.logger.Debug("start listening ignored", "state", state)
		return
	}
	c.state = domain.StateListening
	ps := c.presenters
	c.mu.Unlock()

	ps.state(domain.StateListening)

	if err := c.capture.Start((*captureListener)(c)); err != nil {
		c.logger.Error("starting listening", "error", err)
		ps.failure(startListeningFailed)
		if _, ok := c.reset(domain.StateListening); ok {
			ps.state(domain.StateIdle)
		}
	}
}

func (c *Coordinator) StopListening() {
	if _, ok := c.reset(domain.StateListening); !ok {
		return
	}
	if err := c.capture.Abort(); err != nil {
		c.logger.Warn("aborting recognition", "error", err)
	}
	ps := c.listeners()
	ps.state(domain.StateIdle)
	ps.status(StatusIdle)
}

func (c *Coordinator) ToggleListening() {
	if c.State() == domain.StateListening {
		c.StopListening()
		return
	}
	c.StartListening()
}

func (c *Coordinator) StopSpeaking() {
	if _, ok := c.reset(domain.StateSpeaking); !ok {
		return
	}
	c.playback.Cancel()
	ps := c.listeners()
	ps.state(domain.StateIdle)
	ps.status(StatusSpeechHalted)
}

// Cancel force-terminates whatever is active. A pending resolver reply is discarded
// when it arrives.
func (c *Coordinator) Cancel() {
	prev, ok := c.reset(domain.StateListening, domain.StateProcessing, domain.StateSpeaking)
	if !ok {
		return
	}

	switch prev {
	case domain.StateListening:
		if err := c.capture.Abort(); err != nil {
			c.logger.Warn("aborting recognition", "error", err)
		}
	case domain.StateSpeaking:
		c.playback.Cancel()
	}

	ps := c.listeners()
	ps.state(domain.StateIdle)
	ps.status(StatusCancelled)
}

// reset moves to idle when the current state is one of from.
func (c *Coordinator) reset(from ...domain.State) (domain.State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !slices.Contains(from, c.state) {
		return c.state, false
	}
	prev := c.state
	c.state = domain.StateIdle
	c.turn = ""
	c.utterance = ""
	return prev, true
}

// ProcessInput resolves transcript and speaks the reply. Blank input is ignored, as is
// input while processing or speaking. It returns once the reply is handed to playback.
func (c *Coordinator) ProcessInput(ctx context.Context, transcript string) {
	text := strings.TrimSpace(transcript)
	if text == "" {
		return
	}

	prev, turn, ok := c.beginTurn(domain.StateIdle, domain.StateListening)
	if !ok {
		c.logger.Debug("input ignored", "state", prev)
		return
	}
	if prev == domain.StateListening {
		if err := c.capture.Abort(); err != nil {
			c.logger.Warn("aborting recognition", "error", err)
		}
	}
	c.respond(ctx, turn, text)
}

func (c *Coordinator) beginTurn(from ...domain.State) (domain.State, string, bool) {
	c.mu.Lock()
	if !slices.Contains(from, c.state) {
		state := c.state
		c.mu.Unlock()
		return state, "", false
	}
	prev := c.state
	c.state = domain.StateProcessing
	c.turn = uuid.NewString()
	turn := c.turn
	ps := c.presenters
	c.mu.Unlock()

	ps.state(domain.StateProcessing)
	return prev, turn, true
}

func (c *Coordinator) respond(ctx context.Context, turn, text string) {
	ctx, span := tracer.Start(ctx, "process input")
	defer span.End()
	span.SetAttributes(attribute.String("turn", turn))

	ps := c.listeners()
	ps.transcript(text)
	ps.status(StatusProcessing)

	answer := c.resolver.Reply(ctx, text)

	c.mu.Lock()
	if c.state != domain.StateProcessing || c.turn != turn {
		state := c.state
		c.mu.Unlock()
		span.AddEvent("reply discarded", trace.WithAttributes(attribute.String("state", state.String())))
		c.logger.Info("discarding stale reply", "turn", turn)
		return
	}
	c.turn = ""
	id := c.enterSpeaking()
	ps = c.presenters
	c.resolver.Record(text, answer)
	c.mu.Unlock()

	span.AddEvent("speaking", trace.WithAttributes(attribute.String("utterance", id)))
	ps.reply(answer.Text)
	ps.state(domain.StateSpeaking)
	c.playback.Speak(id, answer.Text, (*playbackListener)(c))
}

// Speak says text from idle. A request while anything is active, speaking included, is
// dropped rather than queued.
func (c *Coordinator) Speak(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	c.mu.Lock()
	if c.state != domain.StateIdle {
		state := c.state
		c.mu.Unlock()
		c.logger.Debug("speak dropped", "state", state)
		return false
	}
	id := c.enterSpeaking()
	ps := c.presenters
	c.mu.Unlock()

	ps.state(domain.StateSpeaking)
	c.playback.Speak(id, text, (*playbackListener)(c))
	return true
}

// enterSpeaking must be called with c.mu held.
func (c *Coordinator) enterSpeaking() string {
	c.state = domain.StateSpeaking
	c.utterance = uuid.NewString()
	return c.utterance
}

func (c *Coordinator) finishSpeaking(id string) {
	c.mu.Lock()
	if c.state != domain.StateSpeaking || c.utterance != id {
		c.mu.Unlock()
		return
	}
	c.state = domain.StateIdle
	c.utterance = ""
	ps := c.presenters
	c.mu.Unlock()

	ps.state(domain.StateIdle)
	ps.status(StatusReady)

	if c.settings.Snapshot().AutoListen {
		c.StartListening()
	}
}

type captureListener Coordinator

func (l *captureListener) ListeningStarted() {
	c := (*Coordinator)(l)
	if c.State() == domain.StateListening {
		c.listeners().status(StatusListening)
	}
}

func (l *captureListener) InterimTranscript(text string) {
	c := (*Coordinator)(l)
	if c.State() == domain.StateListening {
		c.listeners().transcript(text)
	}
}

func (l *captureListener) FinalTranscript(text string) {
	c := (*Coordinator)(l)
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if _, turn, ok := c.beginTurn(domain.StateListening); ok {
		go c.respond(c.ctx, turn, text)
	}
}

func (l *captureListener) CaptureFailed(err domain.CaptureError) {
	c := (*Coordinator)(l)
	ps := c.listeners()
	ps.failure(err.Message())
	if _, ok := c.reset(domain.StateListening); ok {
		ps.state(domain.StateIdle)
	}
}

func (l *captureListener) ListeningEnded() {
	c := (*Coordinator)(l)
	if _, ok := c.reset(domain.StateListening); ok {
		ps := c.listeners()
		ps.state(domain.StateIdle)
		ps.status(StatusIdle)
	}
}

type playbackListener Coordinator

func (l *playbackListener) SpeechStarted(id string) {
	c := (*Coordinator)(l)
	c.mu.Lock()
	current := c.state == domain.StateSpeaking && c.utterance == id
	ps := c.presenters
	c.mu.Unlock()
	if current {
		ps.status(StatusSpeaking)
	}
}

func (l *playbackListener) SpeechEnded(id string) {
	(*Coordinator)(l).finishSpeaking(id)
}

func (l *playbackListener) SpeechFailed(id string, _ string) {
	(*Coordinator)(l).finishSpeaking(id)
}
