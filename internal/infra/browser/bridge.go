package browser

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"voice-assistant/internal/application"
	"voice-assistant/internal/domain"
)

var ErrNotConnected = errors.New("no widget page connected")

//go:embed assets
var assets embed.FS

const writeWait = 10 * time.Second

// Controller receives the user's gestures from the page.
type Controller interface {
	State() domain.State
	PanelVisible() bool
	TogglePanel() bool
	HasAPIKey() bool
	SetAPIKey(key string) error
	ClearConversation()
	ToggleListening()
	StopSpeaking()
	Cancel()
	Submit(text string)
	VoicesChanged(voices []domain.Voice)
	SelectVoice(name string) bool
	SetRate(rate float64)
	SetPitch(pitch float64)
	SetVolume(volume float64)
	Settings() (application.Options, domain.Voice)
}

// Bridge serves the widget page and keeps one websocket to it. Through that socket it
// acts as the recognition engine, the synthesis engine and the presenter: the page
// runs the browser speech APIs and renders, while all state stays on this side.
type Bridge struct {
	addr        string
	logger      *slog.Logger
	mux         *http.ServeMux
	upgrader    websocket.Upgrader
	rateLimiter *RateLimiter

	mu         sync.Mutex
	server     *http.Server
	running    bool
	controller Controller
	conn       *websocket.Conn
	writeMu    sync.Mutex

	recMu      sync.Mutex
	recSession uint64
	recEvents  application.RecognitionEvents

	synthMu    sync.Mutex
	utterances map[string]application.SynthesisEvents
	voices     []domain.Voice
}

func NewBridge(addr string, allowedOrigins []string, logger *slog.Logger) *Bridge {
	b := &Bridge{
		addr:        addr,
		logger:      logger,
		mux:         http.NewServeMux(),
		rateLimiter: NewRateLimiter(30, time.Minute),
		utterances:  make(map[string]application.SynthesisEvents),
	}
	b.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(allowedOrigins),
	}

	static, _ := fs.Sub(assets, "assets")
	b.mux.Handle("GET /", http.FileServerFS(static))
	b.mux.HandleFunc("GET /ws", b.rateLimiter.Middleware(b.handleSocket))
	b.mux.HandleFunc("GET /health", b.handleHealth)
	return b
}

// originChecker returns nil (same-origin only) when no origins are configured.
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
	}
}

// Attach sets the gesture receiver. It must be called before Start.
func (b *Bridge) Attach(c Controller) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.controller = c
}

func (b *Bridge) Handler() http.Handler {
	return b.mux
}

func (b *Bridge) Start(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return nil
	}

	b.server = &http.Server{
		Addr:              b.addr,
		Handler:           b.mux,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		b.logger.Info("widget server starting", "addr", b.addr)
		if err := b.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			b.logger.Error("widget server error", "error", err)
		}
	}()

	b.running = true
	return nil
}

func (b *Bridge) Stop() error {
	b.mu.Lock()
	server, conn := b.server, b.conn
	running := b.running
	b.running = false
	b.conn = nil
	b.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if !running || server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		b.logger.Warn("graceful shutdown failed, forcing close", "error", err)
		if err := server.Close(); err != nil {
			return fmt.Errorf("closing server: %w", err)
		}
	}
	return nil
}

func (b *Bridge) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil
}

func (b *Bridge) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body, _ := sonic.Marshal(struct {
		Status    string `json:"status"`
		Connected bool   `json:"connected"`
	}{Status: "ok", Connected: b.Connected()})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (b *Bridge) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	b.mu.Lock()
	previous := b.conn
	b.conn = conn
	controller := b.controller
	b.mu.Unlock()

	if previous != nil {
		b.logger.Info("replacing widget connection", "remote_addr", r.RemoteAddr)
		previous.Close()
	}
	b.logger.Info("widget connected", "remote_addr", r.RemoteAddr)

	if controller != nil {
		b.sendSnapshot(controller)
	}
	b.readLoop(conn, controller)
}

func (b *Bridge) sendSnapshot(c Controller) {
	b.send(Message{Type: TypeState, State: c.State().String()})
	b.send(Message{Type: TypePanel, Visible: boolPtr(c.PanelVisible())})
	b.send(Message{Type: TypeCredential, Configured: boolPtr(c.HasAPIKey())})
	b.sendSettings(c)
}

func (b *Bridge) readLoop(conn *websocket.Conn, c Controller) {
	defer b.disconnect(conn)

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				b.logger.Warn("widget connection lost", "error", err)
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		msg, err := decode(data)
		if err != nil {
			b.logger.Warn("malformed widget message", "error", err)
			continue
		}
		b.dispatch(msg, c)
	}
}

// disconnect fails whatever the page was doing so the session can return to idle.
func (b *Bridge) disconnect(conn *websocket.Conn) {
	conn.Close()

	b.mu.Lock()
	current := b.conn == conn
	if current {
		b.conn = nil
	}
	b.mu.Unlock()
	if !current {
		return
	}
	b.logger.Info("widget disconnected")

	b.recMu.Lock()
	rec := b.recEvents
	b.recEvents = nil
	b.recMu.Unlock()
	if rec != nil {
		rec.OnError(domain.RecognitionCodeNetwork)
		rec.OnEnd()
	}

	b.synthMu.Lock()
	pending := b.utterances
	b.utterances = make(map[string]application.SynthesisEvents)
	b.synthMu.Unlock()
	for _, events := range pending {
		events.OnError("disconnected")
	}
}

func (b *Bridge) dispatch(msg Message, c Controller) {
	switch msg.Type {
	case TypeRecognitionStarted, TypeRecognitionResult, TypeRecognitionError, TypeRecognitionEnded:
		b.dispatchRecognition(msg)
	case TypeSynthesisStarted, TypeSynthesisEnded, TypeSynthesisError:
		b.dispatchSynthesis(msg)
	case TypeVoices:
		voices := toDomainVoices(msg.Voices)
		b.synthMu.Lock()
		b.voices = voices
		b.synthMu.Unlock()
		if c != nil {
			c.VoicesChanged(voices)
			b.sendSettings(c)
		}
	default:
		if c == nil {
			b.logger.Warn("gesture ignored, no controller", "type", msg.Type)
			return
		}
		b.dispatchGesture(msg, c)
	}
}

func (b *Bridge) dispatchRecognition(msg Message) {
	b.recMu.Lock()
	events := b.recEvents
	current := events != nil && msg.Session == b.recSession
	if current && msg.Type == TypeRecognitionEnded {
		b.recEvents = nil
	}
	b.recMu.Unlock()

	if !current {
		b.logger.Debug("stale recognition event", "type", msg.Type, "session", msg.Session)
		return
	}

	switch msg.Type {
	case TypeRecognitionStarted:
		events.OnStart()
	case TypeRecognitionResult:
		events.OnResult(recognitionEvent(msg))
	case TypeRecognitionError:
		events.OnError(msg.Code)
	case TypeRecognitionEnded:
		events.OnEnd()
	}
}

func (b *Bridge) dispatchSynthesis(msg Message) {
	b.synthMu.Lock()
	events, ok := b.utterances[msg.ID]
	if ok && msg.Type != TypeSynthesisStarted {
		delete(b.utterances, msg.ID)
	}
	b.synthMu.Unlock()

	if !ok {
		b.logger.Debug("unknown utterance event", "type", msg.Type, "id", msg.ID)
		return
	}

	switch msg.Type {
	case TypeSynthesisStarted:
		events.OnStart()
	case TypeSynthesisEnded:
		events.OnEnd()
	case TypeSynthesisError:
		events.OnError(msg.Code)
	}
}

func (b *Bridge) dispatchGesture(msg Message, c Controller) {
	switch msg.Type {
	case TypeListenToggle:
		c.ToggleListening()
	case TypeSpeechStop:
		c.StopSpeaking()
	case TypeCancel:
		c.Cancel()
	case TypePanelToggle:
		c.TogglePanel()
	case TypeConversationClear:
		c.ClearConversation()
	case TypeTextSubmit:
		go c.Submit(msg.Text)
	case TypeCredentialSet:
		if err := c.SetAPIKey(msg.Key); err != nil {
			b.logger.Error("saving api key", "error", err)
			b.send(Message{Type: TypeError, Text: "Failed to save API key"})
			return
		}
		b.send(Message{Type: TypeCredential, Configured: boolPtr(c.HasAPIKey())})
	case TypeVoiceSelect:
		if !c.SelectVoice(msg.Voice) {
			b.logger.Warn("unknown voice", "voice", msg.Voice)
		}
		b.sendSettings(c)
	case TypeRateSet:
		c.SetRate(msg.Value)
		b.sendSettings(c)
	case TypePitchSet:
		c.SetPitch(msg.Value)
		b.sendSettings(c)
	case TypeVolumeSet:
		c.SetVolume(msg.Value)
		b.sendSettings(c)
	default:
		b.logger.Warn("unknown widget message", "type", msg.Type)
	}
}

func (b *Bridge) sendSettings(c Controller) {
	opts, voice := c.Settings()
	b.send(Message{
		Type:   TypeSettings,
		Lang:   opts.Language,
		Voice:  voice.Name,
		Rate:   floatPtr(opts.Rate),
		Pitch:  floatPtr(opts.Pitch),
		Volume: floatPtr(opts.Volume),
	})
}

func (b *Bridge) send(m Message) error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	data, err := encode(m)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", m.Type, err)
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("writing %s: %w", m.Type, err)
	}
	return nil
}

// notify sends a presenter message; a missing page is not an error for rendering.
func (b *Bridge) notify(m Message) {
	if err := b.send(m); err != nil && !errors.Is(err, ErrNotConnected) {
		b.logger.Warn("notifying widget", "type", m.Type, "error", err)
	}
}
